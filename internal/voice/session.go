package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/taproom/taproom/internal/audio"
	"github.com/taproom/taproom/internal/tools"
)

// Session states.
const (
	StateConnecting        = "connecting"
	StateIdle              = "idle"
	StateUserSpeaking      = "user_speaking"
	StateAssistantSpeaking = "assistant_speaking"
	StateToolExecuting     = "tool_executing"
	StateDisconnected      = "disconnected"
)

// Control is a JSON control message pushed to the terminal.
type Control struct {
	Type      string       `json:"type"`
	SessionID string       `json:"session_id,omitempty"`
	Text      string       `json:"text,omitempty"`
	Command   string       `json:"command,omitempty"`
	Result    interface{}  `json:"result,omitempty"`
	Error     *tools.Error `json:"error,omitempty"`
	Screen    string       `json:"screen,omitempty"`
}

// Outbound is one message bound for the terminal: either an assistant audio
// frame or a control message, never both.
type Outbound struct {
	Audio   []byte
	PlayAt  time.Time
	Control *Control
}

// Session is one live voice conversation. All provider events funnel
// through its run loop, which serializes state changes.
type Session struct {
	ID       string
	provider Provider
	registry *tools.Registry

	scheduler *audio.Scheduler
	outbound  chan Outbound

	mu         sync.RWMutex
	state      string
	lastActive time.Time

	done chan struct{}
}

// State returns the session's current state.
func (s *Session) State() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) setState(state string) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// LastActive reports when the session last saw a provider event or mic
// frame.
func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

// Outbound returns the stream of messages for the terminal. The channel
// closes when the session ends.
func (s *Session) Outbound() <-chan Outbound {
	return s.outbound
}

// Done closes when the session has fully shut down.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// HandleMicAudio forwards one operator microphone frame to the provider.
// Frames are discarded while the assistant is speaking so the model doesn't
// hear itself through the bar speakers.
func (s *Session) HandleMicAudio(pcm []byte) error {
	state := s.State()
	if state == StateAssistantSpeaking {
		return nil
	}
	if state == StateDisconnected {
		return fmt.Errorf("voice: session %s is disconnected", s.ID)
	}
	s.touch()
	return s.provider.SendAudio(pcm)
}

// Interrupt cuts the assistant off: queued playback is flushed and the
// provider cancels the in-flight response. A command already executing is
// not aborted; its single result is still delivered when it finishes.
func (s *Session) Interrupt() error {
	s.scheduler.Flush()
	if err := s.provider.Interrupt(); err != nil {
		return fmt.Errorf("voice: interrupt session %s: %w", s.ID, err)
	}
	if s.State() == StateAssistantSpeaking {
		s.setState(StateIdle)
	}
	return nil
}

// Notify pushes a server-originated control message to the terminal, e.g. a
// screen change requested by a command.
func (s *Session) Notify(c Control) {
	s.control(c)
}

// run is the session's event loop. It owns all state transitions and exits
// when the provider's event channel closes.
func (s *Session) run(ctx context.Context) {
	defer close(s.done)
	defer close(s.outbound)
	defer s.setState(StateDisconnected)

	for ev := range s.provider.Events() {
		s.touch()
		switch ev.Type {
		case EventAudio:
			s.setState(StateAssistantSpeaking)
			s.emit(Outbound{Audio: ev.Audio, PlayAt: s.scheduler.Schedule(len(ev.Audio) / 2)})

		case EventSpeakingStarted:
			s.setState(StateAssistantSpeaking)
			s.control(Control{Type: "speaking_started"})

		case EventSpeakingEnded:
			s.setState(StateIdle)
			s.control(Control{Type: "speaking_ended"})

		case EventTranscript:
			s.control(Control{Type: "transcript", Text: ev.Text})

		case EventAssistantText:
			s.control(Control{Type: "ai_response", Text: ev.Text})

		case EventToolCall:
			s.executeTool(ctx, ev)

		case EventUserSpeechStarted:
			// Barge-in: talking over the assistant cuts playback short.
			if s.State() == StateAssistantSpeaking {
				s.scheduler.Flush()
				s.control(Control{Type: "interrupted"})
			}
			s.setState(StateUserSpeaking)

		case EventUserSpeechStopped:
			if s.State() == StateUserSpeaking {
				s.setState(StateIdle)
			}

		case EventInterrupted:
			s.scheduler.Flush()
			s.setState(StateIdle)
			s.control(Control{Type: "interrupted"})

		case EventError:
			log.Printf("voice: session %s provider error: %v", s.ID, ev.Err)
			s.control(Control{Type: "error", Text: ev.Err.Error()})
		}
	}

	log.Printf("voice: session %s ended", s.ID)
}

// executeTool runs one command and reports its outcome both to the provider
// (exactly one result per call id) and to the terminal.
func (s *Session) executeTool(ctx context.Context, ev Event) {
	s.setState(StateToolExecuting)
	defer s.setState(StateIdle)

	log.Printf("voice: session %s executing %s", s.ID, ev.ToolName)
	out, terr := s.registry.Execute(
		tools.Invocation{Ctx: ctx, SessionID: s.ID}, ev.ToolName, tools.Args(ev.ToolArgs))

	var payload []byte
	var encodeErr error
	if terr != nil {
		payload, encodeErr = json.Marshal(map[string]interface{}{"error": terr})
	} else {
		payload, encodeErr = json.Marshal(out)
	}
	if encodeErr != nil {
		payload = []byte(fmt.Sprintf(`{"error":{"kind":"internal","message":%q}}`, encodeErr.Error()))
	}

	if err := s.provider.SendToolResult(ev.CallID, payload); err != nil {
		log.Printf("voice: session %s tool result for %s failed: %v", s.ID, ev.ToolName, err)
	}

	s.control(Control{Type: "tool_executed", Command: ev.ToolName, Result: out, Error: terr})
}

func (s *Session) control(c Control) {
	s.emit(Outbound{Control: &c})
}

// emit delivers to the terminal without ever blocking the event loop; a
// terminal that stops draining loses messages rather than wedging the
// session.
func (s *Session) emit(o Outbound) {
	select {
	case s.outbound <- o:
	default:
		log.Printf("voice: session %s outbound full, dropping %s", s.ID, outboundKind(o))
	}
}

func outboundKind(o Outbound) string {
	if o.Control != nil {
		return o.Control.Type
	}
	return "audio"
}

// Manager tracks live sessions by id.
type Manager struct {
	newProvider func() (Provider, error)
	registry    *tools.Registry
	sampleRate  int

	mu       sync.RWMutex
	sessions map[string]*Session
}

// ManagerOpts holds parameters for creating a Manager.
type ManagerOpts struct {
	// NewProvider builds a fresh provider connection per session.
	NewProvider func() (Provider, error)
	Registry    *tools.Registry
	SampleRate  int // defaults to audio.DefaultSampleRate
}

// NewManager creates a Manager.
func NewManager(opts ManagerOpts) (*Manager, error) {
	if opts.NewProvider == nil {
		return nil, fmt.Errorf("voice: provider factory is required")
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("voice: command registry is required")
	}
	rate := opts.SampleRate
	if rate <= 0 {
		rate = audio.DefaultSampleRate
	}
	return &Manager{
		newProvider: opts.NewProvider,
		registry:    opts.Registry,
		sampleRate:  rate,
		sessions:    make(map[string]*Session),
	}, nil
}

// Start opens a new session: connects a provider, registers it, and kicks
// off the event loop.
func (m *Manager) Start(ctx context.Context) (*Session, error) {
	provider, err := m.newProvider()
	if err != nil {
		return nil, fmt.Errorf("voice: build provider: %w", err)
	}

	s := &Session{
		ID:         uuid.NewString(),
		provider:   provider,
		registry:   m.registry,
		scheduler:  audio.NewScheduler(audio.SchedulerOpts{SampleRate: m.sampleRate}),
		outbound:   make(chan Outbound, 256),
		state:      StateConnecting,
		lastActive: time.Now(),
		done:       make(chan struct{}),
	}

	if err := provider.Connect(ctx); err != nil {
		return nil, fmt.Errorf("voice: connect session: %w", err)
	}
	s.setState(StateIdle)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	log.Printf("voice: session %s started", s.ID)
	go func() {
		s.run(ctx)
		m.remove(s.ID)
	}()
	return s, nil
}

// Get returns a live session by id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Terminate ends a session. The provider closes, which drains the event
// loop and removes the session from the manager.
func (m *Manager) Terminate(id string) error {
	s, ok := m.Get(id)
	if !ok {
		return fmt.Errorf("voice: no session %s", id)
	}
	return s.provider.Close()
}

// CloseIdle ends every session that has seen no provider event or mic frame
// for longer than maxIdle, so abandoned terminals don't hold provider
// connections open. Returns how many were closed.
func (m *Manager) CloseIdle(maxIdle time.Duration) int {
	m.mu.RLock()
	stale := make([]*Session, 0)
	for _, s := range m.sessions {
		if time.Since(s.LastActive()) > maxIdle {
			stale = append(stale, s)
		}
	}
	m.mu.RUnlock()

	for _, s := range stale {
		log.Printf("voice: session %s idle for %s, closing", s.ID, time.Since(s.LastActive()).Round(time.Second))
		s.provider.Close()
	}
	return len(stale)
}

// CloseAll ends every live session, waiting for each loop to drain.
func (m *Manager) CloseAll() {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	for _, s := range sessions {
		s.provider.Close()
		<-s.Done()
	}
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

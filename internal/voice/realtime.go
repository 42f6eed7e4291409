package voice

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/taproom/taproom/internal/tools"
)

// DefaultReconnectDelay is the fixed pause between redial attempts after
// the provider socket drops.
const DefaultReconnectDelay = 3 * time.Second

// RealtimeProvider implements Provider over a realtime speech websocket.
// The connection is redialed with a fixed delay whenever it drops; events
// keep flowing on the same channel so the session survives the outage.
type RealtimeProvider struct {
	url         string
	model       string
	apiKey      string
	definitions []tools.Definition
	delay       time.Duration
	dial        func(ctx context.Context) (realtimeConn, error)

	mu     sync.Mutex
	conn   realtimeConn
	closed bool

	events chan Event
	done   chan struct{}
}

// realtimeConn is the subset of *websocket.Conn the provider uses, split
// out so tests can stub the wire.
type realtimeConn interface {
	ReadMessage() (int, []byte, error)
	WriteJSON(v interface{}) error
	Close() error
}

// RealtimeOpts holds parameters for creating a RealtimeProvider.
type RealtimeOpts struct {
	URL   string
	Model string
	// APIKeyEnv names the environment variable holding the provider key.
	APIKeyEnv string
	// Definitions is the command catalog registered on every (re)connect.
	Definitions    []tools.Definition
	ReconnectDelay time.Duration // defaults to DefaultReconnectDelay
}

// NewRealtimeProvider creates a RealtimeProvider.
func NewRealtimeProvider(opts RealtimeOpts) (*RealtimeProvider, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("voice: realtime url is required")
	}
	apiKey := os.Getenv(opts.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("voice: %s is not set", opts.APIKeyEnv)
	}
	delay := opts.ReconnectDelay
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}

	p := &RealtimeProvider{
		url:         opts.URL,
		model:       opts.Model,
		apiKey:      apiKey,
		definitions: opts.Definitions,
		delay:       delay,
		events:      make(chan Event, 256),
		done:        make(chan struct{}),
	}
	p.dial = p.dialWebsocket
	return p, nil
}

func (p *RealtimeProvider) dialWebsocket(ctx context.Context) (realtimeConn, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+p.apiKey)

	url := p.url
	if p.model != "" {
		url += "?model=" + p.model
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("voice: dial %s: %w", p.url, err)
	}
	return conn, nil
}

// Connect dials the provider, registers the command catalog, and starts the
// read loop.
func (p *RealtimeProvider) Connect(ctx context.Context) error {
	conn, err := p.dial(ctx)
	if err != nil {
		return err
	}
	if err := p.configure(conn); err != nil {
		conn.Close()
		return err
	}

	p.mu.Lock()
	p.conn = conn
	p.mu.Unlock()

	go p.readLoop(ctx)
	return nil
}

// configure sends the session setup message: audio format and the command
// catalog the model may call.
func (p *RealtimeProvider) configure(conn realtimeConn) error {
	type toolDef struct {
		Type        string       `json:"type"`
		Name        string       `json:"name"`
		Description string       `json:"description"`
		Parameters  tools.Object `json:"parameters"`
	}
	defs := make([]toolDef, len(p.definitions))
	for i, d := range p.definitions {
		defs[i] = toolDef{Type: "function", Name: d.Name, Description: d.Description, Parameters: d.Parameters}
	}

	msg := map[string]interface{}{
		"type": "session.update",
		"session": map[string]interface{}{
			"input_audio_format":  "pcm16",
			"output_audio_format": "pcm16",
			"tools":               defs,
		},
	}
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("voice: configure session: %w", err)
	}
	return nil
}

// SendAudio forwards a mic frame as a base64 buffer append.
func (p *RealtimeProvider) SendAudio(pcm []byte) error {
	return p.write(map[string]interface{}{
		"type":  "input_audio_buffer.append",
		"audio": base64.StdEncoding.EncodeToString(pcm),
	})
}

// SendToolResult delivers one command outcome and asks for the spoken
// follow-up.
func (p *RealtimeProvider) SendToolResult(callID string, payload []byte) error {
	err := p.write(map[string]interface{}{
		"type": "conversation.item.create",
		"item": map[string]interface{}{
			"type":    "function_call_output",
			"call_id": callID,
			"output":  string(payload),
		},
	})
	if err != nil {
		return err
	}
	return p.write(map[string]interface{}{"type": "response.create"})
}

// Interrupt cancels the in-flight response.
func (p *RealtimeProvider) Interrupt() error {
	return p.write(map[string]interface{}{"type": "response.cancel"})
}

// Events returns the inbound event stream.
func (p *RealtimeProvider) Events() <-chan Event {
	return p.events
}

// Close shuts the provider down permanently; no redial follows.
func (p *RealtimeProvider) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.done)
	conn := p.conn
	p.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (p *RealtimeProvider) write(msg interface{}) error {
	p.mu.Lock()
	conn := p.conn
	closed := p.closed
	p.mu.Unlock()

	if closed {
		return fmt.Errorf("voice: provider is closed")
	}
	if conn == nil {
		return fmt.Errorf("voice: provider is not connected")
	}
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("voice: write: %w", err)
	}
	return nil
}

// readLoop pumps wire messages into the event channel, redialing with a
// fixed delay on failure until Close.
func (p *RealtimeProvider) readLoop(ctx context.Context) {
	defer close(p.events)

	for {
		p.mu.Lock()
		conn := p.conn
		p.mu.Unlock()

		_, data, err := conn.ReadMessage()
		if err != nil {
			if p.isClosed() || ctx.Err() != nil {
				return
			}
			log.Printf("voice: provider read failed, redialing in %s: %v", p.delay, err)
			p.events <- Event{Type: EventError, Err: fmt.Errorf("voice: connection lost: %w", err)}
			if !p.redial(ctx) {
				return
			}
			continue
		}

		if ev, ok := p.translate(data); ok {
			p.events <- ev
		}
	}
}

// redial attempts to reconnect every delay tick until it succeeds or the
// provider closes. The session id and conversation state on our side are
// untouched, so a successful redial resumes transparently.
func (p *RealtimeProvider) redial(ctx context.Context) bool {
	for {
		select {
		case <-p.done:
			return false
		case <-ctx.Done():
			return false
		case <-time.After(p.delay):
		}

		conn, err := p.dial(ctx)
		if err != nil {
			log.Printf("voice: redial failed, retrying in %s: %v", p.delay, err)
			continue
		}
		if err := p.configure(conn); err != nil {
			log.Printf("voice: reconfigure failed, retrying in %s: %v", p.delay, err)
			conn.Close()
			continue
		}

		p.mu.Lock()
		p.conn = conn
		p.mu.Unlock()
		log.Printf("voice: provider reconnected")
		return true
	}
}

func (p *RealtimeProvider) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// wireEvent is the provider's JSON envelope.
type wireEvent struct {
	Type       string `json:"type"`
	Delta      string `json:"delta"`
	Transcript string `json:"transcript"`
	Name       string `json:"name"`
	Arguments  string `json:"arguments"`
	CallID     string `json:"call_id"`
	Error      struct {
		Message string `json:"message"`
	} `json:"error"`
}

// translate maps a wire message to a session event. Unrecognized message
// types are dropped; the protocol is chattier than we care about.
func (p *RealtimeProvider) translate(data []byte) (Event, bool) {
	var we wireEvent
	if err := json.Unmarshal(data, &we); err != nil {
		return Event{Type: EventError, Err: fmt.Errorf("voice: bad wire message: %w", err)}, true
	}

	switch we.Type {
	case "response.audio.delta":
		pcm, err := base64.StdEncoding.DecodeString(we.Delta)
		if err != nil {
			return Event{Type: EventError, Err: fmt.Errorf("voice: bad audio delta: %w", err)}, true
		}
		return Event{Type: EventAudio, Audio: pcm}, true

	case "response.created":
		return Event{Type: EventSpeakingStarted}, true

	case "response.done":
		return Event{Type: EventSpeakingEnded}, true

	case "conversation.item.input_audio_transcription.completed":
		return Event{Type: EventTranscript, Text: we.Transcript}, true

	case "response.audio_transcript.done":
		return Event{Type: EventAssistantText, Text: we.Transcript}, true

	case "response.function_call_arguments.done":
		var args map[string]interface{}
		if we.Arguments != "" {
			if err := json.Unmarshal([]byte(we.Arguments), &args); err != nil {
				return Event{Type: EventError, Err: fmt.Errorf("voice: bad tool arguments for %s: %w", we.Name, err)}, true
			}
		}
		return Event{Type: EventToolCall, ToolName: we.Name, ToolArgs: args, CallID: we.CallID}, true

	case "input_audio_buffer.speech_started":
		return Event{Type: EventUserSpeechStarted}, true

	case "input_audio_buffer.speech_stopped":
		return Event{Type: EventUserSpeechStopped}, true

	case "error":
		return Event{Type: EventError, Err: fmt.Errorf("voice: provider: %s", we.Error.Message)}, true
	}
	return Event{}, false
}

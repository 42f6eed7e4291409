package voice

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/taproom/taproom/internal/tools"
)

func testRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	r := tools.NewRegistry(tools.RegistryOpts{Out: io.Discard})

	err := r.Register(tools.Definition{
		Name:        "ring_bell",
		Description: "test command",
		Parameters:  tools.Object{Type: "object"},
	}, func(inv tools.Invocation, args tools.Args) (interface{}, error) {
		return map[string]interface{}{"rang": true}, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	err = r.Register(tools.Definition{
		Name:        "break_glass",
		Description: "always fails",
		Parameters:  tools.Object{Type: "object"},
	}, func(inv tools.Invocation, args tools.Args) (interface{}, error) {
		return nil, errors.New("shattered")
	})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func startSession(t *testing.T) (*Manager, *Session, *MockProvider) {
	t.Helper()
	provider := NewMockProvider()
	m, err := NewManager(ManagerOpts{
		NewProvider: func() (Provider, error) { return provider, nil },
		Registry:    testRegistry(t),
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	s, err := m.Start(context.Background())
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	return m, s, provider
}

func nextOutbound(t *testing.T, s *Session) Outbound {
	t.Helper()
	select {
	case o, ok := <-s.Outbound():
		if !ok {
			t.Fatal("outbound closed")
		}
		return o
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for outbound")
		return Outbound{}
	}
}

func waitForState(t *testing.T, s *Session, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("state = %s, want %s", s.State(), want)
}

func TestSessionSpeakingStateGatesMic(t *testing.T) {
	m, s, provider := startSession(t)
	defer m.CloseAll()

	if s.State() != StateIdle {
		t.Fatalf("state = %s, want idle", s.State())
	}

	// Mic frames flow while idle.
	if err := s.HandleMicAudio([]byte{1, 2}); err != nil {
		t.Fatalf("mic while idle: %v", err)
	}

	provider.Simulate(Event{Type: EventSpeakingStarted})
	if c := nextOutbound(t, s).Control; c == nil || c.Type != "speaking_started" {
		t.Fatalf("control = %+v, want speaking_started", c)
	}

	// While the assistant speaks, mic frames are silently dropped.
	if err := s.HandleMicAudio([]byte{3, 4}); err != nil {
		t.Fatalf("mic while speaking: %v", err)
	}
	if n := len(provider.SentAudio()); n != 1 {
		t.Errorf("provider got %d frames, want 1 (speaking frame dropped)", n)
	}

	provider.Simulate(Event{Type: EventSpeakingEnded})
	if c := nextOutbound(t, s).Control; c == nil || c.Type != "speaking_ended" {
		t.Fatalf("control = %+v, want speaking_ended", c)
	}
	waitForState(t, s, StateIdle)

	if err := s.HandleMicAudio([]byte{5, 6}); err != nil {
		t.Fatal(err)
	}
	if n := len(provider.SentAudio()); n != 2 {
		t.Errorf("provider got %d frames, want 2", n)
	}
}

func TestSessionSchedulesAssistantAudio(t *testing.T) {
	m, s, provider := startSession(t)
	defer m.CloseAll()

	provider.Simulate(Event{Type: EventAudio, Audio: make([]byte, 4096)})
	provider.Simulate(Event{Type: EventAudio, Audio: make([]byte, 4096)})

	first := nextOutbound(t, s)
	second := nextOutbound(t, s)
	if first.Audio == nil || second.Audio == nil {
		t.Fatal("expected audio outbound")
	}
	// The second chunk queues exactly behind the first.
	if !second.PlayAt.Equal(first.PlayAt.Add(2048 * time.Second / 24000)) {
		t.Errorf("second PlayAt = %v, want first + chunk duration (first = %v)", second.PlayAt, first.PlayAt)
	}
	if s.State() != StateAssistantSpeaking {
		t.Errorf("state = %s, want assistant_speaking", s.State())
	}
}

func TestToolCallSendsExactlyOneResult(t *testing.T) {
	m, s, provider := startSession(t)
	defer m.CloseAll()

	provider.Simulate(Event{Type: EventToolCall, ToolName: "ring_bell", CallID: "call-1"})

	c := nextOutbound(t, s).Control
	if c == nil || c.Type != "tool_executed" || c.Command != "ring_bell" || c.Error != nil {
		t.Fatalf("control = %+v, want successful tool_executed", c)
	}

	payload, ok := provider.ToolResult("call-1")
	if !ok {
		t.Fatal("no tool result sent")
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("result not JSON: %v", err)
	}
	if decoded["rang"] != true {
		t.Errorf("result = %v, want rang=true", decoded)
	}
}

func TestFailedToolCallStillSendsResult(t *testing.T) {
	m, s, provider := startSession(t)
	defer m.CloseAll()

	provider.Simulate(Event{Type: EventToolCall, ToolName: "break_glass", CallID: "call-2"})

	c := nextOutbound(t, s).Control
	if c == nil || c.Type != "tool_executed" || c.Error == nil {
		t.Fatalf("control = %+v, want tool_executed with error", c)
	}

	payload, ok := provider.ToolResult("call-2")
	if !ok {
		t.Fatal("no tool result sent for failed call")
	}
	var decoded struct {
		Error *tools.Error `json:"error"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("result not JSON: %v", err)
	}
	if decoded.Error == nil || decoded.Error.Kind != tools.KindInternal {
		t.Errorf("error payload = %+v, want internal kind", decoded.Error)
	}

	// Unknown commands also get their one result.
	provider.Simulate(Event{Type: EventToolCall, ToolName: "pour_concrete", CallID: "call-3"})
	if c := nextOutbound(t, s).Control; c == nil || c.Error == nil || c.Error.Kind != tools.KindNotFound {
		t.Fatalf("control = %+v, want not_found error", c)
	}
	if _, ok := provider.ToolResult("call-3"); !ok {
		t.Error("no tool result for unknown command")
	}
}

func TestUserSpeechDrivesStateMachine(t *testing.T) {
	m, s, provider := startSession(t)
	defer m.CloseAll()

	provider.Simulate(Event{Type: EventUserSpeechStarted})
	waitForState(t, s, StateUserSpeaking)

	// Mic frames still flow while the operator talks.
	if err := s.HandleMicAudio([]byte{1, 2}); err != nil {
		t.Fatalf("mic while user speaking: %v", err)
	}
	if n := len(provider.SentAudio()); n != 1 {
		t.Errorf("provider got %d frames, want 1", n)
	}

	provider.Simulate(Event{Type: EventUserSpeechStopped})
	waitForState(t, s, StateIdle)
}

func TestUserSpeechOverAssistantBargesIn(t *testing.T) {
	m, s, provider := startSession(t)
	defer m.CloseAll()

	provider.Simulate(Event{Type: EventSpeakingStarted})
	if c := nextOutbound(t, s).Control; c == nil || c.Type != "speaking_started" {
		t.Fatalf("control = %+v, want speaking_started", c)
	}

	// Talking over the assistant flushes playback and takes the floor.
	provider.Simulate(Event{Type: EventUserSpeechStarted})
	if c := nextOutbound(t, s).Control; c == nil || c.Type != "interrupted" {
		t.Fatalf("control = %+v, want interrupted", c)
	}
	waitForState(t, s, StateUserSpeaking)
}

func TestInterruptFlushesAndCancels(t *testing.T) {
	m, s, provider := startSession(t)
	defer m.CloseAll()

	provider.Simulate(Event{Type: EventSpeakingStarted})
	nextOutbound(t, s)

	if err := s.Interrupt(); err != nil {
		t.Fatalf("interrupt: %v", err)
	}
	if provider.Interrupts() != 1 {
		t.Errorf("interrupts = %d, want 1", provider.Interrupts())
	}
	if s.State() != StateIdle {
		t.Errorf("state = %s, want idle", s.State())
	}
}

func TestCloseIdleReapsStaleSessions(t *testing.T) {
	m, s, _ := startSession(t)

	// A fresh session survives a generous cutoff.
	if closed := m.CloseIdle(time.Hour); closed != 0 {
		t.Fatalf("closed = %d, want 0", closed)
	}

	time.Sleep(20 * time.Millisecond)
	if closed := m.CloseIdle(time.Millisecond); closed != 1 {
		t.Fatalf("closed = %d, want 1", closed)
	}

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("idle session did not shut down")
	}

	deadline := time.Now().Add(2 * time.Second)
	for m.Count() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if m.Count() != 0 {
		t.Errorf("count = %d, want 0", m.Count())
	}
}

func TestTerminateRemovesSession(t *testing.T) {
	m, s, _ := startSession(t)

	if m.Count() != 1 {
		t.Fatalf("count = %d, want 1", m.Count())
	}
	if err := m.Terminate(s.ID); err != nil {
		t.Fatalf("terminate: %v", err)
	}

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not shut down")
	}
	if s.State() != StateDisconnected {
		t.Errorf("state = %s, want disconnected", s.State())
	}

	deadline := time.Now().Add(2 * time.Second)
	for m.Count() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if m.Count() != 0 {
		t.Errorf("count = %d, want 0", m.Count())
	}

	if err := m.Terminate(s.ID); err == nil {
		t.Error("terminating a dead session succeeded")
	}
}

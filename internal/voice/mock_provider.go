package voice

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider implements Provider for testing. It records everything sent
// to it and lets tests feed events in via Simulate.
type MockProvider struct {
	mu          sync.Mutex
	connected   bool
	closed      bool
	connects    int
	audio       [][]byte
	toolResults map[string][]byte
	interrupts  int
	events      chan Event
}

// NewMockProvider creates a MockProvider with a buffered event channel.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		events:      make(chan Event, 100),
		toolResults: make(map[string][]byte),
	}
}

// Connect marks the provider connected.
func (m *MockProvider) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("mock provider: already closed")
	}
	m.connected = true
	m.connects++
	return nil
}

// SendAudio records a mic frame.
func (m *MockProvider) SendAudio(pcm []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return fmt.Errorf("mock provider: not connected")
	}
	buf := make([]byte, len(pcm))
	copy(buf, pcm)
	m.audio = append(m.audio, buf)
	return nil
}

// SendToolResult records a command result. Sending two results for the same
// call id fails, mirroring the one-result-per-call contract.
func (m *MockProvider) SendToolResult(callID string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.toolResults[callID]; dup {
		return fmt.Errorf("mock provider: duplicate result for call %s", callID)
	}
	buf := make([]byte, len(payload))
	copy(buf, payload)
	m.toolResults[callID] = buf
	return nil
}

// Interrupt records the cancellation.
func (m *MockProvider) Interrupt() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interrupts++
	return nil
}

// Events returns the simulated event stream.
func (m *MockProvider) Events() <-chan Event {
	return m.events
}

// Close closes the event stream.
func (m *MockProvider) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	close(m.events)
	return nil
}

// Simulate feeds one event to the session under test.
func (m *MockProvider) Simulate(ev Event) {
	m.events <- ev
}

// SentAudio returns the recorded mic frames.
func (m *MockProvider) SentAudio() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.audio))
	copy(out, m.audio)
	return out
}

// ToolResult returns the recorded result for a call id.
func (m *MockProvider) ToolResult(callID string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.toolResults[callID]
	return payload, ok
}

// Interrupts returns how many times Interrupt was called.
func (m *MockProvider) Interrupts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interrupts
}

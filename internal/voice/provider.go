// Package voice manages realtime speech sessions: one session per connected
// terminal, bridging provider events to command execution and audio
// playback.
package voice

import "context"

// Provider is the interface a realtime speech backend must satisfy. An
// implementation owns its network connection, including redialing after
// drops; the session layer only sees the event stream.
type Provider interface {
	// Connect establishes the realtime connection and registers the
	// command catalog with the backend.
	Connect(ctx context.Context) error

	// SendAudio forwards one frame of operator microphone PCM.
	SendAudio(pcm []byte) error

	// SendToolResult delivers the outcome of a command invocation. Exactly
	// one result must be sent per call id, success or failure.
	SendToolResult(callID string, payload []byte) error

	// Interrupt cancels the in-flight assistant response.
	Interrupt() error

	// Events returns the inbound event stream. The channel closes when the
	// provider is closed for good.
	Events() <-chan Event

	// Close tears the connection down permanently.
	Close() error
}

// EventType labels a provider event.
type EventType string

// Provider event types.
const (
	// EventAudio carries a chunk of synthesized assistant speech.
	EventAudio EventType = "audio"
	// EventSpeakingStarted means the assistant began talking.
	EventSpeakingStarted EventType = "speaking_started"
	// EventSpeakingEnded means the assistant finished talking.
	EventSpeakingEnded EventType = "speaking_ended"
	// EventTranscript carries the operator's recognized speech.
	EventTranscript EventType = "transcript"
	// EventAssistantText carries the assistant's reply as text.
	EventAssistantText EventType = "assistant_text"
	// EventToolCall asks the terminal to run a command.
	EventToolCall EventType = "tool_call"
	// EventUserSpeechStarted means the provider detected the operator
	// talking.
	EventUserSpeechStarted EventType = "user_speech_started"
	// EventUserSpeechStopped means the operator went quiet again.
	EventUserSpeechStopped EventType = "user_speech_stopped"
	// EventInterrupted means the provider cancelled the assistant's turn.
	EventInterrupted EventType = "interrupted"
	// EventError carries a provider-side failure the session can survive.
	EventError EventType = "error"
)

// Event is one message from the speech backend.
type Event struct {
	Type EventType

	// Audio is PCM16 payload for EventAudio.
	Audio []byte

	// Text is the transcript or reply for text-bearing events.
	Text string

	// ToolName, ToolArgs, and CallID describe an EventToolCall.
	ToolName string
	ToolArgs map[string]interface{}
	CallID   string

	// Err describes an EventError.
	Err error
}

// Package control implements the narrator's side of the backend control
// protocol: identify on connect, answer liveness pings, and apply narration
// toggles.
package control

// Message type discriminators used on the control channel.
const (
	TypeIdentify        = "identify"
	TypePing            = "ping"
	TypePong            = "pong"
	TypeTTSToggle       = "ttsToggle"
	TypeTTSStateConfirm = "ttsStateConfirm"
)

// clientType identifies this process's role to the backend.
const clientType = "receiver"

// Message is the envelope for every control-channel frame. Fields are
// populated per message type; the rest stay empty on the wire.
type Message struct {
	Type       string `json:"type"`
	ClientType string `json:"clientType,omitempty"`
	ClientName string `json:"clientName,omitempty"`
	PingID     string `json:"pingId,omitempty"`
	// Enabled is a pointer so a toggle without the field defaults to true
	// instead of false.
	Enabled *bool `json:"enabled,omitempty"`
}

// Identify builds the handshake message sent once per connection.
func Identify(name string) Message {
	return Message{Type: TypeIdentify, ClientType: clientType, ClientName: name}
}

// Pong builds the reply to a liveness probe, echoing its id.
func Pong(pingID string) Message {
	return Message{Type: TypePong, PingID: pingID}
}

// StateConfirm builds the acknowledgement for a toggle, reflecting the value
// actually applied.
func StateConfirm(enabled bool) Message {
	return Message{Type: TypeTTSStateConfirm, Enabled: &enabled}
}

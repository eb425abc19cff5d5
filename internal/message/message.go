// Package message defines the local IPC protocol between the clipbridge CLI
// and a running watch daemon. Each message is one line of JSON: <json>\n.
package message

import (
	"encoding/json"
	"fmt"
)

// Type identifies the kind of message.
type Type string

const (
	TypeStatus         Type = "STATUS"
	TypeStatusResponse Type = "STATUS_RESPONSE"
	TypeSave           Type = "SAVE"   // finalize the pending clip now
	TypeCancel         Type = "CANCEL" // discard the pending clip
	TypeError          Type = "ERROR"
)

// PendingClip describes the daemon's in-flight clip, if any.
type PendingClip struct {
	Text             string `json:"text"`
	RemainingSeconds int    `json:"remaining_seconds"`
}

// Message is the top-level IPC envelope.
type Message struct {
	Type Type `json:"type"`

	// STATUS_RESPONSE
	Version  string           `json:"version,omitempty"`
	Identity string           `json:"identity,omitempty"`
	Email    string           `json:"email,omitempty"`
	Device   string           `json:"device,omitempty"`
	Visible  bool             `json:"visible,omitempty"`
	Pending  *PendingClip     `json:"pending,omitempty"`
	Counts   map[string]int64 `json:"counts,omitempty"`
	Uptime   int64            `json:"uptime_seconds,omitempty"`

	// ERROR
	Error string `json:"error,omitempty"`
}

// Encode serialises the message to JSON without a trailing newline.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode deserialises a message from raw JSON bytes.
func Decode(b []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("message decode: %w", err)
	}
	return &m, nil
}

// Package types - Wire types shared by the channel client and the agent loops
package types

import (
	"math/big"
	"strings"
)

// MessageType is the platform's numeric message kind
type MessageType int

const (
	MessageTypeDefault MessageType = 0
	// MessageTypeSystem is Discord's guild boost notice. It is never replied to.
	MessageTypeSystem MessageType = 8
)

// MaxErrorBodyBytes caps how much of an error response is kept
const MaxErrorBodyBytes int64 = 4 << 10

// Author identifies who wrote a message
type Author struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Bot      bool   `json:"bot,omitempty"`
}

// Message represents an inbound channel message
type Message struct {
	ID        string      `json:"id"`
	ChannelID string      `json:"channel_id,omitempty"`
	Author    Author      `json:"author"`
	Type      MessageType `json:"type"`
	Content   string      `json:"content"`
	Timestamp string      `json:"timestamp,omitempty"`
}

// IsSystem reports whether the message is a system notice
func (m Message) IsSystem() bool { return m.Type == MessageTypeSystem }

// MessageReference points a posted message at the one it answers
type MessageReference struct {
	MessageID string `json:"message_id"`
}

// SendMessageRequest is the body of a post
type SendMessageRequest struct {
	Content          string            `json:"content"`
	MessageReference *MessageReference `json:"message_reference,omitempty"`
}

// SendMessageResponse is the subset of the created message we read back
type SendMessageResponse struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
}

// User is the authenticated account returned by the identity lookup
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ParseID parses a platform snowflake. IDs are compared as integers, never
// lexically: "9" is older than "10".
func ParseID(id string) (*big.Int, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, false
	}
	n, ok := new(big.Int).SetString(id, 10)
	if !ok || n.Sign() < 0 {
		return nil, false
	}
	return n, true
}

// CompareIDs returns -1, 0 or 1 as a is older than, equal to or newer than b.
// Unparseable IDs sort before every valid one and compare lexically among
// themselves.
func CompareIDs(a, b string) int {
	na, okA := ParseID(a)
	nb, okB := ParseID(b)
	switch {
	case okA && okB:
		return na.Cmp(nb)
	case okA:
		return 1
	case okB:
		return -1
	}
	return strings.Compare(a, b)
}

// ValidID reports whether id is a well-formed numeric identifier
func ValidID(id string) bool {
	_, ok := ParseID(id)
	return ok
}

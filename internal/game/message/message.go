// Package message defines the logical outbound payloads the core hands to
// the transport layer. Payloads are a tagged union wrapped in an envelope
// that distinguishes compressed from uncompressed framing; the core only
// ever produces the uncompressed variant and leaves compression to the
// transport.
package message

import (
	"encoding/json"
	"fmt"
)

// Chat is a room chat message attributed to a sender.
type Chat struct {
	SocketID uint32 `json:"socket_id"`
	Sender   string `json:"sender"`
	Message  string `json:"message"`
	IsAdmin  bool   `json:"is_admin,omitempty"`
}

// Announcement is a server-wide banner shown for Timer seconds.
type Announcement struct {
	Message string `json:"message"`
	Timer   int32  `json:"timer"`
}

// Skin carries one player's cosmetic payload.
type Skin struct {
	SocketID uint32 `json:"socket_id"`
	SkinData []byte `json:"skin_data"`
}

// Payload is a tagged union: exactly one field is non-nil.
type Payload struct {
	Chat         *Chat         `json:"chat,omitempty"`
	Announcement *Announcement `json:"announcement,omitempty"`
	Skin         *Skin         `json:"skin,omitempty"`
	Raw          []byte        `json:"raw,omitempty"`
}

// Envelope is the outermost frame. Uncompressed holds the payload directly;
// Compressed holds an already-deflated encoding produced by the transport.
type Envelope struct {
	Uncompressed *Payload `json:"uncompressed,omitempty"`
	Compressed   []byte   `json:"compressed,omitempty"`
}

// Uncompressed encodes a payload in an uncompressed envelope.
//
// The inputs are validated and bounded before they reach this point, so
// encoding cannot fail; if it does, that is a broken invariant and the
// process halts rather than emitting a corrupt frame.
func Uncompressed(p Payload) []byte {
	data, err := json.Marshal(Envelope{Uncompressed: &p})
	if err != nil {
		panic(fmt.Sprintf("encoding outbound envelope: %v", err))
	}
	return data
}

// ChatPayload encodes a chat message in an uncompressed envelope.
func ChatPayload(c Chat) []byte {
	return Uncompressed(Payload{Chat: &c})
}

// AnnouncementPayload encodes an announcement in an uncompressed envelope.
func AnnouncementPayload(a Announcement) []byte {
	return Uncompressed(Payload{Announcement: &a})
}

// SkinPayload encodes a cosmetic payload in an uncompressed envelope.
func SkinPayload(s Skin) []byte {
	return Uncompressed(Payload{Skin: &s})
}

// PlayerData is the per-tick position/animation payload cached on a
// connection. The core treats it as opaque gameplay state; only Pos is
// interpreted (attack origin, flag grabs).
type PlayerData struct {
	SocketID  uint32     `json:"socket_id"`
	Pos       [3]float32 `json:"pos"`
	Angle     [3]float32 `json:"angle,omitempty"`
	AnimFrame int32      `json:"anim_frame,omitempty"`
	AnimID    int32      `json:"anim_id,omitempty"`
}

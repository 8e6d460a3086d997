package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry is one accepted chat message as recorded for moderation review.
type Entry struct {
	ID       uuid.UUID
	SocketID uint32
	Sender   string
	Message  string
	IP       string
	SentAt   time.Time
}

// NewEntry builds a history entry for an accepted message.
func NewEntry(socketID uint32, sender, msg, ip string, sentAt time.Time) Entry {
	return Entry{
		ID:       uuid.New(),
		SocketID: socketID,
		Sender:   sender,
		Message:  msg,
		IP:       ip,
		SentAt:   sentAt,
	}
}

// Recorder persists accepted chat messages. Recording is best-effort and
// fire-and-forget from the coordinator's point of view; it must never block
// message handling.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// NopRecorder discards all entries. Used when chat logging is disabled.
type NopRecorder struct{}

// Record discards the entry.
func (NopRecorder) Record(context.Context, Entry) error { return nil }

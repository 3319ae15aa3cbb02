package model

import (
	"time"

	"github.com/google/uuid"
)

// Lifetime is the visibility window of a message. Older messages are
// filtered out of every view and eventually purged from the store.
const Lifetime = 2 * time.Minute

type MessageList []Message

type Message struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Content   string     `db:"content" json:"content"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	ReplyTo   *uuid.UUID `db:"reply_to" json:"reply_to,omitempty"`
}

// Expired reports whether the message has left its visibility window as
// judged by the given clock. The server and every viewer evaluate the
// boundary against their own clock; no synchronization is attempted.
func (m Message) Expired(now time.Time, lifetime time.Duration) bool {
	return now.Sub(m.CreatedAt) >= lifetime
}

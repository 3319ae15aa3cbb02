package model

import "github.com/google/uuid"

const (
	EventInsert = "insert"
	EventDelete = "delete"
)

// RoomEvent is the envelope carried over the Kafka topic and pushed to
// every websocket subscriber. Insert events carry the confirmed message,
// delete events carry the ids removed by a purge.
type RoomEvent struct {
	Type    string      `json:"type"`
	Message *Message    `json:"message,omitempty"`
	IDs     []uuid.UUID `json:"ids,omitempty"`
}

package amqp

import (
	"encoding/json"
	"time"
)

// Message types carried on the sync queue.
const (
	TypeTourSync   = "tour.sync"
	TypeTourDelete = "tour.delete"
)

// SyncMessage is a lightweight notification that a tour changed. It carries
// only identifiers; the worker fetches the full tour from the database, so
// a stale or duplicated message is harmless.
type SyncMessage struct {
	Type      string    `json:"type"`
	TourID    string    `json:"tour_id"`
	UpdatedAt time.Time `json:"updated_at"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTourSyncMessage creates a sync notification for a created or updated tour
func NewTourSyncMessage(tourID string, updatedAt time.Time) *SyncMessage {
	return &SyncMessage{
		Type:      TypeTourSync,
		TourID:    tourID,
		UpdatedAt: updatedAt,
		Timestamp: time.Now(),
	}
}

// NewTourDeleteMessage creates a notification for a deleted tour
func NewTourDeleteMessage(tourID string) *SyncMessage {
	return &SyncMessage{
		Type:      TypeTourDelete,
		TourID:    tourID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SyncMessageFromJSON creates a message from JSON bytes
func SyncMessageFromJSON(data []byte) (*SyncMessage, error) {
	var msg SyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

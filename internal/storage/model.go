package storage

import (
	"time"

	"github.com/google/uuid"
)

// Session is a single recording session of bus traffic for one vehicle
type Session struct {
	ID        int64     `json:"ID"`
	StartTime time.Time `json:"startTime"`
	VehicleID string    `json:"vehicleID"`
	Config    *string   `json:"config,omitempty"` // Optional configuration in JSON format
}

// Message is one encoded payload observed on a topic
type Message struct {
	ID        int64     `json:"ID"`
	SessionID int64     `json:"sessionID"`
	Timestamp time.Time `json:"timestamp"`
	Topic     string    `json:"topic"`
	Payload   []byte    `json:"payload"`
}

// PlanRecord describes a stored mission plan without its body
type PlanRecord struct {
	ID        uuid.UUID `json:"ID"`
	SessionID int64     `json:"sessionID"`
	StoredAt  time.Time `json:"storedAt"`
	NumNodes  int       `json:"numNodes"`
	Size      int       `json:"size"` // Encoded size in bytes
}

package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/roman-kulish/mission-control/internal/mission"
)

// Store is a journal of bus traffic. Messages are kept in their encoded wire
// form; decoding happens on read so schema mismatches surface to the reader.
type Store interface {
	// CreateSession starts a new recording session and returns its unique identifier.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - vehicleID: Identifier of the vehicle whose traffic is recorded
	//   - config: Optional configuration. Can be string, []byte, or JSON-serializable object
	//
	// Returns:
	//   - sessionID: Unique identifier for the created session
	//   - error: If session creation fails or context is cancelled
	CreateSession(ctx context.Context, vehicleID string, config any) (sessionID int64, err error)

	// Session retrieves a specific recording session by its ID.
	Session(ctx context.Context, id int64) (session *Session, err error)

	// Sessions returns all recording sessions, ordered by start time.
	Sessions(ctx context.Context) (sessions []*Session, err error)

	// StoreMessages saves encoded messages for a session in a single atomic transaction.
	// Message ID and SessionID fields are ignored.
	StoreMessages(ctx context.Context, sessionID int64, messages []Message) error

	// ReadMessages returns a reader over a session's messages in insertion order.
	ReadMessages(ctx context.Context, sessionID int64, opts ...ReaderOption) (MessageReader, error)

	// StorePlan saves a mission plan snapshot. Plans are immutable, storing the same plan id twice fails.
	StorePlan(ctx context.Context, sessionID int64, plan mission.Plan) error

	// RecordPlan saves a plan snapshot and journals it as a mission update message
	// at ts, in a single atomic transaction.
	RecordPlan(ctx context.Context, sessionID int64, ts time.Time, plan mission.Plan) error

	// Plan loads and decodes a stored plan.
	Plan(ctx context.Context, id uuid.UUID) (mission.Plan, error)

	// Plans lists the plans stored for a session.
	Plans(ctx context.Context, sessionID int64) ([]PlanRecord, error)

	// Close releases all database connections and resources.
	// It is safe to call Close multiple times.
	Close() error
}

var _ Store = (*SqliteStore)(nil)

// MessageAt is a helper to build a Message from a topic and payload.
func MessageAt(ts time.Time, topic string, payload []byte) Message {
	return Message{Timestamp: ts, Topic: topic, Payload: payload}
}

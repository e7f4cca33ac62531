package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roman-kulish/mission-control/internal/iface"
)

// DefaultBatchSize is the number of messages fetched per page
const DefaultBatchSize = 256

// MessageReader provides an iterator-based interface for reading journaled
// messages with optional time and topic filtering.
type MessageReader interface {
	// Session returns metadata about the recording session this reader is accessing.
	Session() *Session

	// Next advances the iterator and returns true if there is another message
	// to read, false when the iteration is complete or if an error occurred.
	Next(context.Context) bool

	// Current returns the current message in the iteration.
	Current() *Message

	// Error returns any error that occurred during iteration.
	Error() error

	// Close releases any resources associated with the reader.
	Close() error
}

var _ MessageReader = (*SqliteMessageReader)(nil)

// ReaderOption configures a MessageReader with specific filtering criteria.
type ReaderOption func(*SqliteMessageReader)

// WithTopics limits the reader to messages published on the given topics.
func WithTopics(topics ...string) ReaderOption {
	return func(r *SqliteMessageReader) {
		r.topics = append(r.topics, topics...)
	}
}

// WithStartTime excludes messages recorded before t.
func WithStartTime(t time.Time) ReaderOption {
	return func(r *SqliteMessageReader) {
		r.startTime = &t
	}
}

// WithEndTime excludes messages recorded after t.
func WithEndTime(t time.Time) ReaderOption {
	return func(r *SqliteMessageReader) {
		r.endTime = &t
	}
}

// WithTimeRange is WithStartTime and WithEndTime combined.
func WithTimeRange(startTime, endTime time.Time) ReaderOption {
	return func(r *SqliteMessageReader) {
		r.startTime = &startTime
		r.endTime = &endTime
	}
}

// WithBatchSize sets how many messages are fetched per page.
func WithBatchSize(n int) ReaderOption {
	return func(r *SqliteMessageReader) {
		r.batchSize = n
	}
}

// SqliteMessageReader implements MessageReader for the Sqlite backend.
type SqliteMessageReader struct {
	db *sql.DB

	sessionID int64
	session   *Session
	batchSize int

	startTime *time.Time // Optional start of time range filter
	endTime   *time.Time // Optional end of time range filter
	topics    []string   // Optional topic filter

	query   string
	page    []Message
	pos     int
	lastID  int64
	drained bool
	current *Message
	err     error
}

func newSqliteMessageReader(ctx context.Context, db *sql.DB, sessionID int64, opts ...ReaderOption) (*SqliteMessageReader, error) {
	r := &SqliteMessageReader{
		db:        db,
		sessionID: sessionID,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.init(ctx); err != nil {
		return nil, fmt.Errorf("initializing reader: %w", err)
	}
	return r, nil
}

func (r *SqliteMessageReader) init(ctx context.Context) error {
	if r.db == nil {
		return errors.New("database connection required")
	}
	if r.sessionID <= 0 {
		return errors.New("session ID required")
	}
	if r.batchSize <= 0 {
		return fmt.Errorf("invalid batch size %d", r.batchSize)
	}
	if r.startTime != nil && r.endTime != nil && r.startTime.After(*r.endTime) {
		return fmt.Errorf("start time %s is after end time %s", r.startTime, r.endTime)
	}

	session, err := querySession(ctx, r.db, r.sessionID)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	r.session = session

	var sb strings.Builder
	sb.WriteString(selectMessagesSQL)
	if len(r.topics) > 0 {
		sb.WriteString("\n    AND topic IN (")
		sb.WriteString(strings.TrimSuffix(strings.Repeat("?, ", len(r.topics)), ", "))
		sb.WriteString(")")
	}
	sb.WriteString("\nORDER BY id\nLIMIT ?")
	r.query = sb.String()

	return nil
}

func (r *SqliteMessageReader) Session() *Session {
	return r.session
}

func (r *SqliteMessageReader) Next(ctx context.Context) bool {
	if r.err != nil {
		return false
	}

	if r.pos >= len(r.page) {
		if r.drained {
			return false
		}
		if r.err = r.fetch(ctx); r.err != nil {
			return false
		}
		if len(r.page) == 0 {
			return false
		}
	}

	r.current = &r.page[r.pos]
	r.pos++
	return true
}

func (r *SqliteMessageReader) fetch(ctx context.Context) (err error) {
	startNs, endNs := minTimestampNs, maxTimestampNs
	if r.startTime != nil {
		startNs = toTimestampNs(*r.startTime)
	}
	if r.endTime != nil {
		endNs = toTimestampNs(*r.endTime)
	}

	args := make([]any, 0, 5+len(r.topics))
	args = append(args, r.sessionID, r.lastID, startNs, endNs)
	for _, topic := range r.topics {
		args = append(args, topic)
	}
	args = append(args, r.batchSize)

	rows, err := r.db.QueryContext(ctx, r.query, args...)
	if err != nil {
		return fmt.Errorf("querying messages: %w", err)
	}
	defer closeWithError(rows, &err)

	page := make([]Message, 0, r.batchSize)
	for rows.Next() {
		var m Message
		var ns int64
		if err = rows.Scan(&m.ID, &ns, &m.Topic, &m.Payload); err != nil {
			return fmt.Errorf("scanning message: %w", err)
		}
		m.SessionID = r.sessionID
		m.Timestamp = fromTimestampNs(ns)
		page = append(page, m)
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("iterating messages: %w", err)
	}

	r.page, r.pos = page, 0
	r.drained = len(page) < r.batchSize
	if len(page) > 0 {
		r.lastID = page[len(page)-1].ID
	}
	return nil
}

func (r *SqliteMessageReader) Current() *Message {
	return r.current
}

func (r *SqliteMessageReader) Error() error {
	return r.err
}

func (r *SqliteMessageReader) Close() error {
	r.page = nil
	r.current = nil
	return nil
}

// DecodeCurrent decodes the current message with the channel bound to its
// topic and renders it for display. Unknown topics and schema mismatches are
// returned as errors.
func DecodeCurrent(r MessageReader) (string, error) {
	m := r.Current()
	if m == nil {
		return "", errors.New("no current message")
	}

	b, ok := iface.Lookup(m.Topic)
	if !ok {
		return "", fmt.Errorf("message %d: unknown topic %q", m.ID, m.Topic)
	}
	return b.Describe(m.Payload)
}

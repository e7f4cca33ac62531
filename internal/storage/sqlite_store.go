package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roman-kulish/mission-control/internal/iface"
	"github.com/roman-kulish/mission-control/internal/mission"
)

// ErrPlanNotFound is returned by Plan when no plan with the given id is stored
var ErrPlanNotFound = errors.New("plan not found")

// SqliteStore handles database operations
type SqliteStore struct {
	dbPath string
	logger *slog.Logger

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// StoreOption configures a SqliteStore
type StoreOption func(*SqliteStore)

// WithLogger sets the logger for the store
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *SqliteStore) {
		s.logger = logger.With(slog.String("db", s.dbPath))
	}
}

// NewSqliteStore creates a store backed by the Sqlite database at dbPath.
// Connections are opened, and the schema initialized, on first use.
func NewSqliteStore(dbPath string, opts ...StoreOption) *SqliteStore {
	s := SqliteStore{
		dbPath: dbPath,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return &s
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}
		db.SetMaxOpenConns(1)

		if err = runSQLCommand(db, initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.logger.Debug("opened write connection")
		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

// getReadDB opens the read-only connection. The schema must exist, so the
// write connection is initialized first.
func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		if _, err := s.getWriteDB(); err != nil {
			s.readDBErr = err
			return
		}

		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func (s *SqliteStore) CreateSession(ctx context.Context, vehicleID string, config any) (sessionID int64, err error) {
	configData, err := toConfigData(config)
	if err != nil {
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertSessionSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.ExecContext(ctx, vehicleID, configData)
	if err != nil {
		err = fmt.Errorf("inserting session: %w", err)
		return
	}

	sessionID, err = result.LastInsertId()
	if err != nil {
		err = fmt.Errorf("getting session ID: %w", err)
	}
	return
}

func (s *SqliteStore) Session(ctx context.Context, id int64) (session *Session, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	return querySession(ctx, db, id)
}

func querySession(ctx context.Context, db *sql.DB, id int64) (session *Session, err error) {
	stmt, err := db.PrepareContext(ctx, selectSessionSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	var sess Session
	var config sql.NullString
	if err = stmt.QueryRowContext(ctx, id).Scan(&sess.ID, &sess.StartTime, &sess.VehicleID, &config); err != nil {
		err = fmt.Errorf("scanning session: %w", err)
		return
	}
	if config.Valid {
		sess.Config = &config.String
	}

	return &sess, nil
}

func (s *SqliteStore) Sessions(ctx context.Context) (sessions []*Session, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectSessionsSQL)
	if err != nil {
		err = fmt.Errorf("querying sessions: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var sess Session
		var config sql.NullString
		if err = rows.Scan(&sess.ID, &sess.StartTime, &sess.VehicleID, &config); err != nil {
			err = fmt.Errorf("scanning session: %w", err)
			return
		}
		if config.Valid {
			sess.Config = &config.String
		}
		sessions = append(sessions, &sess)
	}
	err = rows.Err()
	return
}

func (s *SqliteStore) StoreMessages(ctx context.Context, sessionID int64, messages []Message) (err error) {
	if len(messages) == 0 {
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	for start := 0; start < len(messages); start += maxBatchRows {
		end := min(start+maxBatchRows, len(messages))
		if err = insertMessages(ctx, tx, sessionID, messages[start:end]); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// maxBatchRows keeps a batch insert well below the Sqlite bound variables limit
const maxBatchRows = 500

func insertMessages(ctx context.Context, tx *sql.Tx, sessionID int64, messages []Message) error {
	values := make([]interface{}, 0, len(messages)*4)
	valuesPlaceholder := "(?, ?, ?, ?)"

	var sb strings.Builder
	sb.WriteString(insertMessageSQL)

	for i, m := range messages {
		payload := m.Payload
		if payload == nil {
			payload = []byte{}
		}
		values = append(values, sessionID, toTimestampNs(m.Timestamp), m.Topic, payload)

		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(valuesPlaceholder)
	}

	if _, err := tx.ExecContext(ctx, sb.String(), values...); err != nil {
		return fmt.Errorf("batch inserting messages: %w", err)
	}
	return nil
}

// ReadMessages creates a reader over a session's messages. The reader pages
// through the table by message ID, so it is safe to keep it open while new
// messages are written.
//
// The returned reader must be closed after use.
func (s *SqliteStore) ReadMessages(ctx context.Context, sessionID int64, opts ...ReaderOption) (MessageReader, error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}
	r, err := newSqliteMessageReader(ctx, db, sessionID, opts...)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *SqliteStore) StorePlan(ctx context.Context, sessionID int64, plan mission.Plan) (err error) {
	payload, err := iface.MissionUpdateTopic{}.Encode(plan)
	if err != nil {
		return err
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	stmt, err := db.PrepareContext(ctx, insertPlanSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	if _, err = stmt.ExecContext(ctx, plan.ID.String(), sessionID, len(plan.Nodes), payload); err != nil {
		return fmt.Errorf("inserting plan %s: %w", plan.ID, err)
	}
	return nil
}

func (s *SqliteStore) RecordPlan(ctx context.Context, sessionID int64, ts time.Time, plan mission.Plan) (err error) {
	payload, err := iface.MissionUpdateTopic{}.Encode(plan)
	if err != nil {
		return err
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	if _, err = tx.ExecContext(ctx, insertPlanSQL, plan.ID.String(), sessionID, len(plan.Nodes), payload); err != nil {
		return fmt.Errorf("inserting plan %s: %w", plan.ID, err)
	}
	if err = insertMessages(ctx, tx, sessionID, []Message{MessageAt(ts, iface.TopicMissionUpdate, payload)}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SqliteStore) Plan(ctx context.Context, id uuid.UUID) (plan mission.Plan, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, selectPlanSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	var payload []byte
	if err = stmt.QueryRowContext(ctx, id.String()).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = fmt.Errorf("%w: %s", ErrPlanNotFound, id)
			return
		}
		err = fmt.Errorf("scanning plan: %w", err)
		return
	}

	return iface.MissionUpdateTopic{}.Decode(payload)
}

func (s *SqliteStore) Plans(ctx context.Context, sessionID int64) (plans []PlanRecord, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectPlansSQL, sessionID)
	if err != nil {
		err = fmt.Errorf("querying plans: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var rec PlanRecord
		var id string
		if err = rows.Scan(&id, &rec.SessionID, &rec.StoredAt, &rec.NumNodes, &rec.Size); err != nil {
			err = fmt.Errorf("scanning plan: %w", err)
			return
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			err = fmt.Errorf("parsing plan id %q: %w", id, err)
			return
		}
		plans = append(plans, rec)
	}
	err = rows.Err()
	return
}

// Record encodes v for the channel and stores it as a single message.
func Record[M any](ctx context.Context, s Store, sessionID int64, ch iface.Channel[M], ts time.Time, v M) error {
	payload, err := ch.Encode(v)
	if err != nil {
		return err
	}
	return s.StoreMessages(ctx, sessionID, []Message{MessageAt(ts, ch.Topic(), payload)})
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		if s.writeDB != nil {
			if err := runSQLCommand(s.writeDB, initIndexesSQL); err != nil {
				s.logger.Warn("failed to create indexes", slog.String("error", err.Error()))
			}

			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		switch {
		case writeErr != nil && readErr != nil:
			s.closeErr = errors.Join(writeErr, readErr)
		case writeErr != nil:
			s.closeErr = writeErr
		case readErr != nil:
			s.closeErr = readErr
		}
	})

	return s.closeErr
}

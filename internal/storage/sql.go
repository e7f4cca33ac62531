package storage

const (
	initSchemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    start_time TIMESTAMP NOT NULL,
    vehicle_id TEXT      NOT NULL,
    config     TEXT
);

CREATE TABLE IF NOT EXISTS messages (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id   INTEGER NOT NULL REFERENCES sessions (id),
    timestamp_ns INTEGER NOT NULL,
    topic        TEXT    NOT NULL,
    payload      BLOB    NOT NULL
);

CREATE TABLE IF NOT EXISTS plans (
    id         TEXT PRIMARY KEY,
    session_id INTEGER   NOT NULL REFERENCES sessions (id),
    stored_at  TIMESTAMP NOT NULL,
    num_nodes  INTEGER   NOT NULL,
    payload    BLOB      NOT NULL
);`

	initIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_messages_session_time ON messages (session_id, timestamp_ns);
CREATE INDEX IF NOT EXISTS idx_messages_session_topic ON messages (session_id, topic);
CREATE INDEX IF NOT EXISTS idx_plans_session ON plans (session_id);`

	insertSessionSQL = `
INSERT INTO sessions (
                      start_time,
                      vehicle_id,
                      config)
VALUES (CURRENT_TIMESTAMP, ?, ?)`

	selectSessionSQL = `
SELECT 
    id, 
    start_time, 
    vehicle_id, 
    config 
FROM sessions 
WHERE 
    id = ?`

	selectSessionsSQL = `
SELECT 
    id, 
    start_time, 
    vehicle_id, 
    config 
FROM sessions
ORDER BY start_time, id`

	insertMessageSQL = `
    INSERT INTO messages (
        session_id,
        timestamp_ns,
        topic,
        payload
    )
    VALUES `

	selectMessagesSQL = `
SELECT
    id,
    timestamp_ns,
    topic,
    payload
FROM messages
WHERE
    session_id = ?
    AND id > ?
    AND timestamp_ns >= ?
    AND timestamp_ns <= ?`

	insertPlanSQL = `
INSERT INTO plans (
                   id,
                   session_id,
                   stored_at,
                   num_nodes,
                   payload)
VALUES (?, ?, CURRENT_TIMESTAMP, ?, ?)`

	selectPlanSQL = `
SELECT
    payload
FROM plans
WHERE
    id = ?`

	selectPlansSQL = `
SELECT
    id,
    session_id,
    stored_at,
    num_nodes,
    length(payload)
FROM plans
WHERE
    session_id = ?
ORDER BY stored_at, rowid`
)

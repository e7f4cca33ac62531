package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && !errors.Is(cErr, sql.ErrTxDone) && *err == nil {
		*err = cErr
	}
}

func toConfigData(config any) (configData sql.NullString, err error) {
	if config == nil {
		return
	}

	switch c := config.(type) {
	case string:
		configData.Valid = true
		configData.String = c

	case []byte:
		configData.Valid = true
		configData.String = string(c)

	default:
		var p []byte
		if p, err = json.Marshal(config); err != nil {
			err = fmt.Errorf("marshaling config: %w", err)
			return
		}

		configData.Valid = true
		configData.String = string(p)
	}
	return
}

func toTimestampNs(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func fromTimestampNs(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}

const (
	minTimestampNs int64 = math.MinInt64
	maxTimestampNs int64 = math.MaxInt64
)

package storage

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeCloser struct{ err error }

func (f fakeCloser) Close() error    { return f.err }
func (f fakeCloser) Rollback() error { return f.err }

func TestCloseWithError(t *testing.T) {
	closeErr := errors.New("close failed")

	var err error
	closeWithError(fakeCloser{closeErr}, &err)
	assert.ErrorIs(t, err, closeErr)

	first := errors.New("first")
	err = first
	closeWithError(fakeCloser{closeErr}, &err)
	assert.Equal(t, first, err)
}

func TestRollbackWithError(t *testing.T) {
	var err error
	rollbackWithError(fakeCloser{sql.ErrTxDone}, &err)
	assert.NoError(t, err)

	rollbackWithError(fakeCloser{errors.New("rollback failed")}, &err)
	assert.EqualError(t, err, "rollback failed")
}

func TestToConfigData(t *testing.T) {
	data, err := toConfigData(nil)
	assert.NoError(t, err)
	assert.False(t, data.Valid)

	data, err = toConfigData("raw")
	assert.NoError(t, err)
	assert.Equal(t, sql.NullString{String: "raw", Valid: true}, data)

	data, err = toConfigData(struct {
		ID string `json:"id"`
	}{"v1"})
	assert.NoError(t, err)
	assert.Equal(t, `{"id":"v1"}`, data.String)

	_, err = toConfigData(make(chan int))
	assert.Error(t, err)
}

func TestTimestampNs(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.FixedZone("CEST", 2*3600))
	back := fromTimestampNs(toTimestampNs(ts))

	assert.True(t, ts.Equal(back))
	assert.Equal(t, time.UTC, back.Location())
}

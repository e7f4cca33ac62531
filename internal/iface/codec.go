package iface

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roman-kulish/mission-control/internal/wire"
)

// ErrSchemaMismatch is matched by every DecodeError
var ErrSchemaMismatch = errors.New("schema mismatch")

// DecodeError reports bytes on a topic that do not conform to the topic's payload type.
type DecodeError struct {
	Topic string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s payload: %s: %v", e.Topic, ErrSchemaMismatch, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrSchemaMismatch, e.Err}
}

// EncodeError reports a payload value that has no wire form, e.g. an unset union.
type EncodeError struct {
	Topic string
	Err   error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encoding %s payload: %v", e.Topic, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

var errNilPayload = errors.New("nil payload")

func encode[M any](topic string, v M) ([]byte, error) {
	var payload any = v
	switch x := payload.(type) {
	case nil:
		return nil, &EncodeError{Topic: topic, Err: errNilPayload}
	case float32:
		payload = wire.Float32(x)
	}

	p, err := json.Marshal(payload)
	if err != nil {
		return nil, &EncodeError{Topic: topic, Err: err}
	}
	return p, nil
}

// decode handles payload types the JSON decoder can fill directly. Decoding
// into a pointer first makes a literal null fail instead of yielding a zero value.
// Bare floats go through wire.Float32 so that non-finite values survive.
func decode[M any](topic string, data []byte) (M, error) {
	var v M
	if f, ok := any(&v).(*float32); ok {
		if err := wire.Strict(data, (*wire.Float32)(f)); err != nil {
			var zero M
			return zero, &DecodeError{Topic: topic, Err: err}
		}
		return v, nil
	}

	var p *M
	if err := wire.Strict(data, &p); err != nil {
		var zero M
		return zero, &DecodeError{Topic: topic, Err: err}
	}
	if p == nil {
		var zero M
		return zero, &DecodeError{Topic: topic, Err: errNilPayload}
	}
	return *p, nil
}

// decodeWith handles union payload types through their tagged unmarshal function.
func decodeWith[M any](topic string, data []byte, unmarshal func([]byte) (M, error)) (M, error) {
	v, err := unmarshal(data)
	if err != nil {
		var zero M
		return zero, &DecodeError{Topic: topic, Err: err}
	}
	return v, nil
}

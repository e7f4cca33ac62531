package wire

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrInvalidFloat is returned when a float member is neither a JSON number nor
// one of the non-finite names.
var ErrInvalidFloat = errors.New("invalid float")

// Names of the non-finite float values on the wire. JSON numbers cannot carry them.
const (
	NaN         = "NaN"
	PosInfinity = "Infinity"
	NegInfinity = "-Infinity"
)

// Float64 is a float64 that encodes NaN and the infinities as strings.
type Float64 float64

func (f Float64) MarshalJSON() ([]byte, error) {
	return marshalFloat(float64(f), 64)
}

func (f *Float64) UnmarshalJSON(data []byte) error {
	v, err := parseFloat(data, 64)
	if err != nil {
		return err
	}
	*f = Float64(v)
	return nil
}

// Float32 is the single precision counterpart of Float64.
type Float32 float32

func (f Float32) MarshalJSON() ([]byte, error) {
	return marshalFloat(float64(f), 32)
}

func (f *Float32) UnmarshalJSON(data []byte) error {
	v, err := parseFloat(data, 32)
	if err != nil {
		return err
	}
	*f = Float32(v)
	return nil
}

func marshalFloat(f float64, bits int) ([]byte, error) {
	switch {
	case math.IsNaN(f):
		return []byte(`"` + NaN + `"`), nil
	case math.IsInf(f, 1):
		return []byte(`"` + PosInfinity + `"`), nil
	case math.IsInf(f, -1):
		return []byte(`"` + NegInfinity + `"`), nil
	case bits == 32:
		return json.Marshal(float32(f))
	}
	return json.Marshal(f)
}

func parseFloat(data []byte, bits int) (float64, error) {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, err
		}
		switch s {
		case NaN:
			return math.NaN(), nil
		case PosInfinity:
			return math.Inf(1), nil
		case NegInfinity:
			return math.Inf(-1), nil
		}
		return 0, fmt.Errorf("%w: %q", ErrInvalidFloat, s)
	}

	// a number that overflows the target precision is rejected, not rounded to infinity
	v, err := strconv.ParseFloat(string(data), bits)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidFloat, data)
	}
	return v, nil
}

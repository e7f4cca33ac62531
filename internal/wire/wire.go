// Package wire holds the strict JSON decoding primitives shared by the payload types.
package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrTrailingData is returned when a payload carries bytes after the first JSON value
	ErrTrailingData = errors.New("trailing data after payload")

	// ErrMissingTag is returned when a union payload has no "type" member
	ErrMissingTag = errors.New("missing type tag")

	// ErrDuplicateKey is returned when an object names the same member twice
	ErrDuplicateKey = errors.New("duplicate key")
)

// Strict unmarshals data into v, rejecting unknown fields and trailing data.
// Object keys must match the struct field names exactly and appear at most once.
func Strict(data []byte, v any) error {
	if err := checkKeys(data, reflect.TypeOf(v)); err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return ErrTrailingData
	}
	return nil
}

// errMalformed stops the key walk; the decoder reports the syntax error itself.
var errMalformed = errors.New("malformed")

// checkKeys walks the JSON tokens of data alongside t. The decoder matches keys
// case-insensitively and lets the last duplicate win; both are rejected here.
func checkKeys(data []byte, t reflect.Type) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := checkValue(dec, t); err != nil && !errors.Is(err, errMalformed) {
		return err
	}
	return nil
}

func checkValue(dec *json.Decoder, t reflect.Type) error {
	tok, err := dec.Token()
	if err != nil {
		return errMalformed
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil
	}

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	// types with their own decoder check their own members
	if t != nil && reflect.PointerTo(t).Implements(unmarshalerType) {
		t = nil
	}

	switch delim {
	case '[':
		var elem reflect.Type
		if t != nil && (t.Kind() == reflect.Slice || t.Kind() == reflect.Array) {
			elem = t.Elem()
		}
		for dec.More() {
			if err := checkValue(dec, elem); err != nil {
				return err
			}
		}

	case '{':
		fields := structFields(t)
		seen := make(map[string]bool)
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return errMalformed
			}
			key, _ := tok.(string)
			if seen[key] {
				return fmt.Errorf("json: %w %q", ErrDuplicateKey, key)
			}
			seen[key] = true

			var ft reflect.Type
			switch {
			case fields != nil:
				if ft, ok = fields[key]; !ok {
					return fmt.Errorf("json: unknown field %q", key)
				}
			case t != nil && t.Kind() == reflect.Map:
				ft = t.Elem()
			}
			if err := checkValue(dec, ft); err != nil {
				return err
			}
		}
	}

	if _, err := dec.Token(); err != nil {
		return errMalformed
	}
	return nil
}

// structFields maps the exact JSON member names of struct type t to their types.
// It returns nil when t is not a plain struct.
func structFields(t reflect.Type) map[string]reflect.Type {
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	fields := make(map[string]reflect.Type, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			return nil
		}
		if !f.IsExported() || f.Tag.Get("json") == "-" {
			continue
		}
		fields[fieldName(f)] = f.Type
	}
	return fields
}

var unmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()

// Decode is Strict followed by Complete.
func Decode(data []byte, v any) error {
	if err := Strict(data, v); err != nil {
		return err
	}
	return Complete(v)
}

// Complete reports an error naming every pointer or raw member of the struct
// pointed to by v that was left unset by decoding.
func Complete(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("wire.Complete: expected pointer to struct, got %T", v)
	}
	rv = rv.Elem()
	rt := rv.Type()

	var missing []string
	for i := 0; i < rt.NumField(); i++ {
		f := rv.Field(i)
		switch {
		case f.Kind() == reflect.Pointer && f.IsNil():
		case f.Type() == rawMessageType && f.Len() == 0:
		default:
			continue
		}
		missing = append(missing, fieldName(rt.Field(i)))
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing field(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

var rawMessageType = reflect.TypeOf(json.RawMessage(nil))

func fieldName(f reflect.StructField) string {
	if tag, ok := f.Tag.Lookup("json"); ok {
		if name, _, _ := strings.Cut(tag, ","); name != "" {
			return name
		}
	}
	return f.Name
}

// Tag returns the "type" member of a union payload.
func Tag(data []byte) (string, error) {
	var head struct {
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return "", err
	}
	if head.Type == nil {
		return "", ErrMissingTag
	}
	return *head.Type, nil
}

// Unit strictly checks that data is a union payload carrying nothing but its tag.
func Unit(data []byte) error {
	var aux struct {
		Type string `json:"type"`
	}
	return Strict(data, &aux)
}

// UnitJSON encodes a field-less union variant.
func UnitJSON(tag string) ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
	}{tag})
}

// Vector is the wire form of a 3D vector: a 3-element array.
type Vector []Float64

// FromVec converts v into its wire form.
func FromVec(v r3.Vec) Vector {
	return Vector{Float64(v.X), Float64(v.Y), Float64(v.Z)}
}

// Vec converts the wire form back, failing unless exactly three components are present.
func (v Vector) Vec() (r3.Vec, error) {
	if len(v) != 3 {
		return r3.Vec{}, fmt.Errorf("vector: expected 3 components, got %d", len(v))
	}
	return r3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}, nil
}

// Package waypoint describes mission target positions in one of three reference frames.
package waypoint

import (
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/roman-kulish/mission-control/internal/format"
	"github.com/roman-kulish/mission-control/internal/wire"
)

const (
	KindLocalOffset          Kind = "LocalOffset"
	KindGlobalFixedHeight    Kind = "GlobalFixedHeight"
	KindGlobalRelativeHeight Kind = "GlobalRelativeHeight"
)

// Kind names a Waypoint variant. It is also the variant tag on the wire.
type Kind string

func (k Kind) String() string {
	return string(k)
}

// Waypoint is a target position. Implemented by LocalOffset, GlobalFixedHeight
// and GlobalRelativeHeight only.
type Waypoint interface {
	Kind() Kind
	String() string
	json.Marshaler

	waypoint()
}

// LocalOffset is a target in the local frame, in meters, relative to a
// reference pose the executor resolves.
type LocalOffset struct {
	Offset r3.Vec
}

// GlobalFixedHeight is a geodetic target at an absolute altitude.
type GlobalFixedHeight struct {
	Lat float64
	Lon float64
	Alt float64
}

// GlobalRelativeHeight is a geodetic target whose height is relative to a
// reference altitude the executor resolves.
type GlobalRelativeHeight struct {
	Lat        float64
	Lon        float64
	HeightDiff float64
}

func (LocalOffset) waypoint()          {}
func (GlobalFixedHeight) waypoint()    {}
func (GlobalRelativeHeight) waypoint() {}

func (LocalOffset) Kind() Kind          { return KindLocalOffset }
func (GlobalFixedHeight) Kind() Kind    { return KindGlobalFixedHeight }
func (GlobalRelativeHeight) Kind() Kind { return KindGlobalRelativeHeight }

func (w LocalOffset) String() string {
	return fmt.Sprintf("LocalOffset([%s, %s, %s])",
		format.Float(w.Offset.X), format.Float(w.Offset.Y), format.Float(w.Offset.Z))
}

func (w GlobalFixedHeight) String() string {
	return fmt.Sprintf("GlobalFixedHeight { lat: %s, lon: %s, alt: %s }",
		format.Float(w.Lat), format.Float(w.Lon), format.Float(w.Alt))
}

func (w GlobalRelativeHeight) String() string {
	return fmt.Sprintf("GlobalRelativeHeight { lat: %s, lon: %s, height_diff: %s }",
		format.Float(w.Lat), format.Float(w.Lon), format.Float(w.HeightDiff))
}

type localOffsetJSON struct {
	Type   Kind         `json:"type"`
	Offset *wire.Vector `json:"offset"`
}

type fixedHeightJSON struct {
	Type Kind          `json:"type"`
	Lat  *wire.Float64 `json:"lat"`
	Lon  *wire.Float64 `json:"lon"`
	Alt  *wire.Float64 `json:"alt"`
}

type relativeHeightJSON struct {
	Type       Kind          `json:"type"`
	Lat        *wire.Float64 `json:"lat"`
	Lon        *wire.Float64 `json:"lon"`
	HeightDiff *wire.Float64 `json:"height_diff"`
}

func (w LocalOffset) MarshalJSON() ([]byte, error) {
	offset := wire.FromVec(w.Offset)
	return json.Marshal(localOffsetJSON{Type: KindLocalOffset, Offset: &offset})
}

func (w GlobalFixedHeight) MarshalJSON() ([]byte, error) {
	return json.Marshal(fixedHeightJSON{Type: KindGlobalFixedHeight, Lat: (*wire.Float64)(&w.Lat), Lon: (*wire.Float64)(&w.Lon), Alt: (*wire.Float64)(&w.Alt)})
}

func (w GlobalRelativeHeight) MarshalJSON() ([]byte, error) {
	return json.Marshal(relativeHeightJSON{Type: KindGlobalRelativeHeight, Lat: (*wire.Float64)(&w.Lat), Lon: (*wire.Float64)(&w.Lon), HeightDiff: (*wire.Float64)(&w.HeightDiff)})
}

// Unmarshal decodes a tagged waypoint payload.
func Unmarshal(data []byte) (Waypoint, error) {
	tag, err := wire.Tag(data)
	if err != nil {
		return nil, fmt.Errorf("waypoint: %w", err)
	}

	switch Kind(tag) {
	case KindLocalOffset:
		var aux localOffsetJSON
		if err = wire.Decode(data, &aux); err != nil {
			return nil, fmt.Errorf("waypoint %s: %w", tag, err)
		}
		offset, err := aux.Offset.Vec()
		if err != nil {
			return nil, fmt.Errorf("waypoint %s: %w", tag, err)
		}
		return LocalOffset{Offset: offset}, nil

	case KindGlobalFixedHeight:
		var aux fixedHeightJSON
		if err = wire.Decode(data, &aux); err != nil {
			return nil, fmt.Errorf("waypoint %s: %w", tag, err)
		}
		return GlobalFixedHeight{Lat: float64(*aux.Lat), Lon: float64(*aux.Lon), Alt: float64(*aux.Alt)}, nil

	case KindGlobalRelativeHeight:
		var aux relativeHeightJSON
		if err = wire.Decode(data, &aux); err != nil {
			return nil, fmt.Errorf("waypoint %s: %w", tag, err)
		}
		return GlobalRelativeHeight{Lat: float64(*aux.Lat), Lon: float64(*aux.Lon), HeightDiff: float64(*aux.HeightDiff)}, nil
	}

	return nil, fmt.Errorf("waypoint: unknown variant %q", tag)
}

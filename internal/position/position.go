// Package position provides the vehicle position value types exchanged on the bus:
// vehicle-local Cartesian positions and displacements, and geodetic positions.
package position

import (
	"cmp"
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/roman-kulish/mission-control/internal/wire"
)

// Local is a position in the vehicle-local Cartesian frame, in meters.
// The zero value is the frame origin.
type Local struct {
	X float32
	Y float32
	Z float32
}

// NewLocal creates a local position from its components
func NewLocal(x, y, z float32) Local {
	return Local{X: x, Y: y, Z: z}
}

// LocalFromArray creates a local position from its raw [x, y, z] form
func LocalFromArray(a [3]float32) Local {
	return Local{X: a[0], Y: a[1], Z: a[2]}
}

// LocalFromVec creates a local position from a generic 3D vector.
// Components are narrowed to single precision.
func LocalFromVec(v r3.Vec) Local {
	return Local{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

// Add translates p by o, component-wise.
func (p Local) Add(o Local) Local {
	return Local{X: p.X + o.X, Y: p.Y + o.Y, Z: p.Z + o.Z}
}

// Sub returns the displacement leading from o to p.
func (p Local) Sub(o Local) Displacement {
	return Displacement{X: p.X - o.X, Y: p.Y - o.Y, Z: p.Z - o.Z}
}

// Translate moves p by d.
func (p Local) Translate(d Displacement) Local {
	return Local{X: p.X + d.X, Y: p.Y + d.Y, Z: p.Z + d.Z}
}

// Array returns the raw [x, y, z] form of p
func (p Local) Array() [3]float32 {
	return [3]float32{p.X, p.Y, p.Z}
}

// Vec returns p as a generic 3D vector. The conversion is exact.
func (p Local) Vec() r3.Vec {
	return r3.Vec{X: float64(p.X), Y: float64(p.Y), Z: float64(p.Z)}
}

func (p Local) String() string {
	return fmt.Sprintf("[%.3f, %.3f, %.3f]", p.X, p.Y, p.Z)
}

type localJSON struct {
	X *wire.Float32 `json:"x"`
	Y *wire.Float32 `json:"y"`
	Z *wire.Float32 `json:"z"`
}

func (p Local) MarshalJSON() ([]byte, error) {
	return json.Marshal(localJSON{X: (*wire.Float32)(&p.X), Y: (*wire.Float32)(&p.Y), Z: (*wire.Float32)(&p.Z)})
}

func (p *Local) UnmarshalJSON(data []byte) error {
	var aux localJSON
	if err := wire.Decode(data, &aux); err != nil {
		return fmt.Errorf("position.Local: %w", err)
	}

	*p = Local{X: float32(*aux.X), Y: float32(*aux.Y), Z: float32(*aux.Z)}
	return nil
}

// Displacement is a relative offset between two local positions, in meters.
// It is deliberately a different type from Local so that an absolute
// position cannot be used where an offset is expected.
type Displacement struct {
	X float32
	Y float32
	Z float32
}

// Vec returns d as a generic 3D vector.
func (d Displacement) Vec() r3.Vec {
	return r3.Vec{X: float64(d.X), Y: float64(d.Y), Z: float64(d.Z)}
}

// Array returns the raw [x, y, z] form of d
func (d Displacement) Array() [3]float32 {
	return [3]float32{d.X, d.Y, d.Z}
}

// Norm returns the Euclidean length of d in meters
func (d Displacement) Norm() float64 {
	return r3.Norm(d.Vec())
}

func (d Displacement) String() string {
	return fmt.Sprintf("<%.3f, %.3f, %.3f>", d.X, d.Y, d.Z)
}

// Global is a geodetic position: latitude and longitude in degrees, altitude in meters.
// No arithmetic is defined on it.
type Global struct {
	Lat float64
	Lon float64
	Alt float32
}

// NewGlobal creates a geodetic position
func NewGlobal(lat, lon float64, alt float32) Global {
	return Global{Lat: lat, Lon: lon, Alt: alt}
}

// Compare orders positions by latitude, then longitude, then altitude.
func (g Global) Compare(o Global) int {
	if c := cmp.Compare(g.Lat, o.Lat); c != 0 {
		return c
	}
	if c := cmp.Compare(g.Lon, o.Lon); c != 0 {
		return c
	}
	return cmp.Compare(g.Alt, o.Alt)
}

func (g Global) String() string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f)", g.Lat, g.Lon, g.Alt)
}

type globalJSON struct {
	Lat *wire.Float64 `json:"lat"`
	Lon *wire.Float64 `json:"lon"`
	Alt *wire.Float32 `json:"alt"`
}

func (g Global) MarshalJSON() ([]byte, error) {
	return json.Marshal(globalJSON{Lat: (*wire.Float64)(&g.Lat), Lon: (*wire.Float64)(&g.Lon), Alt: (*wire.Float32)(&g.Alt)})
}

func (g *Global) UnmarshalJSON(data []byte) error {
	var aux globalJSON
	if err := wire.Decode(data, &aux); err != nil {
		return fmt.Errorf("position.Global: %w", err)
	}

	*g = Global{Lat: float64(*aux.Lat), Lon: float64(*aux.Lon), Alt: float32(*aux.Alt)}
	return nil
}

// Package missionfile reads and writes the YAML mission authoring format.
//
//	params:
//	  targetVelocity: [5, 5, 2]
//	  targetAcceleration: [2, 2, 1]
//	  targetJerk: [1, 1, 1]
//	  disableYaw: false
//	items:
//	  - type: Init
//	  - type: Takeoff
//	    altitude: 10
//	  - type: Waypoint
//	    localOffset: [20, 0, 0]
//	  - type: Waypoint
//	    global: {lat: 47.397742, lon: 8.545594, alt: 488}
//	  - type: Waypoint
//	    relative: {lat: 47.397742, lon: 8.545594, heightDiff: 15}
//	  - type: Delay
//	    duration: 5s
//	  - type: Land
//
// Node and plan ids are not part of the file; they are allocated on load.
package missionfile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/mission-control/internal/config"
	"github.com/roman-kulish/mission-control/internal/mission"
	"github.com/roman-kulish/mission-control/internal/waypoint"
)

// File is the YAML document
type File struct {
	Params Params `yaml:"params"`
	Items  []Item `yaml:"items"`
}

// Params mirrors mission.Params
type Params struct {
	TargetVelocity     Vector `yaml:"targetVelocity"`
	TargetAcceleration Vector `yaml:"targetAcceleration"`
	TargetJerk         Vector `yaml:"targetJerk"`
	DisableYaw         bool   `yaml:"disableYaw"`
}

// Item is one mission item. Type selects which of the other fields apply.
type Item struct {
	Type        mission.Kind         `yaml:"type"`
	Altitude    *float64             `yaml:"altitude,omitempty"`
	Duration    *config.TimeDuration `yaml:"duration,omitempty"`
	LocalOffset *Vector              `yaml:"localOffset,omitempty"`
	Global      *Global              `yaml:"global,omitempty"`
	Relative    *Relative            `yaml:"relative,omitempty"`
}

// Global is a GlobalFixedHeight target
type Global struct {
	Lat float64 `yaml:"lat"`
	Lon float64 `yaml:"lon"`
	Alt float64 `yaml:"alt"`
}

// Relative is a GlobalRelativeHeight target
type Relative struct {
	Lat        float64 `yaml:"lat"`
	Lon        float64 `yaml:"lon"`
	HeightDiff float64 `yaml:"heightDiff"`
}

// Vector is a 3-element sequence
type Vector [3]float64

func (v *Vector) UnmarshalYAML(value *yaml.Node) error {
	var components []float64
	if err := value.Decode(&components); err != nil {
		return err
	}
	if len(components) != 3 {
		return fmt.Errorf("missionfile.Vector: line %d: expected 3 components, got %d", value.Line, len(components))
	}
	if err := finite(fmt.Sprintf("missionfile.Vector: line %d", value.Line), components...); err != nil {
		return err
	}

	copy(v[:], components)
	return nil
}

func (v Vector) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, c := range v {
		var n yaml.Node
		if err := n.Encode(c); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &n)
	}
	return node, nil
}

func (v Vector) vec() r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

func fromVec(v r3.Vec) Vector {
	return Vector{v.X, v.Y, v.Z}
}

var errNoTarget = errors.New("waypoint needs exactly one of localOffset, global, relative")

// ErrNotFinite is returned for a .inf or .nan where a coordinate or altitude is expected
var ErrNotFinite = errors.New("value is not finite")

func finite(name string, values ...float64) error {
	for _, v := range values {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return fmt.Errorf("%s: %w", name, ErrNotFinite)
		}
	}
	return nil
}

// Load decodes a mission file from r and builds a plan, allocating ids from ids.
func Load(r io.Reader, ids mission.IDGenerator) (mission.Plan, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		return mission.Plan{}, fmt.Errorf("decoding mission file: %w", err)
	}

	return f.Plan(ids)
}

// LoadFile is Load reading from the named file
func LoadFile(path string, ids mission.IDGenerator) (plan mission.Plan, err error) {
	f, err := os.Open(path)
	if err != nil {
		return mission.Plan{}, err
	}
	defer func() {
		if cErr := f.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	return Load(f, ids)
}

// Plan converts the file into a mission plan. Items are taken in file order;
// no sequence rules are applied.
func (f *File) Plan(ids mission.IDGenerator) (mission.Plan, error) {
	b := mission.NewBuilder(ids).WithParams(mission.Params{
		TargetVelocity:     f.Params.TargetVelocity.vec(),
		TargetAcceleration: f.Params.TargetAcceleration.vec(),
		TargetJerk:         f.Params.TargetJerk.vec(),
		DisableYaw:         f.Params.DisableYaw,
	})

	for i, it := range f.Items {
		item, err := it.item()
		if err != nil {
			return mission.Plan{}, fmt.Errorf("item %d (%s): %w", i, it.Type, err)
		}
		b.Add(item)
	}

	return b.Build(), nil
}

func (it Item) item() (mission.Item, error) {
	switch it.Type {
	case mission.KindInit:
		return mission.Init{}, nil
	case mission.KindFindSafeSpot:
		return mission.FindSafeSpot{}, nil
	case mission.KindTransition:
		return mission.Transition{}, nil
	case mission.KindLand:
		return mission.Land{}, nil
	case mission.KindPrecLand:
		return mission.PrecLand{}, nil
	case mission.KindEnd:
		return mission.End{}, nil

	case mission.KindTakeoff:
		if it.Altitude == nil {
			return nil, errors.New("altitude is required")
		}
		if err := finite("altitude", *it.Altitude); err != nil {
			return nil, err
		}
		return mission.Takeoff{Altitude: *it.Altitude}, nil

	case mission.KindDelay:
		if it.Duration == nil {
			return nil, errors.New("duration is required")
		}
		return mission.Delay{Duration: time.Duration(*it.Duration)}, nil

	case mission.KindWaypoint:
		var targets []waypoint.Waypoint
		if it.LocalOffset != nil {
			targets = append(targets, waypoint.LocalOffset{Offset: it.LocalOffset.vec()})
		}
		if it.Global != nil {
			if err := finite("global", it.Global.Lat, it.Global.Lon, it.Global.Alt); err != nil {
				return nil, err
			}
			targets = append(targets, waypoint.GlobalFixedHeight{Lat: it.Global.Lat, Lon: it.Global.Lon, Alt: it.Global.Alt})
		}
		if it.Relative != nil {
			if err := finite("relative", it.Relative.Lat, it.Relative.Lon, it.Relative.HeightDiff); err != nil {
				return nil, err
			}
			targets = append(targets, waypoint.GlobalRelativeHeight{Lat: it.Relative.Lat, Lon: it.Relative.Lon, HeightDiff: it.Relative.HeightDiff})
		}
		if len(targets) != 1 {
			return nil, errNoTarget
		}
		return mission.Waypoint{Target: targets[0]}, nil
	}

	return nil, fmt.Errorf("unknown item type %q", it.Type)
}

// FromPlan converts a plan back into its file form. Ids are dropped.
func FromPlan(plan mission.Plan) (*File, error) {
	f := File{
		Params: Params{
			TargetVelocity:     fromVec(plan.Params.TargetVelocity),
			TargetAcceleration: fromVec(plan.Params.TargetAcceleration),
			TargetJerk:         fromVec(plan.Params.TargetJerk),
			DisableYaw:         plan.Params.DisableYaw,
		},
		Items: make([]Item, 0, len(plan.Nodes)),
	}

	for _, n := range plan.Nodes {
		if n.Item == nil {
			return nil, fmt.Errorf("node %s: nil item", n.ID)
		}

		it := Item{Type: n.Item.Kind()}
		switch v := n.Item.(type) {
		case mission.Takeoff:
			it.Altitude = &v.Altitude
		case mission.Delay:
			d := config.TimeDuration(v.Duration)
			it.Duration = &d
		case mission.Waypoint:
			switch w := v.Target.(type) {
			case waypoint.LocalOffset:
				offset := fromVec(w.Offset)
				it.LocalOffset = &offset
			case waypoint.GlobalFixedHeight:
				it.Global = &Global{Lat: w.Lat, Lon: w.Lon, Alt: w.Alt}
			case waypoint.GlobalRelativeHeight:
				it.Relative = &Relative{Lat: w.Lat, Lon: w.Lon, HeightDiff: w.HeightDiff}
			default:
				return nil, fmt.Errorf("node %s: %w", n.ID, errNoTarget)
			}
		}
		f.Items = append(f.Items, it)
	}

	return &f, nil
}

// Write encodes the plan as a mission file
func Write(w io.Writer, plan mission.Plan) error {
	f, err := FromPlan(plan)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err = enc.Encode(f); err != nil {
		return fmt.Errorf("encoding mission file: %w", err)
	}
	return enc.Close()
}

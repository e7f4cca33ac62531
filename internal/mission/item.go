package mission

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roman-kulish/mission-control/internal/format"
	"github.com/roman-kulish/mission-control/internal/waypoint"
	"github.com/roman-kulish/mission-control/internal/wire"
)

const (
	KindInit         Kind = "Init"
	KindTakeoff      Kind = "Takeoff"
	KindWaypoint     Kind = "Waypoint"
	KindDelay        Kind = "Delay"
	KindFindSafeSpot Kind = "FindSafeSpot"
	KindTransition   Kind = "Transition"
	KindLand         Kind = "Land"
	KindPrecLand     Kind = "PrecLand"
	KindEnd          Kind = "End"
)

// Kind names an Item variant. It is also the variant tag on the wire.
type Kind string

func (k Kind) String() string {
	return string(k)
}

// Item is a single mission action. The set of variants is closed: Init,
// Takeoff, Waypoint, Delay, FindSafeSpot, Transition, Land, PrecLand and End.
type Item interface {
	Kind() Kind
	String() string
	json.Marshaler

	item()
}

type (
	// Init prepares the vehicle for the mission.
	Init struct{}

	// Takeoff climbs to Altitude meters.
	Takeoff struct {
		Altitude float64
	}

	// Waypoint flies to Target. Mission-wide kinematic limits come from Params.
	Waypoint struct {
		Target waypoint.Waypoint
	}

	// Delay holds position for Duration.
	Delay struct {
		Duration time.Duration
	}

	// FindSafeSpot searches for a safe landing spot.
	FindSafeSpot struct{}

	// Transition switches the vehicle flight mode.
	Transition struct{}

	// Land lands at the current position.
	Land struct{}

	// PrecLand performs a precision landing.
	PrecLand struct{}

	// End terminates the mission.
	End struct{}
)

func (Init) item()         {}
func (Takeoff) item()      {}
func (Waypoint) item()     {}
func (Delay) item()        {}
func (FindSafeSpot) item() {}
func (Transition) item()   {}
func (Land) item()         {}
func (PrecLand) item()     {}
func (End) item()          {}

func (Init) Kind() Kind         { return KindInit }
func (Takeoff) Kind() Kind      { return KindTakeoff }
func (Waypoint) Kind() Kind     { return KindWaypoint }
func (Delay) Kind() Kind        { return KindDelay }
func (FindSafeSpot) Kind() Kind { return KindFindSafeSpot }
func (Transition) Kind() Kind   { return KindTransition }
func (Land) Kind() Kind         { return KindLand }
func (PrecLand) Kind() Kind     { return KindPrecLand }
func (End) Kind() Kind          { return KindEnd }

func (Init) String() string         { return string(KindInit) }
func (FindSafeSpot) String() string { return string(KindFindSafeSpot) }
func (Transition) String() string   { return string(KindTransition) }
func (Land) String() string         { return string(KindLand) }
func (PrecLand) String() string     { return string(KindPrecLand) }
func (End) String() string          { return string(KindEnd) }

func (t Takeoff) String() string {
	return fmt.Sprintf("Takeoff { altitude: %s }", format.Float(t.Altitude))
}

func (w Waypoint) String() string {
	if w.Target == nil {
		return "Waypoint(<nil>)"
	}
	return fmt.Sprintf("Waypoint(%s)", w.Target)
}

func (d Delay) String() string {
	return fmt.Sprintf("Delay(%s)", d.Duration)
}

func (Init) MarshalJSON() ([]byte, error)         { return wire.UnitJSON(string(KindInit)) }
func (FindSafeSpot) MarshalJSON() ([]byte, error) { return wire.UnitJSON(string(KindFindSafeSpot)) }
func (Transition) MarshalJSON() ([]byte, error)   { return wire.UnitJSON(string(KindTransition)) }
func (Land) MarshalJSON() ([]byte, error)         { return wire.UnitJSON(string(KindLand)) }
func (PrecLand) MarshalJSON() ([]byte, error)     { return wire.UnitJSON(string(KindPrecLand)) }
func (End) MarshalJSON() ([]byte, error)          { return wire.UnitJSON(string(KindEnd)) }

type takeoffJSON struct {
	Type     Kind          `json:"type"`
	Altitude *wire.Float64 `json:"altitude"`
}

type waypointJSON struct {
	Type     Kind            `json:"type"`
	Waypoint json.RawMessage `json:"waypoint"`
}

type delayJSON struct {
	Type     Kind    `json:"type"`
	Duration *string `json:"duration"`
}

func (t Takeoff) MarshalJSON() ([]byte, error) {
	return json.Marshal(takeoffJSON{Type: KindTakeoff, Altitude: (*wire.Float64)(&t.Altitude)})
}

func (w Waypoint) MarshalJSON() ([]byte, error) {
	if w.Target == nil {
		return nil, fmt.Errorf("mission.Waypoint: nil target")
	}

	target, err := w.Target.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(waypointJSON{Type: KindWaypoint, Waypoint: target})
}

func (d Delay) MarshalJSON() ([]byte, error) {
	duration := d.Duration.String()
	return json.Marshal(delayJSON{Type: KindDelay, Duration: &duration})
}

var unitItems = map[Kind]Item{
	KindInit:         Init{},
	KindFindSafeSpot: FindSafeSpot{},
	KindTransition:   Transition{},
	KindLand:         Land{},
	KindPrecLand:     PrecLand{},
	KindEnd:          End{},
}

// UnmarshalItem decodes a tagged mission item payload.
func UnmarshalItem(data []byte) (Item, error) {
	tag, err := wire.Tag(data)
	if err != nil {
		return nil, fmt.Errorf("mission item: %w", err)
	}

	if item, ok := unitItems[Kind(tag)]; ok {
		if err = wire.Unit(data); err != nil {
			return nil, fmt.Errorf("mission item %s: %w", tag, err)
		}
		return item, nil
	}

	switch Kind(tag) {
	case KindTakeoff:
		var aux takeoffJSON
		if err = wire.Decode(data, &aux); err != nil {
			return nil, fmt.Errorf("mission item %s: %w", tag, err)
		}
		return Takeoff{Altitude: float64(*aux.Altitude)}, nil

	case KindWaypoint:
		var aux waypointJSON
		if err = wire.Decode(data, &aux); err != nil {
			return nil, fmt.Errorf("mission item %s: %w", tag, err)
		}
		target, err := waypoint.Unmarshal(aux.Waypoint)
		if err != nil {
			return nil, fmt.Errorf("mission item %s: %w", tag, err)
		}
		return Waypoint{Target: target}, nil

	case KindDelay:
		var aux delayJSON
		if err = wire.Decode(data, &aux); err != nil {
			return nil, fmt.Errorf("mission item %s: %w", tag, err)
		}
		duration, err := time.ParseDuration(*aux.Duration)
		if err != nil {
			return nil, fmt.Errorf("mission item %s: %w", tag, err)
		}
		return Delay{Duration: duration}, nil
	}

	return nil, fmt.Errorf("mission item: unknown variant %q", tag)
}

package telemetry

import (
	"sync"
	"time"

	"github.com/roman-kulish/mission-control/internal/iface"
	"github.com/roman-kulish/mission-control/internal/mission"
	"github.com/roman-kulish/mission-control/internal/position"
)

// Provider supplies the latest known vehicle state
type Provider interface {
	Get() *Telemetry
}

var _ Provider = (*Tracker)(nil)

// Telemetry is the latest vehicle state reported by the flight controller
type Telemetry struct {
	Timestamp time.Time        `json:"timestamp"`        // Timestamp of the latest applied message
	Local     *position.Local  `json:"local,omitempty"`  // Position in the local frame
	Global    *position.Global `json:"global,omitempty"` // Geodetic position
	Yaw       *float32         `json:"yaw,omitempty"`    // Heading
	Step      *int32           `json:"step,omitempty"`   // Index of the executing node in the current plan
}

// CurrentNode returns the plan node the reported mission step points at
func (t *Telemetry) CurrentNode(plan mission.Plan) (mission.Node, bool) {
	if t.Step == nil {
		return mission.Node{}, false
	}
	return plan.Step(*t.Step)
}

// Tracker folds telemetry channel payloads into the latest vehicle state.
// Safe for concurrent use.
type Tracker struct {
	mu      sync.RWMutex
	current Telemetry
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Apply decodes payload according to topic and updates the tracked state.
// It reports false, without error, for topics that carry no telemetry.
// Decode failures are returned and leave the state untouched.
func (t *Tracker) Apply(topic string, ts time.Time, payload []byte) (bool, error) {
	var update func(*Telemetry)

	switch topic {
	case iface.TopicLocalPosition:
		v, err := iface.LocalPositionTopic{}.Decode(payload)
		if err != nil {
			return true, err
		}
		update = func(tm *Telemetry) { tm.Local = &v }

	case iface.TopicGlobalPosition:
		v, err := iface.GlobalPositionTopic{}.Decode(payload)
		if err != nil {
			return true, err
		}
		update = func(tm *Telemetry) { tm.Global = &v }

	case iface.TopicYaw:
		v, err := iface.YawTopic{}.Decode(payload)
		if err != nil {
			return true, err
		}
		update = func(tm *Telemetry) { tm.Yaw = &v }

	case iface.TopicMissionStep:
		v, err := iface.MissionStepTopic{}.Decode(payload)
		if err != nil {
			return true, err
		}
		update = func(tm *Telemetry) { tm.Step = &v }

	default:
		return false, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	update(&t.current)
	if ts.After(t.current.Timestamp) {
		t.current.Timestamp = ts
	}
	return true, nil
}

// Get returns a copy of the tracked state
func (t *Tracker) Get() *Telemetry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snapshot := Telemetry{Timestamp: t.current.Timestamp}
	if t.current.Local != nil {
		v := *t.current.Local
		snapshot.Local = &v
	}
	if t.current.Global != nil {
		v := *t.current.Global
		snapshot.Global = &v
	}
	if t.current.Yaw != nil {
		v := *t.current.Yaw
		snapshot.Yaw = &v
	}
	if t.current.Step != nil {
		v := *t.current.Step
		snapshot.Step = &v
	}
	return &snapshot
}

// Package mission is the mission data model exchanged between the planner and
// the flight controller: items wrapped in identified nodes, aggregated into a plan.
package mission

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/roman-kulish/mission-control/internal/waypoint"
	"github.com/roman-kulish/mission-control/internal/wire"
)

// idPrefixLen is how much of a plan id is shown when rendering a plan
const idPrefixLen = 8

// Node is a mission item with an identity. Two nodes carrying equal items
// are still distinct when their ids differ.
type Node struct {
	ID   uuid.UUID
	Item Item
}

func (n Node) String() string {
	return fmt.Sprintf("%s:%s", n.ID, n.Item)
}

type nodeJSON struct {
	ID   *uuid.UUID      `json:"id"`
	Item json.RawMessage `json:"item"`
}

func (n Node) MarshalJSON() ([]byte, error) {
	if n.Item == nil {
		return nil, fmt.Errorf("mission.Node %s: nil item", n.ID)
	}

	item, err := n.Item.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(nodeJSON{ID: &n.ID, Item: item})
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var aux nodeJSON
	if err := wire.Decode(data, &aux); err != nil {
		return fmt.Errorf("mission.Node: %w", err)
	}

	item, err := UnmarshalItem(aux.Item)
	if err != nil {
		return fmt.Errorf("mission.Node %s: %w", *aux.ID, err)
	}

	*n = Node{ID: *aux.ID, Item: item}
	return nil
}

// Params are the mission-wide kinematic limits applied to every Waypoint node.
type Params struct {
	TargetVelocity     r3.Vec
	TargetAcceleration r3.Vec
	TargetJerk         r3.Vec
	DisableYaw         bool
}

type paramsJSON struct {
	TargetVelocity     *wire.Vector `json:"target_velocity"`
	TargetAcceleration *wire.Vector `json:"target_acceleration"`
	TargetJerk         *wire.Vector `json:"target_jerk"`
	DisableYaw         *bool        `json:"disable_yaw"`
}

func (p Params) MarshalJSON() ([]byte, error) {
	velocity := wire.FromVec(p.TargetVelocity)
	acceleration := wire.FromVec(p.TargetAcceleration)
	jerk := wire.FromVec(p.TargetJerk)

	return json.Marshal(paramsJSON{
		TargetVelocity:     &velocity,
		TargetAcceleration: &acceleration,
		TargetJerk:         &jerk,
		DisableYaw:         &p.DisableYaw,
	})
}

func (p *Params) UnmarshalJSON(data []byte) error {
	var aux paramsJSON
	if err := wire.Decode(data, &aux); err != nil {
		return fmt.Errorf("mission.Params: %w", err)
	}

	var decoded Params
	vectors := []struct {
		name string
		src  *wire.Vector
		dst  *r3.Vec
	}{
		{"target_velocity", aux.TargetVelocity, &decoded.TargetVelocity},
		{"target_acceleration", aux.TargetAcceleration, &decoded.TargetAcceleration},
		{"target_jerk", aux.TargetJerk, &decoded.TargetJerk},
	}
	for _, v := range vectors {
		vec, err := v.src.Vec()
		if err != nil {
			return fmt.Errorf("mission.Params %s: %w", v.name, err)
		}
		*v.dst = vec
	}
	decoded.DisableYaw = *aux.DisableYaw

	*p = decoded
	return nil
}

// Plan is an ordered, identified mission. Node order is execution order.
// A plan is published whole and treated as immutable afterwards; a changed
// mission is a new plan with a new id.
type Plan struct {
	ID     uuid.UUID
	Nodes  []Node
	Params Params
}

// String renders the plan for logs, e.g. "Mission b7e4c1a2 [Init, Takeoff { altitude: 10.0 }]".
func (p Plan) String() string {
	items := make([]string, len(p.Nodes))
	for i, n := range p.Nodes {
		if n.Item == nil {
			items[i] = "<nil>"
			continue
		}
		items[i] = n.Item.String()
	}

	return fmt.Sprintf("Mission %s [%s]", p.ID.String()[:idPrefixLen], strings.Join(items, ", "))
}

// Clone returns a copy of p that shares no memory with it
func (p Plan) Clone() Plan {
	p.Nodes = slices.Clone(p.Nodes)
	return p
}

// Equal reports whether p and o have the same id, nodes in the same order and params.
func (p Plan) Equal(o Plan) bool {
	return p.ID == o.ID && p.Params == o.Params && slices.Equal(p.Nodes, o.Nodes)
}

// Step returns the node at the given mission step index, as published on
// the mission step channel.
func (p Plan) Step(index int32) (Node, bool) {
	if index < 0 || int(index) >= len(p.Nodes) {
		return Node{}, false
	}
	return p.Nodes[index], true
}

// Waypoints returns the targets of the plan's Waypoint nodes in execution order.
func (p Plan) Waypoints() []waypoint.Waypoint {
	var targets []waypoint.Waypoint
	for _, n := range p.Nodes {
		if w, ok := n.Item.(Waypoint); ok {
			targets = append(targets, w.Target)
		}
	}
	return targets
}

type planJSON struct {
	ID     *uuid.UUID `json:"id"`
	Nodes  *[]Node    `json:"nodes"`
	Params *Params    `json:"params"`
}

func (p Plan) MarshalJSON() ([]byte, error) {
	nodes := p.Nodes
	if nodes == nil {
		nodes = []Node{}
	}
	return json.Marshal(planJSON{ID: &p.ID, Nodes: &nodes, Params: &p.Params})
}

func (p *Plan) UnmarshalJSON(data []byte) error {
	var aux planJSON
	if err := wire.Decode(data, &aux); err != nil {
		return fmt.Errorf("mission.Plan: %w", err)
	}

	nodes := *aux.Nodes
	if nodes == nil {
		nodes = []Node{}
	}

	*p = Plan{ID: *aux.ID, Nodes: nodes, Params: *aux.Params}
	return nil
}

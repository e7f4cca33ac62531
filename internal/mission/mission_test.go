package mission

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/roman-kulish/mission-control/internal/waypoint"
)

var testNamespace = uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8")

func samplePlan() Plan {
	return NewBuilder(NewSequenceIDs(testNamespace)).
		WithParams(Params{
			TargetVelocity:     r3.Vec{X: 5, Y: 5, Z: 2},
			TargetAcceleration: r3.Vec{X: 2, Y: 2, Z: 1},
			TargetJerk:         r3.Vec{X: 1, Y: 1, Z: 1},
			DisableYaw:         true,
		}).
		Add(
			Init{},
			Takeoff{Altitude: 10},
			Waypoint{Target: waypoint.LocalOffset{Offset: r3.Vec{X: 20}}},
			Waypoint{Target: waypoint.GlobalFixedHeight{Lat: 47.397742, Lon: 8.545594, Alt: 488}},
			Waypoint{Target: waypoint.GlobalRelativeHeight{Lat: 47.397742, Lon: 8.545594, HeightDiff: 15}},
			Delay{Duration: 1500 * time.Millisecond},
			FindSafeSpot{},
			Transition{},
			Land{},
			PrecLand{},
			End{},
		).
		Build()
}

func TestPlan_String(t *testing.T) {
	plan := Plan{
		ID: uuid.MustParse("b7e4c1a2-5d3f-4e0a-9c1b-2f6d8e9a0b1c"),
		Nodes: []Node{
			{ID: uuid.New(), Item: Init{}},
			{ID: uuid.New(), Item: Takeoff{Altitude: 10}},
		},
	}
	assert.Equal(t, "Mission b7e4c1a2 [Init, Takeoff { altitude: 10.0 }]", plan.String())

	empty := Plan{ID: plan.ID}
	assert.Equal(t, "Mission b7e4c1a2 []", empty.String())
}

func TestItem_String(t *testing.T) {
	tests := []struct {
		item Item
		want string
	}{
		{Init{}, "Init"},
		{Takeoff{Altitude: 2.5}, "Takeoff { altitude: 2.5 }"},
		{Waypoint{Target: waypoint.LocalOffset{Offset: r3.Vec{X: 1, Y: 2, Z: 3}}}, "Waypoint(LocalOffset([1.0, 2.0, 3.0]))"},
		{Delay{Duration: 1500 * time.Millisecond}, "Delay(1.5s)"},
		{FindSafeSpot{}, "FindSafeSpot"},
		{Transition{}, "Transition"},
		{Land{}, "Land"},
		{PrecLand{}, "PrecLand"},
		{End{}, "End"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.item.String())
		assert.Equal(t, tt.want[:len(tt.item.Kind())], string(tt.item.Kind()))
	}
}

func TestNodes_DistinctIdentity(t *testing.T) {
	plan := NewBuilder(RandomIDs{}).Add(Land{}, Land{}).Build()

	require.Len(t, plan.Nodes, 2)
	assert.Equal(t, plan.Nodes[0].Item, plan.Nodes[1].Item)
	assert.NotEqual(t, plan.Nodes[0].ID, plan.Nodes[1].ID)
	assert.NotEqual(t, plan.Nodes[0], plan.Nodes[1])
}

func TestBuilder(t *testing.T) {
	b := NewBuilder(RandomIDs{}).Add(Init{})
	first := b.Build()

	b.Add(End{})
	second := b.Build()

	assert.Equal(t, 2, b.Len())
	assert.Len(t, first.Nodes, 1)
	assert.Len(t, second.Nodes, 2)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Nodes[0], second.Nodes[0])

	// no sequence validation
	odd := NewBuilder(RandomIDs{}).Add(Land{}, Land{}, Init{}).Build()
	assert.Len(t, odd.Nodes, 3)

	empty := NewBuilder(RandomIDs{}).Build()
	assert.NotNil(t, empty.Nodes)
	assert.Empty(t, empty.Nodes)
}

func TestSequenceIDs(t *testing.T) {
	a := NewSequenceIDs(testNamespace)
	b := NewSequenceIDs(testNamespace)

	seen := map[uuid.UUID]bool{}
	for range 10 {
		id := a.NewID()
		assert.Equal(t, id, b.NewID())
		assert.False(t, seen[id])
		seen[id] = true
	}

	other := NewSequenceIDs(uuid.New())
	assert.False(t, seen[other.NewID()])

	assert.True(t, samplePlan().Equal(samplePlan()))
}

func TestPlan_CloneAndEqual(t *testing.T) {
	plan := samplePlan()
	clone := plan.Clone()
	require.True(t, plan.Equal(clone))

	clone.Nodes[1] = Node{ID: clone.Nodes[1].ID, Item: Takeoff{Altitude: 20}}
	assert.False(t, plan.Equal(clone))
	assert.Equal(t, Takeoff{Altitude: 10}, plan.Nodes[1].Item)

	reordered := plan.Clone()
	reordered.Nodes[0], reordered.Nodes[1] = reordered.Nodes[1], reordered.Nodes[0]
	assert.False(t, plan.Equal(reordered))

	params := plan.Clone()
	params.Params.DisableYaw = false
	assert.False(t, plan.Equal(params))
}

func TestPlan_StepAndWaypoints(t *testing.T) {
	plan := samplePlan()

	n, ok := plan.Step(1)
	require.True(t, ok)
	assert.Equal(t, Takeoff{Altitude: 10}, n.Item)

	_, ok = plan.Step(-1)
	assert.False(t, ok)
	_, ok = plan.Step(int32(len(plan.Nodes)))
	assert.False(t, ok)

	wps := plan.Waypoints()
	require.Len(t, wps, 3)
	assert.Equal(t, waypoint.KindLocalOffset, wps[0].Kind())
	assert.Equal(t, waypoint.KindGlobalFixedHeight, wps[1].Kind())
	assert.Equal(t, waypoint.KindGlobalRelativeHeight, wps[2].Kind())
}

func TestPlan_JSON(t *testing.T) {
	plan := samplePlan()

	data, err := json.Marshal(plan)
	require.NoError(t, err)

	var back Plan
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, plan.Equal(back))
	assert.Equal(t, plan.String(), back.String())

	empty, err := json.Marshal(Plan{ID: plan.ID})
	require.NoError(t, err)
	assert.Contains(t, string(empty), `"nodes":[]`)
}

func TestItem_JSON(t *testing.T) {
	tests := []struct {
		item Item
		want string
	}{
		{Init{}, `{"type":"Init"}`},
		{Takeoff{Altitude: 10}, `{"type":"Takeoff","altitude":10}`},
		{Delay{Duration: 1500 * time.Millisecond}, `{"type":"Delay","duration":"1.5s"}`},
		{Waypoint{Target: waypoint.LocalOffset{Offset: r3.Vec{X: 1, Y: 2, Z: 3}}}, `{"type":"Waypoint","waypoint":{"type":"LocalOffset","offset":[1,2,3]}}`},
		{End{}, `{"type":"End"}`},
	}

	for _, tt := range tests {
		data, err := json.Marshal(tt.item)
		require.NoError(t, err)
		assert.JSONEq(t, tt.want, string(data))

		back, err := UnmarshalItem(data)
		require.NoError(t, err)
		assert.Equal(t, tt.item, back)
	}
}

func TestItem_JSONErrors(t *testing.T) {
	for _, input := range []string{
		`{}`,
		`{"type":"Hover"}`,
		`{"type":"Land","altitude":3}`,
		`{"type":"Takeoff"}`,
		`{"type":"Delay","duration":"soon"}`,
		`{"type":"Waypoint"}`,
		`{"type":"Waypoint","waypoint":null}`,
	} {
		_, err := UnmarshalItem([]byte(input))
		assert.Error(t, err, input)
	}

	_, err := json.Marshal(Waypoint{})
	assert.Error(t, err)
}

func TestNode_JSONErrors(t *testing.T) {
	var n Node
	assert.Error(t, json.Unmarshal([]byte(`{"item":{"type":"Init"}}`), &n))
	assert.Error(t, json.Unmarshal([]byte(`{"id":"not-a-uuid","item":{"type":"Init"}}`), &n))
	assert.Error(t, json.Unmarshal([]byte(`{"id":"b7e4c1a2-5d3f-4e0a-9c1b-2f6d8e9a0b1c"}`), &n))

	_, err := json.Marshal(Node{ID: uuid.New()})
	assert.Error(t, err)
}

func TestParams_JSONErrors(t *testing.T) {
	var p Params
	assert.Error(t, json.Unmarshal([]byte(`{"target_velocity":[1,2,3],"target_acceleration":[1,2,3],"target_jerk":[1,2],"disable_yaw":false}`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"target_velocity":[1,2,3],"target_acceleration":[1,2,3],"target_jerk":[1,2,3]}`), &p))
}

package preview

import (
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/roman-kulish/mission-control/internal/mission"
	"github.com/roman-kulish/mission-control/internal/waypoint"
)

func localWaypoint(x, y float64) mission.Item {
	return mission.Waypoint{Target: waypoint.LocalOffset{Offset: r3.Vec{X: x, Y: y, Z: 5}}}
}

func testPlan() mission.Plan {
	return mission.NewBuilder(mission.NewSequenceIDs(uuid.NameSpaceOID)).
		Add(
			mission.Init{},
			mission.Takeoff{Altitude: 10},
			localWaypoint(20, 0),
			localWaypoint(20, 40),
			mission.Waypoint{Target: waypoint.GlobalFixedHeight{Lat: 47.39, Lon: 8.54, Alt: 500}},
			localWaypoint(-10, 40),
			mission.Land{},
		).
		Build()
}

func TestNewRenderer(t *testing.T) {
	r, err := NewRenderer(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultWidth, r.config.Width)
	assert.Equal(t, DefaultHeight, r.config.Height)
	assert.Equal(t, DefaultMargin, r.config.Margin)
	assert.NotNil(t, r.annotator)

	_, err = NewRenderer(Config{Width: 80, Height: 80, Margin: 40})
	assert.Error(t, err)

	r, err = NewRenderer(Config{NoAnnotations: true})
	require.NoError(t, err)
	assert.Nil(t, r.annotator)
}

func TestRender(t *testing.T) {
	for _, annotations := range []bool{true, false} {
		r, err := NewRenderer(Config{Width: 400, Height: 300, Margin: 30, NoAnnotations: !annotations})
		require.NoError(t, err)

		img, err := r.Render(testPlan())
		require.NoError(t, err)
		assert.Equal(t, 400, img.Bounds().Dx())
		assert.Equal(t, 300, img.Bounds().Dy())

		// the corner is outside the drawable area
		assert.Equal(t, color.RGBAModel.Convert(backgroundColor), img.At(1, 1))
	}
}

func TestRender_NothingToRender(t *testing.T) {
	r, err := NewRenderer(Config{})
	require.NoError(t, err)

	plan := mission.NewBuilder(mission.RandomIDs{}).
		Add(mission.Init{}, mission.Waypoint{Target: waypoint.GlobalRelativeHeight{Lat: 1, Lon: 2, HeightDiff: 3}}).
		Build()

	_, err = r.Render(plan)
	assert.ErrorIs(t, err, ErrNothingToRender)
}

func TestRender_NonFiniteOffsets(t *testing.T) {
	r, err := NewRenderer(Config{Width: 400, Height: 300, Margin: 30})
	require.NoError(t, err)

	inf := math.Inf(1)
	plan := mission.NewBuilder(mission.RandomIDs{}).
		Add(
			mission.Waypoint{Target: waypoint.LocalOffset{Offset: r3.Vec{X: inf}}},
			mission.Waypoint{Target: waypoint.LocalOffset{Offset: r3.Vec{X: 10, Y: math.NaN()}}},
			mission.Waypoint{Target: waypoint.LocalOffset{Offset: r3.Vec{X: 10, Y: 10, Z: inf}}},
		).
		Build()

	s, err := r.buildScene(plan)
	require.NoError(t, err)
	assert.Equal(t, 2, s.skipped)
	require.Len(t, s.points, 2)
	assert.Equal(t, "#2", s.points[1].label)

	done := make(chan error, 1)
	go func() {
		_, err := r.Render(plan)
		done <- err
	}()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("render did not finish")
	}

	only := mission.NewBuilder(mission.RandomIDs{}).
		Add(mission.Waypoint{Target: waypoint.LocalOffset{Offset: r3.Vec{X: math.NaN()}}}).
		Build()
	_, err = r.Render(only)
	assert.ErrorIs(t, err, ErrNothingToRender)
}

func TestRender_ExtentTooLarge(t *testing.T) {
	r, err := NewRenderer(Config{NoAnnotations: true})
	require.NoError(t, err)

	plan := mission.NewBuilder(mission.RandomIDs{}).
		Add(
			mission.Waypoint{Target: waypoint.LocalOffset{Offset: r3.Vec{X: -math.MaxFloat64}}},
			mission.Waypoint{Target: waypoint.LocalOffset{Offset: r3.Vec{X: math.MaxFloat64}}},
		).
		Build()

	_, err = r.Render(plan)
	assert.ErrorIs(t, err, ErrExtentTooLarge)
}

func TestBuildScene(t *testing.T) {
	r, err := NewRenderer(Config{Width: 400, Height: 300, Margin: 30, NoAnnotations: true})
	require.NoError(t, err)

	plan := testPlan()
	s, err := r.buildScene(plan)
	require.NoError(t, err)

	require.Len(t, s.points, 4)
	assert.Equal(t, "origin", s.points[0].label)
	assert.Equal(t, "#2", s.points[1].label)
	assert.Equal(t, 1, s.numGlobal)
	assert.Equal(t, len(plan.Nodes), s.numNodes)
	assert.Equal(t, plan.ID.String()[:8], s.planID)
	assert.InDelta(t, 30.0, s.extentX, 1e-9)
	assert.InDelta(t, 40.0, s.extentY, 1e-9)

	for _, p := range s.points {
		assert.True(t, p.px.In(s.area.Inset(-1)), "%s at %v", p.label, p.px)
	}

	// north is up
	assert.Less(t, s.points[2].px.Y, s.points[1].px.Y)
	assert.NotEmpty(t, s.grid)
}

func TestStepColor(t *testing.T) {
	first := stepColor(0, 5)
	last := stepColor(4, 5)
	assert.NotEqual(t, first, last)
	assert.Equal(t, stepColor(0, 1), first)
}

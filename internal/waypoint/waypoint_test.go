package waypoint

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestString(t *testing.T) {
	tests := []struct {
		wp   Waypoint
		want string
	}{
		{LocalOffset{Offset: r3.Vec{X: 1, Y: 2, Z: 3}}, "LocalOffset([1.0, 2.0, 3.0])"},
		{GlobalFixedHeight{Lat: 47.397742, Lon: 8.545594, Alt: 488}, "GlobalFixedHeight { lat: 47.397742, lon: 8.545594, alt: 488.0 }"},
		{GlobalRelativeHeight{Lat: 47.5, Lon: 8, HeightDiff: -2.5}, "GlobalRelativeHeight { lat: 47.5, lon: 8.0, height_diff: -2.5 }"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.wp.String())
	}
}

func TestFixedAndRelativeAreDistinct(t *testing.T) {
	var fixed Waypoint = GlobalFixedHeight{Lat: 1, Lon: 2, Alt: 3}
	var relative Waypoint = GlobalRelativeHeight{Lat: 1, Lon: 2, HeightDiff: 3}

	assert.NotEqual(t, fixed, relative)
	assert.False(t, fixed == relative)
	assert.NotEqual(t, fixed.Kind(), relative.Kind())
}

func TestJSON(t *testing.T) {
	tests := []struct {
		wp   Waypoint
		want string
	}{
		{LocalOffset{Offset: r3.Vec{X: 1, Y: -2, Z: 0.5}}, `{"type":"LocalOffset","offset":[1,-2,0.5]}`},
		{GlobalFixedHeight{Lat: 47.1, Lon: 8.2, Alt: 500}, `{"type":"GlobalFixedHeight","lat":47.1,"lon":8.2,"alt":500}`},
		{GlobalRelativeHeight{Lat: 47.1, Lon: 8.2, HeightDiff: 15}, `{"type":"GlobalRelativeHeight","lat":47.1,"lon":8.2,"height_diff":15}`},
	}

	for _, tt := range tests {
		t.Run(string(tt.wp.Kind()), func(t *testing.T) {
			data, err := json.Marshal(tt.wp)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			back, err := Unmarshal(data)
			require.NoError(t, err)
			assert.Equal(t, tt.wp, back)
		})
	}
}

func TestUnmarshal_Errors(t *testing.T) {
	for _, input := range []string{
		``,
		`null`,
		`{}`,
		`{"type":"Orbit"}`,
		`{"type":"LocalOffset"}`,
		`{"type":"LocalOffset","offset":[1,2]}`,
		`{"type":"LocalOffset","offset":[1,2,3],"frame":"ned"}`,
		`{"type":"GlobalFixedHeight","lat":1,"lon":2}`,
		`{"type":"GlobalFixedHeight","lat":1,"lon":2,"height_diff":3}`,
		`{"type":"GlobalRelativeHeight","lat":1,"lon":2,"alt":3}`,
	} {
		_, err := Unmarshal([]byte(input))
		assert.Error(t, err, input)
	}
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestTimeDuration(t *testing.T) {
	var v struct {
		Window TimeDuration `yaml:"window"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("window: 1m30s"), &v))
	assert.Equal(t, 90*time.Second, v.Window.Duration())

	out, err := yaml.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, "window: 1m30s\n", string(out))
}

func TestTimeDuration_Errors(t *testing.T) {
	for _, input := range []string{"window: soon", "window: [1]", "window: 5"} {
		var v struct {
			Window TimeDuration `yaml:"window"`
		}
		err := yaml.Unmarshal([]byte(input), &v)
		assert.Error(t, err, input)
	}

	var v struct {
		Window TimeDuration `yaml:"window"`
	}
	err := yaml.Unmarshal([]byte("window: soon"), &v)
	assert.ErrorContains(t, err, "line 1: failed to parse")
}

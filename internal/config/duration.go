// Package config holds the YAML value types shared by the application
// configuration and the mission file format.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// TimeDuration is a time.Duration written as a Go duration string in YAML
type TimeDuration time.Duration

func (d *TimeDuration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	duration, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config.TimeDuration: line %d: failed to parse: %s", value.Line, err)
	}

	*d = TimeDuration(duration)
	return nil
}

func (d TimeDuration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns d as a time.Duration
func (d TimeDuration) Duration() time.Duration {
	return time.Duration(d)
}

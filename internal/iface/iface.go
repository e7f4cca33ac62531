// Package iface binds every bus channel to its topic name and payload type.
//
// Each channel is a zero-size marker type (LocalPositionTopic, YawTopic, ...)
// whose Topic, Encode and Decode methods are generated from channels.yaml, so a
// marker cannot drift from its topic or payload type. Encode and Decode are
// pure and safe for concurrent use.
package iface

//go:generate go run ./gen -in channels.yaml -out channels_gen.go

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Channel is the capability shared by every channel marker.
type Channel[M any] interface {
	Topic() string
	Encode(v M) ([]byte, error)
	Decode(data []byte) (M, error)
}

// Binding is one row of the channel table.
type Binding struct {
	Marker  string
	Topic   string
	Payload reflect.Type

	describe func([]byte) (string, error)
}

func newBinding[M any](marker string, ch Channel[M]) Binding {
	return Binding{
		Marker:  marker,
		Topic:   ch.Topic(),
		Payload: reflect.TypeFor[M](),
		describe: func(data []byte) (string, error) {
			v, err := ch.Decode(data)
			if err != nil {
				return "", err
			}
			return fmt.Sprint(v), nil
		},
	}
}

// Describe decodes data as this binding's payload type and renders it for logs.
func (b Binding) Describe(data []byte) (string, error) {
	return b.describe(data)
}

// Bindings returns a copy of the channel table in declaration order.
func Bindings() []Binding {
	return slices.Clone(bindings)
}

// Lookup returns the first binding for topic.
func Lookup(topic string) (Binding, bool) {
	for _, b := range bindings {
		if b.Topic == topic {
			return b, true
		}
	}
	return Binding{}, false
}

// Validate checks the built-in channel table.
func Validate() error {
	return ValidateTopics(bindings)
}

// ValidateTopics reports every topic bound to more than one marker. Nothing
// stops two markers from sharing a topic at compile time, so this runs at startup.
func ValidateTopics(bs []Binding) error {
	markers := make(map[string][]string, len(bs))
	var order []string
	for _, b := range bs {
		if _, ok := markers[b.Topic]; !ok {
			order = append(order, b.Topic)
		}
		markers[b.Topic] = append(markers[b.Topic], b.Marker)
	}

	var dups []string
	for _, topic := range order {
		if m := markers[topic]; len(m) > 1 {
			dups = append(dups, fmt.Sprintf("%q (%s)", topic, strings.Join(m, ", ")))
		}
	}

	if len(dups) > 0 {
		return fmt.Errorf("topics bound more than once: %s", strings.Join(dups, "; "))
	}
	return nil
}

package control

import "fmt"

const (
	// Pause halts mission execution at the current node
	Pause PauseState = iota + 1
	// Resume continues mission execution from the current node
	Resume
)

// PauseState is the requested or acknowledged execution state of a mission.
// The zero value is not a valid state and does not encode.
type PauseState uint8

var pauseStateNames = map[PauseState]string{
	Pause:  "Pause",
	Resume: "Resume",
}

func (s PauseState) String() string {
	if name, ok := pauseStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("PauseState(%d)", uint8(s))
}

// ParsePauseState converts "Pause" or "Resume" to its PauseState.
func ParsePauseState(name string) (PauseState, bool) {
	for s, n := range pauseStateNames {
		if n == name {
			return s, true
		}
	}
	return 0, false
}

func (s PauseState) MarshalText() ([]byte, error) {
	name, ok := pauseStateNames[s]
	if !ok {
		return nil, fmt.Errorf("control: invalid pause state %d", uint8(s))
	}
	return []byte(name), nil
}

func (s *PauseState) UnmarshalText(text []byte) error {
	state, ok := ParsePauseState(string(text))
	if !ok {
		return fmt.Errorf("control: invalid pause state %q", text)
	}

	*s = state
	return nil
}

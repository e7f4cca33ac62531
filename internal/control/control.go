// Package control defines the request/response messages exchanged with the
// mission planner over the control channels.
//
//	FetchMissionPlan  ->  SendMissionPlan(plan)
//	PauseResume(s)    ->  PauseResumeAck(s)
//
// Correlating a response with its request is left to the transport.
package control

import (
	"encoding/json"
	"fmt"

	"github.com/roman-kulish/mission-control/internal/mission"
	"github.com/roman-kulish/mission-control/internal/wire"
)

const (
	KindFetchMissionPlan Kind = "FetchMissionPlan"
	KindSendMissionPlan  Kind = "SendMissionPlan"
	KindPauseResume      Kind = "PauseResume"
)

// Kind names a control message variant. It is also the variant tag on the wire.
type Kind string

// Request is a message sent to the planner on the control input channel.
// Implemented by FetchMissionPlan and PauseResume.
type Request interface {
	Kind() Kind
	String() string
	json.Marshaler

	request()
}

// Response is a message sent by the planner on the control output channel.
// Implemented by SendMissionPlan and PauseResumeAck.
type Response interface {
	Kind() Kind
	String() string
	json.Marshaler

	response()
}

// FetchMissionPlan asks the planner for its current plan.
type FetchMissionPlan struct{}

// PauseResume asks the planner to pause or resume the mission.
type PauseResume struct {
	State PauseState
}

// SendMissionPlan carries the planner's current plan.
type SendMissionPlan struct {
	Plan mission.Plan
}

// PauseResumeAck acknowledges a PauseResume request with the state now in effect.
type PauseResumeAck struct {
	State PauseState
}

func (FetchMissionPlan) request() {}
func (PauseResume) request()      {}
func (SendMissionPlan) response() {}
func (PauseResumeAck) response()  {}

func (FetchMissionPlan) Kind() Kind { return KindFetchMissionPlan }
func (PauseResume) Kind() Kind      { return KindPauseResume }
func (SendMissionPlan) Kind() Kind  { return KindSendMissionPlan }
func (PauseResumeAck) Kind() Kind   { return KindPauseResume }

func (FetchMissionPlan) String() string { return string(KindFetchMissionPlan) }

func (r PauseResume) String() string {
	return fmt.Sprintf("PauseResume(%s)", r.State)
}

func (r SendMissionPlan) String() string {
	return fmt.Sprintf("SendMissionPlan(%s)", r.Plan)
}

func (r PauseResumeAck) String() string {
	return fmt.Sprintf("PauseResume(%s)", r.State)
}

// Answers reports whether resp is the response variant paired with req.
func Answers(req Request, resp Response) bool {
	switch r := req.(type) {
	case FetchMissionPlan:
		_, ok := resp.(SendMissionPlan)
		return ok
	case PauseResume:
		ack, ok := resp.(PauseResumeAck)
		return ok && ack.State == r.State
	}
	return false
}

type pauseResumeJSON struct {
	Type  Kind        `json:"type"`
	State *PauseState `json:"state"`
}

type sendMissionPlanJSON struct {
	Type Kind          `json:"type"`
	Plan *mission.Plan `json:"plan"`
}

func (FetchMissionPlan) MarshalJSON() ([]byte, error) {
	return wire.UnitJSON(string(KindFetchMissionPlan))
}

func (r PauseResume) MarshalJSON() ([]byte, error) {
	return json.Marshal(pauseResumeJSON{Type: KindPauseResume, State: &r.State})
}

func (r PauseResumeAck) MarshalJSON() ([]byte, error) {
	return json.Marshal(pauseResumeJSON{Type: KindPauseResume, State: &r.State})
}

func (r SendMissionPlan) MarshalJSON() ([]byte, error) {
	return json.Marshal(sendMissionPlanJSON{Type: KindSendMissionPlan, Plan: &r.Plan})
}

// UnmarshalRequest decodes a tagged control request payload.
func UnmarshalRequest(data []byte) (Request, error) {
	tag, err := wire.Tag(data)
	if err != nil {
		return nil, fmt.Errorf("control request: %w", err)
	}

	switch Kind(tag) {
	case KindFetchMissionPlan:
		if err = wire.Unit(data); err != nil {
			return nil, fmt.Errorf("control request %s: %w", tag, err)
		}
		return FetchMissionPlan{}, nil

	case KindPauseResume:
		var aux pauseResumeJSON
		if err = wire.Decode(data, &aux); err != nil {
			return nil, fmt.Errorf("control request %s: %w", tag, err)
		}
		return PauseResume{State: *aux.State}, nil
	}

	return nil, fmt.Errorf("control request: unknown variant %q", tag)
}

// UnmarshalResponse decodes a tagged control response payload.
func UnmarshalResponse(data []byte) (Response, error) {
	tag, err := wire.Tag(data)
	if err != nil {
		return nil, fmt.Errorf("control response: %w", err)
	}

	switch Kind(tag) {
	case KindSendMissionPlan:
		var aux sendMissionPlanJSON
		if err = wire.Decode(data, &aux); err != nil {
			return nil, fmt.Errorf("control response %s: %w", tag, err)
		}
		return SendMissionPlan{Plan: *aux.Plan}, nil

	case KindPauseResume:
		var aux pauseResumeJSON
		if err = wire.Decode(data, &aux); err != nil {
			return nil, fmt.Errorf("control response %s: %w", tag, err)
		}
		return PauseResumeAck{State: *aux.State}, nil
	}

	return nil, fmt.Errorf("control response: unknown variant %q", tag)
}

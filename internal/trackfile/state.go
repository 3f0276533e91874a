package trackfile

import "github.com/cinecert/asdcplib-sub001/internal/asdcperr"

// State is the writer's state machine position (spec §4.I).
type State int

const (
	StateBegin State = iota
	StateInit
	StateReady
	StateRunning
	StateFinal
)

func (s State) String() string {
	switch s {
	case StateBegin:
		return "Begin"
	case StateInit:
		return "Init"
	case StateReady:
		return "Ready"
	case StateRunning:
		return "Running"
	case StateFinal:
		return "Final"
	default:
		return "Unknown"
	}
}

func stateErr(op string) error { return asdcperr.New(asdcperr.StateError, op, nil) }

// StereoPhase is the stereoscopic JPEG-2000 writer's inner sub-state
// (spec §4.I: "enforces an inner 2-phase sub-state alternating Left and
// Right").
type StereoPhase int

const (
	PhaseLeft StereoPhase = iota
	PhaseRight
)

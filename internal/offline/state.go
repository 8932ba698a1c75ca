package offline

import (
	"fmt"
	"slices"
)

// State is a worker lifecycle stage.
type State int

const (
	// StateParsed is a new worker that has not installed yet.
	StateParsed State = iota
	// StateInstalling is prefetching the asset list.
	StateInstalling
	// StateInstalled has a populated cache and waits for activation.
	StateInstalled
	// StateActivating is deleting older generations.
	StateActivating
	// StateActivated controls requests.
	StateActivated
	// StateRedundant failed a lifecycle step and is no longer usable.
	StateRedundant
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateParsed:
		return "parsed"
	case StateInstalling:
		return "installing"
	case StateInstalled:
		return "installed"
	case StateActivating:
		return "activating"
	case StateActivated:
		return "activated"
	case StateRedundant:
		return "redundant"
	default:
		return "unknown"
	}
}

// stateMachine guards lifecycle transitions. It is not safe for concurrent
// use; Worker serializes access.
type stateMachine struct {
	current     State
	transitions map[State][]State
	onEnter     map[State]func()
}

func newStateMachine() *stateMachine {
	return &stateMachine{
		current: StateParsed,
		transitions: map[State][]State{
			StateParsed:     {StateInstalling, StateRedundant},
			StateInstalling: {StateInstalled, StateRedundant},
			StateInstalled:  {StateActivating, StateRedundant},
			StateActivating: {StateActivated, StateRedundant},
			StateActivated:  {StateRedundant},
		},
		onEnter: make(map[State]func()),
	}
}

func (sm *stateMachine) transition(to State) error {
	if !slices.Contains(sm.transitions[sm.current], to) {
		return fmt.Errorf("%w: %s to %s", ErrStateTransition, sm.current, to)
	}
	sm.current = to
	if fn := sm.onEnter[to]; fn != nil {
		fn()
	}
	return nil
}

func (sm *stateMachine) canTransition(to State) bool {
	return slices.Contains(sm.transitions[sm.current], to)
}

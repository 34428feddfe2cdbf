package workflow

import (
	"context"
	"fmt"
	"sort"
)

// Table lists, for each state, the triggers it accepts and the state each
// one leads to. A state without entries is terminal.
type Table map[State]map[Trigger]State

// Transition is one fired trigger
type Transition struct {
	From    State
	Trigger Trigger
	To      State
}

// StateMachine tracks the status of one invoice while it is being processed
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire returns true if the trigger is permitted in the current state
	CanFire(trigger Trigger) bool

	// Fire moves to the state the trigger leads to, or fails with a
	// *TransitionError and leaves the state unchanged
	Fire(ctx context.Context, trigger Trigger) error

	// PermittedTriggers returns the triggers accepted in the current state, sorted
	PermittedTriggers() []Trigger

	// History returns the transitions fired so far, oldest first
	History() []Transition
}

type machine struct {
	table   Table
	current State
	history []Transition
}

// NewMachine positions a machine on initial. The table is shared and must
// not be modified afterwards.
func NewMachine(table Table, initial State) (StateMachine, error) {
	if !initial.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidState, initial)
	}
	for from, edges := range table {
		if !from.IsValid() {
			return nil, fmt.Errorf("%w: %q in transition table", ErrInvalidState, from)
		}
		for _, to := range edges {
			if !to.IsValid() {
				return nil, fmt.Errorf("%w: %q in transition table", ErrInvalidState, to)
			}
		}
	}
	return &machine{table: table, current: initial}, nil
}

func (m *machine) State() State {
	return m.current
}

func (m *machine) CanFire(trigger Trigger) bool {
	_, ok := m.table[m.current][trigger]
	return ok
}

func (m *machine) Fire(ctx context.Context, trigger Trigger) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	to, ok := m.table[m.current][trigger]
	if !ok {
		return &TransitionError{From: m.current, Trigger: trigger}
	}

	m.history = append(m.history, Transition{From: m.current, Trigger: trigger, To: to})
	m.current = to
	return nil
}

func (m *machine) PermittedTriggers() []Trigger {
	triggers := make([]Trigger, 0, len(m.table[m.current]))
	for trigger := range m.table[m.current] {
		triggers = append(triggers, trigger)
	}
	sort.Slice(triggers, func(i, j int) bool { return triggers[i] < triggers[j] })
	return triggers
}

func (m *machine) History() []Transition {
	return append([]Transition(nil), m.history...)
}

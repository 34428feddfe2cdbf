package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is matched by every *TransitionError
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidState is returned for a status that is not DRAFT, CERTIFIED or ERROR
	ErrInvalidState = errors.New("invalid state")
)

// TransitionError reports a trigger fired from a state that does not accept it
type TransitionError struct {
	From    State
	Trigger Trigger
}

func (e *TransitionError) Error() string {
	if e.From.IsTerminal() {
		return fmt.Sprintf("%s: %s is final, %s not accepted", ErrInvalidTransition, e.From, e.Trigger)
	}
	return fmt.Sprintf("%s: %s not accepted in %s", ErrInvalidTransition, e.Trigger, e.From)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

package workflow

import "github.com/fnev4/fnev4/internal/domain/entity"

// State is an invoice certification status
type State string

const (
	StateDraft     State = entity.InvoiceStatusDraft
	StateCertified State = entity.InvoiceStatusCertified
	StateError     State = entity.InvoiceStatusError
)

var validStates = map[State]bool{
	StateDraft:     true,
	StateCertified: true,
	StateError:     true,
}

var terminalStates = map[State]bool{
	StateCertified: true,
}

// IsTerminal returns true once the DGI has certified the invoice
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a known invoice status
func (s State) IsValid() bool {
	return validStates[s]
}

// ParseState converts a stored status into a State
func ParseState(status string) (State, error) {
	s := State(status)
	if !s.IsValid() {
		return "", ErrInvalidState
	}
	return s, nil
}

package workflow

import "fmt"

// invoiceTable is the certification lifecycle of an invoice. A failed
// submission can be retried from ERROR or reset to DRAFT for editing.
var invoiceTable = Table{
	StateDraft: {
		TriggerCertifySucceeded: StateCertified,
		TriggerCertifyFailed:    StateError,
	},
	StateError: {
		TriggerCertifySucceeded: StateCertified,
		TriggerCertifyFailed:    StateError,
		TriggerReset:            StateDraft,
	},
}

// NewInvoiceMachine returns a machine positioned on the stored status of an
// invoice. CERTIFIED has no outgoing transition.
func NewInvoiceMachine(status string) (StateMachine, error) {
	s, err := ParseState(status)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, status)
	}
	return NewMachine(invoiceTable, s)
}

// IsEditable reports whether the imported data of an invoice may still change
func IsEditable(status string) bool {
	s, err := ParseState(status)
	return err == nil && !s.IsTerminal()
}

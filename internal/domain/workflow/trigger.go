package workflow

// Trigger represents an event that can change an invoice status
type Trigger string

const (
	TriggerCertifySucceeded Trigger = "CERTIFY_SUCCEEDED"
	TriggerCertifyFailed    Trigger = "CERTIFY_FAILED"
	TriggerReset            Trigger = "RESET"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}

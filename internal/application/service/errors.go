package service

import "errors"

var (
	// ErrFileNotFound is returned when an import file does not exist
	ErrFileNotFound = errors.New("file not found")

	// ErrUnsupportedFormat is returned for files that are not .xlsx, .xlsm or .xls
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrInvoiceNotFound is returned when an invoice does not exist or is deleted
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrClientNotFound is returned when no active client has the code
	ErrClientNotFound = errors.New("client not found")

	// ErrClientExists is returned when creating a client whose code is taken
	ErrClientExists = errors.New("client already exists")

	// ErrInvalidClient is returned when a client breaks the DGI template rules
	ErrInvalidClient = errors.New("invalid client")

	// ErrAlreadyCertified is returned when a certified invoice would be changed
	ErrAlreadyCertified = errors.New("invoice already certified")

	// ErrParentNotCertified is returned when a credit note's parent has no FNE id
	ErrParentNotCertified = errors.New("parent invoice is not certified")

	// ErrInvalidPaymentMethod is returned for payment text outside the known set
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrInvalidStatus is returned for an operation the invoice status forbids
	ErrInvalidStatus = errors.New("operation not allowed in current status")
)

// ValidationError carries every violation found on a record
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return "validation failed: " + e.Violations[0]
	}
	msg := "validation failed:"
	for _, v := range e.Violations {
		msg += " " + v + ";"
	}
	return msg
}

// Unwrap lets errors.Is match ErrInvalidClient
func (e *ValidationError) Unwrap() error {
	return ErrInvalidClient
}

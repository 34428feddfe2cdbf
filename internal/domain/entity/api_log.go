package entity

import "time"

// FneApiLog records one call to the DGI API. Rows are never updated.
type FneApiLog struct {
	ID           int64     `json:"id"`
	InvoiceID    int64     `json:"invoice_id"`
	Endpoint     string    `json:"endpoint"`
	RequestBody  string    `json:"request_body"`
	ResponseBody string    `json:"response_body"`
	StatusCode   int       `json:"status_code"`
	Success      bool      `json:"success"`
	ErrorMessage string    `json:"error_message,omitempty"`
	DurationMs   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

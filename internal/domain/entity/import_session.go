package entity

import "time"

// ImportSession is the audit record of one Excel import run.
type ImportSession struct {
	ID           int64      `json:"id"`
	Reference    string     `json:"reference"`
	Kind         string     `json:"kind"`
	FileName     string     `json:"file_name"`
	TotalCount   int        `json:"total_count"`
	SuccessCount int        `json:"success_count"`
	ErrorCount   int        `json:"error_count"`
	Status       string     `json:"status"`
	Message      string     `json:"message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

package dgi

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// ErrMissingAPIKey is returned when the client is used without credentials
var ErrMissingAPIKey = errors.New("FNE API key is not configured")

// APIError is a non-2xx answer of the DGI API
type APIError struct {
	StatusCode int      `json:"status_code"`
	Code       string   `json:"code,omitempty"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "DGI API error (HTTP %d)", e.StatusCode)
	if e.Code != "" {
		fmt.Fprintf(&b, " [%s]", e.Code)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Errors) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(e.Errors, "; "))
		b.WriteString(")")
	}
	return b.String()
}

// AsAPIError unwraps err into an *APIError when it carries one
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		apiErr.Message = truncate(apiErr.Message, maxRawMessage)
		return apiErr
	}

	apiErr.Code = resp.Code
	apiErr.Message = resp.Message
	if apiErr.Message == "" {
		apiErr.Message = resp.Error
	}
	apiErr.Errors = flattenErrors(resp.Errors)
	return apiErr
}

// flattenErrors accepts ["a", "b"], {"field": ["a"]} or {"field": "a"}
func flattenErrors(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	var byField map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byField); err != nil {
		return []string{string(raw)}
	}

	fields := make([]string, 0, len(byField))
	for f := range byField {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var out []string
	for _, f := range fields {
		var msgs []string
		if err := json.Unmarshal(byField[f], &msgs); err == nil {
			for _, m := range msgs {
				out = append(out, f+": "+m)
			}
			continue
		}
		var msg string
		if err := json.Unmarshal(byField[f], &msg); err == nil {
			out = append(out, f+": "+msg)
			continue
		}
		out = append(out, f+": "+string(byField[f]))
	}
	return out
}

const maxRawMessage = 500

// truncate keeps at most n runes of s
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := 0
	for i := range s {
		if runes == n {
			return s[:i]
		}
		runes++
	}
	return s
}

// Package common holds the wire types shared by the REST API, the SDK
// client and the CLI: the response envelope and the timestamp encoding.
package common

import (
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp is a time.Time that marshals as RFC 3339 with nanoseconds and
// accepts plain RFC 3339 on the way in, since scraped feeds rarely carry
// sub-second precision.
type Timestamp time.Time

// NewTimestamp returns the current UTC time.
func NewTimestamp() Timestamp {
	return Timestamp(time.Now().UTC())
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return err
		}
	}
	*t = Timestamp(parsed.UTC())
	return nil
}

// Time returns the underlying time.Time.
func (t Timestamp) Time() time.Time { return time.Time(t) }

// IsZero reports whether the timestamp is the zero time.
func (t Timestamp) IsZero() bool { return time.Time(t).IsZero() }

// ErrorDetail is the error half of the envelope: a stable machine code, a
// human message, and optional structured context.
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Pagination describes the page window of a list response.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total,omitempty"`
}

// maxPageSize bounds a single page of results across every list endpoint.
const maxPageSize = 100

// Validate rejects out-of-range paging parameters rather than clamping
// them; a bad window is a caller bug.
func (p Pagination) Validate() error {
	if p.Page < 1 {
		return fmt.Errorf("page must be >= 1")
	}
	if p.PageSize < 1 || p.PageSize > maxPageSize {
		return fmt.Errorf("page_size must be between 1 and %d", maxPageSize)
	}
	return nil
}

// APIResponse is the envelope every endpoint returns.  Exactly one of Data
// and Error is populated, keyed off Success.
type APIResponse[T any] struct {
	Success    bool         `json:"success"`
	Data       T            `json:"data,omitempty"`
	Error      *ErrorDetail `json:"error,omitempty"`
	Pagination *Pagination  `json:"pagination,omitempty"`
	RequestID  string       `json:"request_id,omitempty"`
	Timestamp  Timestamp    `json:"timestamp"`
}

// NewSuccessResponse wraps data in a success envelope.
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{
		Success:   true,
		Data:      data,
		Timestamp: NewTimestamp(),
	}
}

// NewErrorResponse wraps an error code and message in a failure envelope.
func NewErrorResponse(code, message string) APIResponse[any] {
	return APIResponse[any]{
		Success: false,
		Error: &ErrorDetail{
			Code:    code,
			Message: message,
		},
		Timestamp: NewTimestamp(),
	}
}

// NewPaginatedResponse wraps a page of data together with its window.
func NewPaginatedResponse[T any](data T, pagination Pagination) APIResponse[T] {
	return APIResponse[T]{
		Success:    true,
		Data:       data,
		Pagination: &pagination,
		Timestamp:  NewTimestamp(),
	}
}

// HealthStatus reports the reachability of a backing component.
type HealthStatus string

const (
	HealthUp       HealthStatus = "up"
	HealthDown     HealthStatus = "down"
	HealthDegraded HealthStatus = "degraded"
)

// ComponentHealth is one entry in the readiness report.
type ComponentHealth struct {
	Name    string        `json:"name"`
	Status  HealthStatus  `json:"status"`
	Latency time.Duration `json:"latency"`
	Message string        `json:"message,omitempty"`
}

package domain

import (
	"context"
	"time"
)

const (
	HealthStatusOK    = "ok"
	HealthStatusError = "error"

	IndicatorUp   = "up"
	IndicatorDown = "down"
)

// HealthIndicator is one probe of the health check (store ping, disk, heap, ...).
type HealthIndicator interface {
	Name() string
	Check(ctx context.Context) error
}

// IndicatorResult is the outcome of a single indicator.
type IndicatorResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthReport aggregates all indicators. Error lists only failing ones; Details lists all.
// swagger:model HealthReport
type HealthReport struct {
	Status  string                     `json:"status"`
	Info    map[string]IndicatorResult `json:"info"`
	Error   map[string]IndicatorResult `json:"error"`
	Details map[string]IndicatorResult `json:"details"`
}

// OK reports whether every indicator passed.
func (r *HealthReport) OK() bool { return r.Status == HealthStatusOK }

// ErrorLog is the payload forwarded to the log sink when a health check fails.
type ErrorLog struct {
	StatusCode int                        `json:"statusCode"`
	Message    string                     `json:"message"`
	Details    map[string]IndicatorResult `json:"details"`
	Timestamp  time.Time                  `json:"timestamp"`
}

// LogSink forwards structured error logs to an external aggregator.
type LogSink interface {
	Send(ctx context.Context, entry *ErrorLog) error
}

// HealthService runs all indicators and reports failures to the log sink.
type HealthService interface {
	Check(ctx context.Context) *HealthReport
}

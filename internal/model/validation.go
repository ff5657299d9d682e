package model

import "time"

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
)

// ValidationError is a finding that makes a dataset unsafe to serve.
type ValidationError struct {
	Check    string                 `json:"check"`
	Severity Severity               `json:"severity"`
	Date     string                 `json:"date,omitempty"`
	Message  string                 `json:"message"`
	Detail   map[string]interface{} `json:"detail,omitempty"`
}

// ValidationWarning is a quality finding that does not invalidate the
// dataset.
type ValidationWarning struct {
	Check   string `json:"check"`
	Date    string `json:"date,omitempty"`
	Message string `json:"message"`
}

type ValidationMetadata struct {
	Timestamp   time.Time     `json:"timestamp"`
	Component   string        `json:"component"`
	Source      string        `json:"source"`
	RecordCount int           `json:"record_count"`
	Duration    time.Duration `json:"duration"`
	ChecksRun   []string      `json:"checks_run"`
}

// ValidationResult accumulates every finding from one validator run.
// IsValid is true iff Errors is empty; warnings never flip it.
type ValidationResult struct {
	IsValid  bool                `json:"is_valid"`
	Errors   []ValidationError   `json:"errors"`
	Warnings []ValidationWarning `json:"warnings"`
	Metadata ValidationMetadata  `json:"metadata"`
}

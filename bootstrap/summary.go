package bootstrap

import (
	"time"

	"github.com/kbukum/lazyseq/logger"
)

// Summary records what a task run did. It is logged once the task finishes.
type Summary struct {
	Name        string
	Version     string
	Environment string
	Telemetry   bool

	StartupDuration time.Duration
	TaskDuration    time.Duration
	Err             error
}

// NewSummary creates a Summary for the named binary.
func NewSummary(name, version, environment string) *Summary {
	return &Summary{Name: name, Version: version, Environment: environment}
}

// SetStartupDuration records how long the start hooks took.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.StartupDuration = d
}

// SetTaskResult records the task's duration and outcome.
func (s *Summary) SetTaskResult(d time.Duration, err error) {
	s.TaskDuration = d
	s.Err = err
}

// Status is "ok" or "failed".
func (s *Summary) Status() string {
	if s.Err != nil {
		return "failed"
	}
	return "ok"
}

// Fields returns the summary as structured log fields.
func (s *Summary) Fields() map[string]any {
	f := logger.Fields(
		"name", s.Name,
		"version", s.Version,
		"environment", s.Environment,
		"telemetry", s.Telemetry,
		logger.FieldStatus, s.Status(),
		"startup_ms", s.StartupDuration.Milliseconds(),
		logger.FieldDuration, s.TaskDuration.Milliseconds(),
	)
	if s.Err != nil {
		f[logger.FieldError] = s.Err.Error()
	}
	return f
}

// Log writes the summary at debug level, or warn level when the task failed.
func (s *Summary) Log(l *logger.Logger) {
	if s.Err != nil {
		l.Warn("task finished", s.Fields())
		return
	}
	l.Debug("task finished", s.Fields())
}

package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/psantana5/vaultmod/pkg/logging"
	"github.com/psantana5/vaultmod/pkg/models"
)

// Failure is one field that could not be coerced
type Failure struct {
	Record  string `json:"record" yaml:"record"`
	Field   string `json:"field" yaml:"field"`
	Literal string `json:"literal" yaml:"literal"`
	Kind    string `json:"kind" yaml:"kind"` // schema, enum, format or unknown
	Reason  string `json:"reason" yaml:"reason"`
}

// Outcome is one successfully coerced field
type Outcome struct {
	Record  string `json:"record" yaml:"record"`
	Field   string `json:"field" yaml:"field"`
	Type    string `json:"type" yaml:"type"`
	Literal string `json:"literal" yaml:"literal"`
	Value   string `json:"value" yaml:"value"`
	Variant string `json:"variant" yaml:"variant"`
}

// Result summarizes one override run. It is filled while the run progresses
// and frozen by Finish.
type Result struct {
	RunID  string `json:"run_id" yaml:"run_id"`
	Source string `json:"source" yaml:"source"`

	StartTime time.Time     `json:"start_time" yaml:"start_time"`
	EndTime   time.Time     `json:"end_time" yaml:"end_time"`
	Duration  time.Duration `json:"duration_ns" yaml:"duration_ns"`

	Applied  []Outcome `json:"applied" yaml:"applied"`
	Failures []Failure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// NewResult starts a run result for the given source document
func NewResult(source string) *Result {
	return &Result{
		RunID:     uuid.New().String(),
		Source:    source,
		StartTime: time.Now(),
	}
}

// AddOutcome records a coerced field
func (r *Result) AddOutcome(o Outcome) {
	r.Applied = append(r.Applied, o)
}

// AddFailure records a field that failed, classifying err
func (r *Result) AddFailure(record, field, literal string, err error) Failure {
	f := Failure{
		Record:  record,
		Field:   field,
		Literal: literal,
		Kind:    models.ErrorTypeOf(err).String(),
		Reason:  err.Error(),
	}
	r.Failures = append(r.Failures, f)
	return f
}

// Finish freezes timing
func (r *Result) Finish() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// OK reports whether every field coerced
func (r *Result) OK() bool {
	return len(r.Failures) == 0
}

// Total returns the number of fields attempted
func (r *Result) Total() int {
	return len(r.Applied) + len(r.Failures)
}

// LogSummary emits the one-line run summary
func (r *Result) LogSummary(logger *logging.Logger) {
	status := "OK"
	if !r.OK() {
		status = "FAILED"
	}
	logger.Info(fmt.Sprintf("RUN %s | %s | source=%s | fields=%d | applied=%d | failed=%d | took=%s",
		r.RunID, status, r.Source, r.Total(), len(r.Applied), len(r.Failures), r.Duration.Round(time.Microsecond)))
}

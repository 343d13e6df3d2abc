package reconcile

import (
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "github.com/vango-dev/vldom/pkg/reconcile"

// Outcome is how a Render ended.
type Outcome string

const (
	OutcomeCommitted Outcome = "committed"
	OutcomeFailed    Outcome = "failed"
	OutcomeAborted   Outcome = "aborted"
)

// Recorder receives reconciliation measurements.
type Recorder interface {
	// Render is called once per Render with its outcome and duration.
	Render(outcome Outcome, d time.Duration)

	// Step is called for every depth the walk reaches.
	Step(class string, action Action)

	// Load is called when a layer's OnLoad returns.
	Load(class string, d time.Duration, err error)
}

// NopRecorder discards all measurements.
type NopRecorder struct{}

func (NopRecorder) Render(Outcome, time.Duration)     {}
func (NopRecorder) Step(string, Action)               {}
func (NopRecorder) Load(string, time.Duration, error) {}

func defaultTracer() trace.Tracer {
	return otel.Tracer(defaultTracerName)
}

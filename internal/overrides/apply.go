package overrides

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/psantana5/vaultmod/internal/coerce"
	"github.com/psantana5/vaultmod/internal/report"
	"github.com/psantana5/vaultmod/internal/schema"
	"github.com/psantana5/vaultmod/pkg/logging"
	"github.com/psantana5/vaultmod/pkg/models"
	"github.com/psantana5/vaultmod/pkg/tracing"
)

const tracerName = "github.com/psantana5/vaultmod/internal/overrides"

// Applier coerces override documents into typed fields
type Applier struct {
	coercer  *coerce.Coercer
	registry *schema.Registry
	logger   *logging.Logger
	failures *report.FailureLog
	tracer   *tracing.Provider
}

// NewApplier creates an applier. registry resolves Like names that refer
// to enums; failures may be nil.
func NewApplier(c *coerce.Coercer, registry *schema.Registry, logger *logging.Logger, failures *report.FailureLog) *Applier {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Applier{
		coercer:  c,
		registry: registry,
		logger:   logger,
		failures: failures,
		tracer:   tracing.Global(tracerName),
	}
}

// WithTracing routes the applier's spans through p
func (a *Applier) WithTracing(p *tracing.Provider) *Applier {
	if p != nil {
		a.tracer = p
	}
	return a
}

// Apply coerces every field of doc. Each field succeeds or fails on its
// own; failures are collected in the result rather than stopping the run.
// Cancellation of ctx stops the run between records.
func (a *Applier) Apply(ctx context.Context, source string, doc *Document) (*report.Result, error) {
	ctx, span := a.tracer.StartSpan(ctx, "overrides.apply",
		attribute.String("source", source),
		attribute.Int("fields", doc.FieldCount()),
	)
	defer span.End()

	result := report.NewResult(source)
	log := a.logger.WithField("run_id", result.RunID)

	for _, rec := range doc.Records {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, "canceled")
			return nil, err
		}
		a.applyRecord(ctx, log, result, rec)
	}

	result.Finish()
	if !result.OK() {
		span.SetStatus(codes.Error, fmt.Sprintf("%d fields failed", len(result.Failures)))
	}
	result.LogSummary(log)
	return result, nil
}

func (a *Applier) applyRecord(ctx context.Context, log *logging.Logger, result *report.Result, rec Record) {
	ctx, span := a.tracer.StartSpan(ctx, "overrides.record",
		attribute.String("record", rec.Name),
	)
	defer span.End()

	for _, f := range rec.Fields {
		out, err := a.ApplyField(f)
		if err != nil {
			failure := result.AddFailure(rec.Name, f.Field, f.Value, err)
			if a.failures != nil {
				a.failures.Record(failure)
			}
			tracing.SetError(ctx, err)
			log.Warn("field override rejected", logging.Fields{
				"record": rec.Name,
				"field":  f.Field,
				"kind":   failure.Kind,
				"error":  err.Error(),
			})
			continue
		}
		out.Record = rec.Name
		result.AddOutcome(out)
	}
}

// ApplyField coerces a single override, choosing the path from its shape
func (a *Applier) ApplyField(f FieldOverride) (report.Outcome, error) {
	outcome := report.Outcome{Field: f.Field, Literal: f.Value}

	if f.Type != "" {
		field := models.NewField(models.WrapperType(f.Type))
		if _, err := a.coercer.Apply(field, f.Value); err != nil {
			return outcome, err
		}
		outcome.Type = f.Type
		outcome.Value = field.Value.String()
		outcome.Variant = field.Value.Kind().String()
		return outcome, nil
	}

	example, err := a.Example(f.Like)
	if err != nil {
		return outcome, err
	}
	v, err := a.coercer.CoerceByExample(example, f.Value)
	if err != nil {
		return outcome, err
	}
	outcome.Type = f.Like
	outcome.Value = v.String()
	outcome.Variant = v.Kind().String()
	return outcome, nil
}

// Example builds an example value for a Like name: a declared enum, a
// primitive kind spelling, or nothing at all
func (a *Applier) Example(like string) (models.Value, error) {
	if like == "" {
		return models.Value{}, nil
	}
	if a.registry != nil {
		if e, ok := a.registry.Enum(like); ok {
			return models.ZeroOf(models.EnumTarget(e))
		}
	}
	kind, err := models.ParseKind(like)
	if err != nil {
		return models.Value{}, fmt.Errorf("like %q: %w", like, err)
	}
	return models.ZeroOf(models.KindTarget(kind))
}

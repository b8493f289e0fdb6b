package application

import (
	"context"
	"time"

	domoutbox "github.com/Zhima-Mochi/minishop-checkout/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type UseCase[C any, R any] interface {
	Execute(ctx context.Context, cmd C) (R, error)
}

const (
	SpanPrefix     = "UC."
	publishPeer    = "outbox"
	publishTimeout = 300 * time.Millisecond
)

// Instruments holds the RED instruments and base logger a use case reports to.
// Build it once in the constructor; never per call.
type Instruments struct {
	tel observability.Observability
	log observability.Logger

	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

func NewInstruments(tel observability.Observability, service string) *Instruments {
	if tel == nil {
		tel = observability.Nop()
	}
	m := tel.Metrics()
	return &Instruments{
		tel:          tel,
		log:          tel.Logger().With(observability.F("service", service)),
		reqCounter:   m.Counter(observability.MUsecaseRequests),
		durHistogram: m.Histogram(observability.MUsecaseDuration),
		extCounter:   m.Counter(observability.MExternalRequests),
		extHistogram: m.Histogram(observability.MExternalRequestDuration),
	}
}

func (in *Instruments) Metrics() observability.Metrics { return in.tel.Metrics() }

func (in *Instruments) Logger() observability.Logger { return in.log }

// Call tracks one use case execution from Start to End.
type Call struct {
	in      *Instruments
	ctx     context.Context
	useCase string
	span    trace.Span
	start   time.Time
	log     observability.Logger
	outcome string
	status  string
	fields  []observability.Field
}

// Start opens the UC span and binds a use-case logger into the returned context.
func (in *Instruments) Start(ctx context.Context, useCase, spanName string, attrs ...attribute.KeyValue) (context.Context, *Call) {
	attrs = append([]attribute.KeyValue{attribute.String("use_case", useCase)}, attrs...)
	ctx, span := in.tel.Tracer().Start(ctx, SpanPrefix+spanName, attrs...)
	ctx, logger := logctx.Enrich(ctx, in.log, observability.F("use_case", useCase))
	return ctx, &Call{
		in:      in,
		ctx:     ctx,
		useCase: useCase,
		span:    span,
		start:   time.Now(),
		log:     logger,
		outcome: "success",
		status:  "OK",
	}
}

func (c *Call) Logger() observability.Logger { return c.log }

func (c *Call) Span() trace.Span { return c.span }

// Fail marks the call as an error with the given status text.
func (c *Call) Fail(status string) { c.outcome, c.status = "error", status }

// Status replaces the status text without touching the outcome.
func (c *Call) Status(status string) { c.status = status }

func (c *Call) StatusText() string { return c.status }

// Field adds a field to the use_case_done line.
func (c *Call) Field(k string, v any) { c.fields = append(c.fields, observability.F(k, v)) }

// End closes the span, records RED metrics and logs use_case_done.
func (c *Call) End(err error) {
	lat := time.Since(c.start).Seconds()
	if err != nil && c.outcome == "success" {
		c.outcome = "error"
	}

	if c.span != nil {
		if err != nil {
			c.span.RecordError(err)
			c.span.SetStatus(codes.Error, c.status)
		} else {
			c.span.SetStatus(codes.Ok, c.status)
		}
		c.span.End()
	}

	c.in.reqCounter.Add(1,
		observability.L("use_case", c.useCase),
		observability.L("outcome", c.outcome),
	)
	c.in.durHistogram.Observe(lat,
		observability.L("use_case", c.useCase),
	)

	fields := []observability.Field{
		observability.F("outcome", c.outcome),
		observability.F("status", c.status),
		observability.F("latency_seconds", lat),
	}
	if sc := trace.SpanContextFromContext(c.ctx); sc.IsValid() {
		fields = append(fields,
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}
	fields = append(fields, c.fields...)
	if err != nil {
		fields = append(fields, observability.E(err))
	}
	c.log.Info("use_case_done", fields...)
}

// Publish hands events to the publisher best-effort. Each publish is bounded
// by a short timeout and its failure never fails the call; the first error is
// recorded on the call and returned for the caller's information.
func (c *Call) Publish(ctx context.Context, publisher domoutbox.Publisher, events ...domoutbox.Event) error {
	if publisher == nil {
		return nil
	}
	var first error
	for _, e := range events {
		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		pubStart := time.Now()
		pubOutcome := "success"

		err := publisher.Publish(pubCtx, e)
		if err != nil {
			pubOutcome = "error"
		} else if pubCtx.Err() != nil {
			pubOutcome = "canceled"
			err = pubCtx.Err()
		}
		cancel()

		c.in.extCounter.Add(1,
			observability.L("peer", publishPeer),
			observability.L("endpoint", e.EventName()),
			observability.L("outcome", pubOutcome),
		)
		c.in.extHistogram.Observe(time.Since(pubStart).Seconds(),
			observability.L("peer", publishPeer),
			observability.L("endpoint", e.EventName()),
		)

		if err != nil && first == nil {
			first = err
			c.span.RecordError(err)
			c.Field("event_publish_error", err.Error())
			if c.outcome == "success" {
				c.status = "EVENT_PUBLISH_FAILED"
			}
		}
	}
	return first
}

package telemetry

import (
	"context"
	"time"

	"github.com/beastmint/mintd/internal/core/ports"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

type metrics struct {
	mintDispatched    otelmetric.Int64Counter
	mintRejected      otelmetric.Int64Counter
	transferSubmitted otelmetric.Int64Counter
	transferFailed    otelmetric.Int64Counter
	pipelineDuration  otelmetric.Float64Histogram
}

// NewMetrics builds the mintd instruments on the given meter. An instrument
// that fails to register is skipped.
func NewMetrics(meter otelmetric.Meter) ports.Metrics {
	m := &metrics{}
	m.mintDispatched = counter(meter, "mint.dispatched", "mint requests accepted by the marketplace")
	m.mintRejected = counter(meter, "mint.rejected", "mint requests rejected by the marketplace")
	m.transferSubmitted = counter(meter, "transfer.submitted", "signed transfers submitted on chain")
	m.transferFailed = counter(meter, "transfer.failed", "transfers that failed before or at submission")

	hist, err := meter.Float64Histogram(
		"mint.pipeline.duration",
		otelmetric.WithDescription("duration of the whole mint pipeline"),
		otelmetric.WithUnit("s"),
	)
	if err != nil {
		log.WithError(err).Warn("failed to register mint.pipeline.duration histogram")
	}
	m.pipelineDuration = hist
	return m
}

func (m *metrics) MintDispatched(ctx context.Context, accepted bool) {
	if accepted {
		add(ctx, m.mintDispatched)
		return
	}
	add(ctx, m.mintRejected)
}

func (m *metrics) TransferSubmitted(ctx context.Context, kind string, ok bool) {
	attrs := otelmetric.WithAttributes(attribute.String("kind", kind))
	if ok {
		add(ctx, m.transferSubmitted, attrs)
		return
	}
	add(ctx, m.transferFailed, attrs)
}

func (m *metrics) PipelineDuration(ctx context.Context, d time.Duration) {
	if m.pipelineDuration == nil {
		return
	}
	m.pipelineDuration.Record(ctx, d.Seconds())
}

func counter(meter otelmetric.Meter, name, description string) otelmetric.Int64Counter {
	c, err := meter.Int64Counter(name, otelmetric.WithDescription(description))
	if err != nil {
		log.WithError(err).Warnf("failed to register %s counter", name)
		return nil
	}
	return c
}

func add(ctx context.Context, c otelmetric.Int64Counter, opts ...otelmetric.AddOption) {
	if c == nil {
		return
	}
	c.Add(ctx, 1, opts...)
}

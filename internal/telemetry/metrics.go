package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/chroniclehq/chronicle"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Generation metrics
	GenerationCallsTotal  metric.Int64Counter
	GenerationErrorsTotal metric.Int64Counter
	GenerationDuration    metric.Float64Histogram

	// Content metrics
	PostsCreatedTotal    metric.Int64Counter
	PostsDeletedTotal    metric.Int64Counter
	ImagesGeneratedTotal metric.Int64Counter

	// Reminder metrics
	RemindersSentTotal      metric.Int64Counter
	ReminderSendErrorsTotal metric.Int64Counter
	ReminderSweepDuration   metric.Float64Histogram
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.GenerationCallsTotal, _ = meter.Int64Counter(
		"chronicle.generation.calls.total",
		metric.WithDescription("Total number of content generation calls"),
		metric.WithUnit("{call}"),
	)

	m.GenerationErrorsTotal, _ = meter.Int64Counter(
		"chronicle.generation.errors.total",
		metric.WithDescription("Total number of failed content generation calls"),
		metric.WithUnit("{error}"),
	)

	m.GenerationDuration, _ = meter.Float64Histogram(
		"chronicle.generation.duration",
		metric.WithDescription("Duration of content generation calls"),
		metric.WithUnit("ms"),
	)

	m.PostsCreatedTotal, _ = meter.Int64Counter(
		"chronicle.posts.created.total",
		metric.WithDescription("Total number of posts created"),
		metric.WithUnit("{post}"),
	)

	m.PostsDeletedTotal, _ = meter.Int64Counter(
		"chronicle.posts.deleted.total",
		metric.WithDescription("Total number of posts deleted"),
		metric.WithUnit("{post}"),
	)

	m.ImagesGeneratedTotal, _ = meter.Int64Counter(
		"chronicle.images.generated.total",
		metric.WithDescription("Total number of images generated for posts"),
		metric.WithUnit("{image}"),
	)

	m.RemindersSentTotal, _ = meter.Int64Counter(
		"chronicle.reminders.sent.total",
		metric.WithDescription("Total number of reminder notifications delivered"),
		metric.WithUnit("{reminder}"),
	)

	m.ReminderSendErrorsTotal, _ = meter.Int64Counter(
		"chronicle.reminders.send_errors.total",
		metric.WithDescription("Total number of reminder notification delivery failures"),
		metric.WithUnit("{error}"),
	)

	m.ReminderSweepDuration, _ = meter.Float64Histogram(
		"chronicle.reminders.sweep.duration",
		metric.WithDescription("Duration of reminder sweep runs"),
		metric.WithUnit("ms"),
	)

	return m
}

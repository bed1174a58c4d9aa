package parking

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type engineMetrics struct {
	entries         metric.Int64Counter
	exits           metric.Int64Counter
	queued          metric.Int64Counter
	paymentFailures metric.Int64Counter
	starvations     metric.Int64Counter
	revenue         metric.Float64Counter
	occupancy       metric.Int64UpDownCounter
	queueDepth      metric.Int64UpDownCounter
	tickDuration    metric.Float64Histogram
}

func newEngineMetrics(meter metric.Meter) (*engineMetrics, error) {
	entries, err := meter.Int64Counter(
		"garage_vehicle_entries_total",
		metric.WithDescription("Total number of vehicles that entered a space"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create entries counter: %w", err)
	}

	exits, err := meter.Int64Counter(
		"garage_vehicle_exits_total",
		metric.WithDescription("Total number of vehicles that left the garage"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create exits counter: %w", err)
	}

	queued, err := meter.Int64Counter(
		"garage_vehicles_queued_total",
		metric.WithDescription("Total number of vehicles sent to the wait queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create queued counter: %w", err)
	}

	paymentFailures, err := meter.Int64Counter(
		"garage_payment_failures_total",
		metric.WithDescription("Total number of failed exit payments"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment failures counter: %w", err)
	}

	starvations, err := meter.Int64Counter(
		"garage_queue_starvation_total",
		metric.WithDescription("Times the wait queue head could not be matched to a freed space"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create starvation counter: %w", err)
	}

	revenue, err := meter.Float64Counter(
		"garage_revenue_total",
		metric.WithDescription("Total fees collected"),
		metric.WithUnit("{currency}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create revenue counter: %w", err)
	}

	occupancy, err := meter.Int64UpDownCounter(
		"garage_occupied_spaces",
		metric.WithDescription("Number of currently occupied spaces"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create occupancy gauge: %w", err)
	}

	queueDepth, err := meter.Int64UpDownCounter(
		"garage_wait_queue_depth",
		metric.WithDescription("Number of vehicles currently waiting for a space"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create queue depth gauge: %w", err)
	}

	tickDuration, err := meter.Float64Histogram(
		"garage_tick_duration_seconds",
		metric.WithDescription("Wall time spent processing one simulation tick"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tick duration histogram: %w", err)
	}

	return &engineMetrics{
		entries:         entries,
		exits:           exits,
		queued:          queued,
		paymentFailures: paymentFailures,
		starvations:     starvations,
		revenue:         revenue,
		occupancy:       occupancy,
		queueDepth:      queueDepth,
		tickDuration:    tickDuration,
	}, nil
}

func (m *engineMetrics) recordEntry(ctx context.Context, class VehicleClass) {
	m.entries.Add(ctx, 1, metric.WithAttributes(attribute.String("vehicle.class", string(class))))
	m.occupancy.Add(ctx, 1)
}

func (m *engineMetrics) recordExit(ctx context.Context, class VehicleClass, fee float64) {
	m.exits.Add(ctx, 1, metric.WithAttributes(attribute.String("vehicle.class", string(class))))
	m.revenue.Add(ctx, fee)
	m.occupancy.Add(ctx, -1)
}

func (m *engineMetrics) recordQueued(ctx context.Context, class VehicleClass) {
	m.queued.Add(ctx, 1, metric.WithAttributes(attribute.String("vehicle.class", string(class))))
	m.queueDepth.Add(ctx, 1)
}

func (m *engineMetrics) recordDrained(ctx context.Context) {
	m.queueDepth.Add(ctx, -1)
}

func (m *engineMetrics) recordPaymentFailure(ctx context.Context, class VehicleClass) {
	m.paymentFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("vehicle.class", string(class))))
}

func (m *engineMetrics) recordStarvation(ctx context.Context) {
	m.starvations.Add(ctx, 1)
}

func (m *engineMetrics) recordTick(ctx context.Context, elapsed time.Duration) {
	m.tickDuration.Record(ctx, elapsed.Seconds())
}

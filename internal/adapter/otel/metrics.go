package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "smartermcp"

// Metrics holds the gateway's metric instruments.
type Metrics struct {
	ActionsDispatched metric.Int64Counter
	ActionsCompleted  metric.Int64Counter
	ActionsBlocked    metric.Int64Counter
	ActionsFailed     metric.Int64Counter
	DispatchDuration  metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.ActionsDispatched, err = meter.Int64Counter("smartermcp.actions.dispatched",
		metric.WithDescription("Number of action requests received"))
	if err != nil {
		return nil, err
	}

	m.ActionsCompleted, err = meter.Int64Counter("smartermcp.actions.completed",
		metric.WithDescription("Number of actions completed successfully"))
	if err != nil {
		return nil, err
	}

	m.ActionsBlocked, err = meter.Int64Counter("smartermcp.actions.blocked",
		metric.WithDescription("Number of actions stopped by a gate"))
	if err != nil {
		return nil, err
	}

	m.ActionsFailed, err = meter.Int64Counter("smartermcp.actions.failed",
		metric.WithDescription("Number of actions that failed during execution"))
	if err != nil {
		return nil, err
	}

	m.DispatchDuration, err = meter.Float64Histogram("smartermcp.dispatch.duration_seconds",
		metric.WithDescription("Action dispatch duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

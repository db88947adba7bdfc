package health

import (
	"time"

	"github.com/skillsenselab/healthcore/component"
)

// MetricType classifies a health metric.
type MetricType string

const (
	MetricCPU          MetricType = "cpu"
	MetricMemory       MetricType = "memory"
	MetricDisk         MetricType = "disk"
	MetricResponseTime MetricType = "response_time"
	MetricErrorRate    MetricType = "error_rate"
	MetricActiveUsers  MetricType = "active_users"
	MetricCustom       MetricType = "custom"
)

// Metric is a single health measurement with a status derived from
// thresholds at creation time.
type Metric struct {
	Type      MetricType      `json:"type"`
	Value     float64         `json:"value"`
	Status    component.State `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
}

// Thresholds maps a metric value to a status. Values at or above Critical
// derive Failed; at or above Warn derive Degraded; below Warn derive Running.
type Thresholds struct {
	Warn     float64
	Critical float64
}

// ThresholdSet holds per-metric-type thresholds.
type ThresholdSet map[MetricType]Thresholds

// DefaultThresholds mirrors the conventional percentage-based limits for
// utilization metrics and leaves custom metrics permanently Running.
func DefaultThresholds() ThresholdSet {
	return ThresholdSet{
		MetricCPU:          {Warn: 80, Critical: 95},
		MetricMemory:       {Warn: 80, Critical: 95},
		MetricDisk:         {Warn: 85, Critical: 95},
		MetricResponseTime: {Warn: 1000, Critical: 5000},
		MetricErrorRate:    {Warn: 0.05, Critical: 0.25},
	}
}

// Derive computes the status for a value of the given metric type. Types
// without configured thresholds derive Running.
func (ts ThresholdSet) Derive(mt MetricType, value float64) component.State {
	th, ok := ts[mt]
	if !ok {
		return component.StateRunning
	}
	switch {
	case value >= th.Critical:
		return component.StateFailed
	case value >= th.Warn:
		return component.StateDegraded
	default:
		return component.StateRunning
	}
}

// NewMetric creates a timestamped metric with its status derived from the
// threshold set.
func NewMetric(ts ThresholdSet, mt MetricType, value float64) Metric {
	return Metric{
		Type:      mt,
		Value:     value,
		Status:    ts.Derive(mt, value),
		Timestamp: time.Now().UTC(),
	}
}

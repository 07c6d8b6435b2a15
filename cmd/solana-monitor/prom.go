package main

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nodewatch/solana-monitor/pkg/slog"
)

// GaugeDesc wraps a prometheus gauge descriptor together with its label names,
// for emitting const metrics from freshly fetched data.
type GaugeDesc struct {
	Desc           *prometheus.Desc
	Name           string
	Help           string
	VariableLabels []string
}

func NewGaugeDesc(name string, description string, variableLabels ...string) *GaugeDesc {
	return &GaugeDesc{
		Desc:           prometheus.NewDesc(name, description, variableLabels, nil),
		Name:           name,
		Help:           description,
		VariableLabels: variableLabels,
	}
}

// MustNewConstMetric creates a gauge sample with the provided label values.
// The number of labels must match the descriptor.
func (c *GaugeDesc) MustNewConstMetric(value float64, labels ...string) prometheus.Metric {
	if len(labels) != len(c.VariableLabels) {
		slog.Get().Fatalf("%s: expected %d labels, got %d", c.Name, len(c.VariableLabels), len(labels))
	}
	return prometheus.MustNewConstMetric(c.Desc, prometheus.GaugeValue, value, labels...)
}

// NewInvalidMetric creates a metric that reports the given error on scrape.
func (c *GaugeDesc) NewInvalidMetric(err error) prometheus.Metric {
	return prometheus.NewInvalidMetric(c.Desc, err)
}

package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts service operations by outcome.
type Metrics struct {
	operations *prometheus.CounterVec
}

// NewMetrics creates the operation counter and registers it with reg when reg is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docrepo_document_operations_total",
				Help: "Total number of document service operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.operations)
	}
	return m
}

func (m *Metrics) observe(op string, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidInput):
		return "invalid"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

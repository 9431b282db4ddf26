package httpx

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	inFlight prometheus.Gauge
	total    *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	inFlight := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "dustnbones",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Requests sent to the backend that have not completed.",
	})
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dustnbones",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Completed backend requests by method and status code.",
	}, []string{"method", "code"})

	g, err := register(reg, inFlight)
	if err != nil {
		return nil, err
	}
	cv, err := register(reg, total)
	if err != nil {
		return nil, err
	}
	return &metrics{inFlight: g, total: cv}, nil
}

// register adds c to reg, reusing an identical collector registered by an
// earlier client.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return c, nil
}

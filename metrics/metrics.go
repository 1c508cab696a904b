// Package metrics instruments the emission pipeline with Prometheus
// collectors. In continuous mode these are served over HTTP; in
// run-once mode they still record, which keeps the call sites
// unconditional.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/trxkit/trx-emitter/results"
)

const MetricsNamespace = "trx_emitter"

var (
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	emissionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "emissions_total",
		Help:      "Number of TRX documents emitted",
	})

	emissionResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "emission_results",
		Help:      "Results in the most recent emission, by outcome",
	}, []string{
		"run_id",
		"outcome",
	})

	emissionTraversals = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "emission_traversals",
		Help:      "Traversals in the most recent emission",
	}, []string{
		"run_id",
	})

	incompleteTraversals = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "incomplete_traversals",
		Help:      "Traversals that never reached teardown (crashes, aborts)",
	}, []string{
		"run_id",
	})
)

// RecordError increments the error counter for the given error label.
func RecordError(errorLabel string) {
	errorsTotal.WithLabelValues(errorLabel).Inc()
}

// RecordEmission records the shape of one emitted document.
func RecordEmission(runID string, rs []*results.Result) {
	emissionsTotal.Inc()

	passed, failed := 0, 0
	traversals, incomplete := 0, 0
	for _, r := range rs {
		if r.IsOk() {
			passed++
		} else {
			failed++
		}
		traversals += len(r.Traversals)
		for _, t := range r.Traversals {
			if !t.Completed {
				incomplete++
			}
		}
	}

	emissionResults.WithLabelValues(runID, "passed").Set(float64(passed))
	emissionResults.WithLabelValues(runID, "failed").Set(float64(failed))
	emissionTraversals.WithLabelValues(runID).Set(float64(traversals))
	incompleteTraversals.WithLabelValues(runID).Set(float64(incomplete))
}

package stat

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/revelaction/relstream/sentence"
)

const namespace = "relstream"

// Metrics mirrors the Handler counters as Prometheus collectors.
type Metrics struct {
	Sentences *prometheus.CounterVec
	Tokens    prometheus.Histogram
	Seconds   prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Sentences: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sentences_total",
			Help:      "Sentences processed, by extraction outcome.",
		}, []string{"outcome"}),
		Tokens: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sentence_tokens",
			Help:      "Tokens in the best parse of each sentence.",
			Buckets:   []float64{1, 5, 10, 20, 40, 80, 160},
		}),
		Seconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_seconds",
			Help:      "Wall-clock time spent by the extraction engine per sentence.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 9),
		}),
	}

	for _, c := range []prometheus.Collector{m.Sentences, m.Tokens, m.Seconds} {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				return nil, fmt.Errorf("metric already registered: %w", err)
			}
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}

	// export every outcome, even at zero
	for _, o := range sentence.Outcomes() {
		m.Sentences.WithLabelValues(string(o))
	}

	return m, nil
}

func (m *Metrics) observe(r *sentence.Result) {
	if m == nil {
		return
	}

	m.Sentences.WithLabelValues(string(r.Outcome)).Inc()
	m.Tokens.Observe(float64(r.NumTokens()))
	m.Seconds.Observe(r.Elapsed.Seconds())
}

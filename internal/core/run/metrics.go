package run

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 計算流程指標
type Metrics struct {
	runs       *prometheus.CounterVec
	duration   prometheus.Histogram
	rows       *prometheus.CounterVec
	pairErrors prometheus.Counter
	inProgress prometheus.Gauge
}

// NewMetrics 創建指標，reg 為 nil 時不註冊
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grocery_pricer",
			Name:      "runs_total",
			Help:      "Pricing runs by outcome.",
		}, []string{"outcome"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "grocery_pricer",
			Name:      "run_duration_seconds",
			Help:      "Duration of completed pricing runs.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		rows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grocery_pricer",
			Name:      "recipe_store_prices_written_total",
			Help:      "Recipe/store price rows upserted, by completeness.",
		}, []string{"complete"}),
		pairErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "grocery_pricer",
			Name:      "pair_errors_total",
			Help:      "Recipe/store pairs that failed during a run.",
		}),
		inProgress: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "grocery_pricer",
			Name:      "run_in_progress",
			Help:      "1 while a pricing run holds the lock.",
		}),
	}
}

func (m *Metrics) runStarted() {
	if m == nil {
		return
	}
	m.inProgress.Set(1)
}

func (m *Metrics) runFinished(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.inProgress.Set(0)
	m.runs.WithLabelValues(outcome).Inc()
	m.duration.Observe(d.Seconds())
}

func (m *Metrics) rejected() {
	if m == nil {
		return
	}
	m.runs.WithLabelValues("rejected").Inc()
}

func (m *Metrics) rowWritten(complete bool) {
	if m == nil {
		return
	}
	label := "false"
	if complete {
		label = "true"
	}
	m.rows.WithLabelValues(label).Inc()
}

func (m *Metrics) pairFailed() {
	if m == nil {
		return
	}
	m.pairErrors.Inc()
}

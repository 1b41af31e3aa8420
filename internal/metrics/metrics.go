package metrics

import (
	"time"

	"github.com/mikey/sms-risk-detector/internal/core"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "risk_detector"

// Recorder implements core.MetricsRecorder on Prometheus collectors
type Recorder struct {
	verdicts        *prometheus.CounterVec
	cacheHits       prometheus.Counter
	latency         *prometheus.HistogramVec
	trainings       prometheus.Counter
	trainingSeconds prometheus.Gauge
	documents       prometheus.Gauge
	features        prometheus.Gauge
}

// NewRecorder creates the collectors and registers them with reg
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verdicts_total",
			Help:      "Messages scored, by risk tier and result source.",
		}, []string{"tier", "source"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Verdicts served from the verdict cache.",
		}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Time spent producing a verdict.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
		}, []string{"source"}),
		trainings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trainings_total",
			Help:      "Successful training runs.",
		}),
		trainingSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_training_duration_seconds",
			Help:      "Duration of the most recent training run.",
		}),
		documents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_documents",
			Help:      "Training documents in the current model.",
		}),
		features: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_features",
			Help:      "Vocabulary size of the current model.",
		}),
	}

	for _, c := range []prometheus.Collector{
		r.verdicts, r.cacheHits, r.latency, r.trainings, r.trainingSeconds, r.documents, r.features,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ObserveVerdict counts a verdict and its latency
func (r *Recorder) ObserveVerdict(tier core.RiskTier, source string, elapsed time.Duration) {
	r.verdicts.WithLabelValues(tier.String(), source).Inc()
	r.latency.WithLabelValues(source).Observe(elapsed.Seconds())
}

// ObserveTraining records a finished training run
func (r *Recorder) ObserveTraining(documents, features int, elapsed time.Duration) {
	r.trainings.Inc()
	r.trainingSeconds.Set(elapsed.Seconds())
	r.documents.Set(float64(documents))
	r.features.Set(float64(features))
}

// ObserveCacheHit counts a verdict cache hit
func (r *Recorder) ObserveCacheHit() {
	r.cacheHits.Inc()
}

package lexgen

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Compilation stages, used as the "stage" label and in log records.
const (
	StageRules    = "rules"
	StageNFA      = "nfa"
	StageDFA      = "dfa"
	StageMinimize = "minimize"
	StageTables   = "tables"
)

// Metrics holds the collectors of one registry. A nil *Metrics records
// nothing.
type Metrics struct {
	compilations    *prometheus.CounterVec
	stageSeconds    *prometheus.HistogramVec
	nfaStates       prometheus.Gauge
	dfaStates       prometheus.Gauge
	minimizedStates prometheus.Gauge
	classes         prometheus.Gauge
	backupStates    prometheus.Gauge
}

// NewMetrics registers the compilation collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		compilations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lexgen",
			Name:      "compilations_total",
			Help:      "Compilations by result.",
		}, []string{"result"}),
		stageSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lexgen",
			Name:      "stage_seconds",
			Help:      "Time spent in each compilation stage.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"stage"}),
		nfaStates: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "lexgen",
			Name:      "nfa_states",
			Help:      "NFA states of the last compilation.",
		}),
		dfaStates: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "lexgen",
			Name:      "dfa_states",
			Help:      "DFA states of the last compilation before minimization.",
		}),
		minimizedStates: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "lexgen",
			Name:      "minimized_states",
			Help:      "DFA states of the last compilation after minimization.",
		}),
		classes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "lexgen",
			Name:      "equivalence_classes",
			Help:      "Symbols of the last compiled alphabet.",
		}),
		backupStates: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "lexgen",
			Name:      "backup_states",
			Help:      "Accept states needing backup in the last compilation.",
		}),
	}
}

func (m *Metrics) observeStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageSeconds.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) compiled(result string) {
	if m == nil {
		return
	}
	m.compilations.WithLabelValues(result).Inc()
}

func (m *Metrics) record(s *Summary) {
	if m == nil {
		return
	}
	m.nfaStates.Set(float64(s.NFAStates))
	m.dfaStates.Set(float64(s.DFAStates))
	m.minimizedStates.Set(float64(s.MinimizedStates))
	m.classes.Set(float64(s.Symbols))
	m.backupStates.Set(float64(s.BackupStates))
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/JonMunkholm/indicators/internal/core"
)

const (
	outcomeValid       = "valid"
	outcomeQuarantined = "quarantined"
	resultSuccess      = "success"
	resultFailure      = "failure"
)

// Metrics holds the import pipeline metrics. It implements core.Observer.
type Metrics struct {
	ImportRows      *prometheus.CounterVec
	Imports         *prometheus.CounterVec
	PromotedRecords prometheus.Counter
	DivisionsLoaded prometheus.Gauge
	DivisionReloads *prometheus.CounterVec
}

var _ core.Observer = (*Metrics)(nil)

// New creates the metrics and registers them with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		ImportRows: f.NewCounterVec(prometheus.CounterOpts{
			Name: "indicators_import_rows_total",
			Help: "Imported rows by outcome",
		}, []string{"outcome"}),
		Imports: f.NewCounterVec(prometheus.CounterOpts{
			Name: "indicators_imports_total",
			Help: "Finished imports by result",
		}, []string{"result"}),
		PromotedRecords: f.NewCounter(prometheus.CounterOpts{
			Name: "indicators_promoted_total",
			Help: "Quarantined records promoted to the valid store",
		}),
		DivisionsLoaded: f.NewGauge(prometheus.GaugeOpts{
			Name: "indicators_divisions_loaded",
			Help: "Number of divisions in the current list",
		}),
		DivisionReloads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "indicators_division_reloads_total",
			Help: "Division list reloads by result",
		}, []string{"result"}),
	}
}

// ImportFinished records one import. Failed imports wrote nothing, so only
// the failure is counted.
func (m *Metrics) ImportFinished(valid, quarantined int, err error) {
	if err != nil {
		m.Imports.WithLabelValues(resultFailure).Inc()
		return
	}
	m.Imports.WithLabelValues(resultSuccess).Inc()
	m.ImportRows.WithLabelValues(outcomeValid).Add(float64(valid))
	m.ImportRows.WithLabelValues(outcomeQuarantined).Add(float64(quarantined))
}

// Promoted records a promotion batch.
func (m *Metrics) Promoted(n int, err error) {
	if err != nil {
		return
	}
	m.PromotedRecords.Add(float64(n))
}

// DivisionReload records a division list reload. It matches
// division.ReloadHook.
func (m *Metrics) DivisionReload(count int, err error) {
	if err != nil {
		m.DivisionReloads.WithLabelValues(resultFailure).Inc()
		return
	}
	m.DivisionReloads.WithLabelValues(resultSuccess).Inc()
	m.DivisionsLoaded.Set(float64(count))
}

// Package metrics объявляет prometheus-метрики движка жизненного цикла.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// StatusTransitionsTotal считает переходы статусов абонементов.
	StatusTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "srsapp_status_transitions_total",
			Help: "Total number of subscription status transitions",
		},
		[]string{"from", "to"},
	)

	// SweepRunsTotal считает запуски пакетной переоценки статусов.
	SweepRunsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "srsapp_sweep_runs_total",
			Help: "Total number of lifecycle sweep runs",
		},
	)

	// SweepFailuresTotal считает абонентов, чей статус не удалось сохранить
	// во время пакетной переоценки.
	SweepFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "srsapp_sweep_failures_total",
			Help: "Total number of subscriber updates failed during sweeps",
		},
	)
)

// InitMetrics регистрирует метрики в глобальном реестре prometheus.
func InitMetrics() {
	prometheus.MustRegister(StatusTransitionsTotal)
	prometheus.MustRegister(SweepRunsTotal)
	prometheus.MustRegister(SweepFailuresTotal)
}

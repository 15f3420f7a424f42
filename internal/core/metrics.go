package core

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	EntriesCreated *prometheus.CounterVec
	EntriesDeleted prometheus.Counter
	EntryQueries   *prometheus.CounterVec
}

// NewMetrics creates the diary counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EntriesCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diary_entries_created_total",
				Help: "Total number of entry creation attempts by result",
			},
			[]string{"result"},
		),
		EntriesDeleted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "diary_entries_deleted_total",
				Help: "Total number of deleted entries",
			},
		),
		EntryQueries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diary_entry_queries_total",
				Help: "Total number of entry listings by filter mode",
			},
			[]string{"filter"},
		),
	}

	reg.MustRegister(m.EntriesCreated, m.EntriesDeleted, m.EntryQueries)
	return m
}

func (m *Metrics) created(result string) {
	if m == nil {
		return
	}
	m.EntriesCreated.WithLabelValues(result).Inc()
}

func (m *Metrics) deleted() {
	if m == nil {
		return
	}
	m.EntriesDeleted.Inc()
}

func (m *Metrics) queried(mode FilterMode) {
	if m == nil {
		return
	}
	m.EntryQueries.WithLabelValues(string(mode)).Inc()
}

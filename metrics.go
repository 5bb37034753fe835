package bus2sqlite

import (
	"github.com/prometheus/client_golang/prometheus"
	"time"
)

// Metrics describes one pipeline run in the node_exporter textfile format.
type Metrics struct {
	Registry *prometheus.Registry

	RowsLoaded    *prometheus.GaugeVec
	StopsClipped  prometheus.Gauge
	DanglingLinks prometheus.Gauge
	PhaseDuration *prometheus.GaugeVec
	LastSuccess   prometheus.Gauge
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		RowsLoaded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bus2sqlite_rows_loaded",
			Help: "Rows written to each snapshot table by the last run",
		}, []string{"table"}),
		StopsClipped: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bus2sqlite_stops_clipped",
			Help: "Stops dropped by the clip feature in the last run",
		}),
		DanglingLinks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bus2sqlite_dangling_route_links",
			Help: "Route links referencing unknown stops in the last run",
		}),
		PhaseDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bus2sqlite_phase_duration_seconds",
			Help: "Wall time of each pipeline phase in the last run",
		}, []string{"phase"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bus2sqlite_last_success_timestamp_seconds",
			Help: "Unix time the last snapshot was published",
		}),
	}

	registry.MustRegister(m.RowsLoaded, m.StopsClipped, m.DanglingLinks, m.PhaseDuration, m.LastSuccess)
	return m
}

func (m *Metrics) observeBuild(stats *BuildStats) {
	m.RowsLoaded.WithLabelValues(stopsTable.Name).Set(float64(stats.Stops))
	m.RowsLoaded.WithLabelValues(routesTable.Name).Set(float64(stats.Routes))
	m.StopsClipped.Set(float64(stats.Clipped))
	m.DanglingLinks.Set(float64(stats.DanglingLinks))
}

func (m *Metrics) observePhase(phase string, start time.Time) {
	m.PhaseDuration.WithLabelValues(phase).Set(time.Since(start).Seconds())
}

// WriteTextfile writes the metrics atomically to path.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}

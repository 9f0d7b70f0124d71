package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms and gauges of the map
// viewer. It implements mapview.Observer.
type Metrics struct {
	ViewsMounted     prometheus.Gauge
	RegionSelections prometheus.Counter
	ZoomRelocks      prometheus.Counter
	MarkerCounts     prometheus.Histogram
	DetailRequests   prometheus.Counter
}

// NewMetrics creates the viewer metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ViewsMounted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lakemap",
			Name:      "views_mounted",
			Help:      "Map views currently mounted.",
		}),
		RegionSelections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lakemap",
			Name:      "region_selections_total",
			Help:      "Regions selected by a click.",
		}),
		ZoomRelocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lakemap",
			Name:      "zoom_relocks_total",
			Help:      "Times the zoom floor cleared the selection and recentered the map.",
		}),
		MarkerCounts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lakemap",
			Name:      "markers_synced",
			Help:      "Marker count after each marker set rebuild.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		}),
		DetailRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lakemap",
			Name:      "detail_requests_total",
			Help:      "Marker clicks that requested an observation summary.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.ViewsMounted,
			m.RegionSelections,
			m.ZoomRelocks,
			m.MarkerCounts,
			m.DetailRequests,
		)
	}
	return m
}

func (m *Metrics) Mounted()            { m.ViewsMounted.Inc() }
func (m *Metrics) Unmounted()          { m.ViewsMounted.Dec() }
func (m *Metrics) RegionSelected()     { m.RegionSelections.Inc() }
func (m *Metrics) Relocked()           { m.ZoomRelocks.Inc() }
func (m *Metrics) MarkersSynced(n int) { m.MarkerCounts.Observe(float64(n)) }
func (m *Metrics) DetailRequested()    { m.DetailRequests.Inc() }

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ScanMetrics records alert scan outcomes.
type ScanMetrics struct {
	Scans           *prometheus.CounterVec
	AlertsTriggered prometheus.Counter
	Notifications   *prometheus.CounterVec
	Alerts          *prometheus.GaugeVec
	Subscribers     prometheus.Gauge
}

func NewScanMetrics(reg prometheus.Registerer) *ScanMetrics {
	m := &ScanMetrics{
		Scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "scans_total",
			Help:      "Alert scans by result (completed, aborted)",
		}, []string{"result"}),
		AlertsTriggered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "triggered_total",
			Help:      "Alerts that crossed their target",
		}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "notifications_total",
			Help:      "Alert notifications by delivery result (sent, failed)",
		}, []string{"result"}),
		Alerts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "stored",
			Help:      "Alerts held in memory by state (armed, triggered)",
		}, []string{"state"}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "subscribers",
			Help:      "Subscribers holding at least one alert",
		}),
	}

	reg.MustRegister(m.Scans, m.AlertsTriggered, m.Notifications, m.Alerts, m.Subscribers)
	return m
}

func (m *ScanMetrics) ScanAborted() {
	m.Scans.WithLabelValues("aborted").Inc()
}

func (m *ScanMetrics) ScanCompleted(triggered, delivered, failed int) {
	m.Scans.WithLabelValues("completed").Inc()
	m.AlertsTriggered.Add(float64(triggered))
	m.Notifications.WithLabelValues("sent").Add(float64(delivered))
	m.Notifications.WithLabelValues("failed").Add(float64(failed))
}

func (m *ScanMetrics) AlertsStored(subscribers, alerts, triggered int) {
	m.Subscribers.Set(float64(subscribers))
	m.Alerts.WithLabelValues("armed").Set(float64(alerts - triggered))
	m.Alerts.WithLabelValues("triggered").Set(float64(triggered))
}

package metrics

import "github.com/prometheus/client_golang/prometheus"

// OnboardingMetrics exposes counters for the record synthesis pipeline.
type OnboardingMetrics struct {
	upsertsTotal       *prometheus.CounterVec
	droppedFieldsTotal *prometheus.CounterVec
}

func NewOnboardingMetrics(reg prometheus.Registerer) *OnboardingMetrics {
	m := &OnboardingMetrics{
		upsertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "onboarding",
			Subsystem: "records",
			Name:      "upserts_total",
			Help:      "Total record upserts by path (insert/update) and outcome",
		}, []string{"path", "status"}),
		droppedFieldsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "onboarding",
			Subsystem: "records",
			Name:      "dropped_fields_total",
			Help:      "Answers degraded to a dropped field during synthesis",
		}, []string{"field", "reason"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.upsertsTotal, m.droppedFieldsTotal)
	return m
}

func (m *OnboardingMetrics) ObserveUpsert(path, status string) {
	if m == nil {
		return
	}
	m.upsertsTotal.WithLabelValues(path, status).Inc()
}

func (m *OnboardingMetrics) ObserveDroppedField(key, reason string) {
	if m == nil {
		return
	}
	m.droppedFieldsTotal.WithLabelValues(key, reason).Inc()
}

// LeadMetrics counts lead intake and the marketing webhook fan-out.
type LeadMetrics struct {
	leadsTotal    *prometheus.CounterVec
	webhooksTotal *prometheus.CounterVec
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		leadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "onboarding",
			Subsystem: "leads",
			Name:      "intake_total",
			Help:      "Total lead intake requests by path (insert/update) and outcome",
		}, []string{"path", "status"}),
		webhooksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "onboarding",
			Subsystem: "leads",
			Name:      "marketing_webhook_total",
			Help:      "Marketing webhook deliveries by outcome",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.leadsTotal, m.webhooksTotal)
	return m
}

func (m *LeadMetrics) ObserveLead(path, status string) {
	if m == nil {
		return
	}
	m.leadsTotal.WithLabelValues(path, status).Inc()
}

func (m *LeadMetrics) ObserveWebhook(status string) {
	if m == nil {
		return
	}
	m.webhooksTotal.WithLabelValues(status).Inc()
}

package ideas

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts pipeline activity. A nil *Metrics records nothing.
type Metrics struct {
	modelAttempts  *prometheus.CounterVec
	posts          *prometheus.CounterVec
	ideasGenerated prometheus.Counter
	exports        *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		modelAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reddit_ideas",
			Name:      "model_attempts_total",
			Help:      "Model invocation attempts by model and outcome.",
		}, []string{"model", "outcome"}),
		posts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reddit_ideas",
			Name:      "posts_processed_total",
			Help:      "Posts run through the pipeline by status.",
		}, []string{"status"}),
		ideasGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reddit_ideas",
			Name:      "ideas_generated_total",
			Help:      "Structured ideas parsed from model output.",
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reddit_ideas",
			Name:      "exports_total",
			Help:      "Spreadsheet export calls by status.",
		}, []string{"status"}),
	}
	reg.MustRegister(m.modelAttempts, m.posts, m.ideasGenerated, m.exports)
	return m
}

func (m *Metrics) modelAttempt(model Model, kind outcomeKind) {
	if m == nil {
		return
	}
	m.modelAttempts.WithLabelValues(string(model), kind.String()).Inc()
}

func (m *Metrics) post(ok bool, ideas int) {
	if m == nil {
		return
	}
	if !ok {
		m.posts.WithLabelValues("failed").Inc()
		return
	}
	m.posts.WithLabelValues("ok").Inc()
	m.ideasGenerated.Add(float64(ideas))
}

func (m *Metrics) export(ok bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "failed"
	}
	m.exports.WithLabelValues(status).Inc()
}

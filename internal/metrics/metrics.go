// Package metrics exposes Prometheus instruments for the chat assistant.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters/histograms for chat flows.
type ChatMetrics struct {
	selections        *prometheus.CounterVec
	languageFallbacks prometheus.Counter
	messages          *prometheus.CounterVec
	replyLatency      prometheus.Histogram
	pendingReplies    prometheus.Gauge
	sessions          *prometheus.CounterVec
	droppedReplies    prometheus.Counter
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "varunnetra",
			Subsystem: "chat",
			Name:      "selections_total",
			Help:      "Response selections by matched rule and language",
		}, []string{"rule", "language"}),
		languageFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "varunnetra",
			Subsystem: "chat",
			Name:      "language_fallbacks_total",
			Help:      "Selections whose requested language was unsupported",
		}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "varunnetra",
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "Messages appended to conversation logs",
		}, []string{"origin"}),
		replyLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "varunnetra",
			Subsystem: "chat",
			Name:      "reply_latency_seconds",
			Help:      "Time from submission to the assistant reply being appended",
			Buckets:   []float64{0.25, 0.5, 1, 1.5, 2, 3, 5, 10},
		}),
		pendingReplies: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "varunnetra",
			Subsystem: "chat",
			Name:      "pending_replies",
			Help:      "Assistant replies scheduled but not yet appended",
		}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "varunnetra",
			Subsystem: "chat",
			Name:      "sessions_total",
			Help:      "Chat session lifecycle events",
		}, []string{"event"}),
		droppedReplies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "varunnetra",
			Subsystem: "chat",
			Name:      "dropped_replies_total",
			Help:      "Replies discarded because their session ended first",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.selections, m.languageFallbacks, m.messages,
		m.replyLatency, m.pendingReplies, m.sessions, m.droppedReplies,
	)
	return m
}

func (m *ChatMetrics) ObserveSelection(rule, language string, languageFallback bool) {
	if m == nil {
		return
	}
	m.selections.WithLabelValues(rule, language).Inc()
	if languageFallback {
		m.languageFallbacks.Inc()
	}
}

func (m *ChatMetrics) ObserveMessage(origin string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(origin).Inc()
}

func (m *ChatMetrics) ObserveReplyLatency(seconds float64) {
	if m == nil {
		return
	}
	m.replyLatency.Observe(seconds)
}

// ReplyScheduled and ReplyFinished bracket one pending reply.
func (m *ChatMetrics) ReplyScheduled() {
	if m == nil {
		return
	}
	m.pendingReplies.Inc()
}

func (m *ChatMetrics) ReplyFinished() {
	if m == nil {
		return
	}
	m.pendingReplies.Dec()
}

func (m *ChatMetrics) ReplyDropped() {
	if m == nil {
		return
	}
	m.droppedReplies.Inc()
}

// ObserveSession counts "started", "ended" and "expired" events.
func (m *ChatMetrics) ObserveSession(event string) {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues(event).Inc()
}

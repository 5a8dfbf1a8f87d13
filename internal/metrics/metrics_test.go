package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestChatMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewChatMetrics(reg)

	m.ObserveSelection("stomach", "en", false)
	m.ObserveSelection("stomach", "en", true)
	m.ObserveMessage("user")
	m.ObserveReplyLatency(1.5)
	m.ReplyScheduled()
	m.ReplyScheduled()
	m.ReplyFinished()
	m.ReplyDropped()
	m.ObserveSession("started")

	if got := testutil.ToFloat64(m.selections.WithLabelValues("stomach", "en")); got != 2 {
		t.Errorf("selections = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.languageFallbacks); got != 1 {
		t.Errorf("language fallbacks = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.pendingReplies); got != 1 {
		t.Errorf("pending = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.droppedReplies); got != 1 {
		t.Errorf("dropped = %v, want 1", got)
	}
}

func TestChatMetricsDefaultRegistry(t *testing.T) {
	reg := prometheus.DefaultRegisterer
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	defer func() { prometheus.DefaultRegisterer = reg }()

	m := NewChatMetrics(nil)
	m.ObserveMessage("assistant")
}

func TestChatMetricsNilSafe(t *testing.T) {
	var m *ChatMetrics
	m.ObserveSelection("default", "hi", true)
	m.ObserveMessage("user")
	m.ObserveReplyLatency(0.1)
	m.ReplyScheduled()
	m.ReplyFinished()
	m.ReplyDropped()
	m.ObserveSession("ended")
}

package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubDeliversToSessionSubscribers(t *testing.T) {
	h := NewHub(10)
	sub, missed := h.Subscribe("s1", 0)
	defer sub.Close()
	require.Empty(t, missed)

	other, _ := h.Subscribe("s2", 0)
	defer other.Close()

	ev := h.Publish("s1", Event{Type: EventTyping, Typing: true})
	assert.Equal(t, int64(1), ev.ID)

	got := <-sub.Events()
	assert.Equal(t, ev.ID, got.ID)
	assert.Equal(t, "s1", got.SessionID)
	assert.True(t, got.Typing)

	select {
	case e := <-other.Events():
		t.Fatalf("unexpected event on other session: %+v", e)
	default:
	}
}

func TestHubReplayAfterLastEventID(t *testing.T) {
	h := NewHub(3)
	for i := 0; i < 5; i++ {
		h.Publish("s1", Event{Type: EventMessage})
	}

	_, missed := h.Subscribe("s1", 3)
	require.Len(t, missed, 2)
	assert.Equal(t, int64(4), missed[0].ID)
	assert.Equal(t, int64(5), missed[1].ID)

	// Only the last three are retained.
	_, missed = h.Subscribe("s1", 1)
	require.Len(t, missed, 3)
	assert.Equal(t, int64(3), missed[0].ID)

	// A fresh subscriber replays nothing.
	_, missed = h.Subscribe("s1", 0)
	assert.Empty(t, missed)
}

func TestHubEventIDsIncreaseAcrossSessions(t *testing.T) {
	h := NewHub(10)
	a := h.Publish("a", Event{Type: EventTyping})
	b := h.Publish("b", Event{Type: EventTyping})
	assert.Greater(t, b.ID, a.ID)
	assert.Equal(t, b.ID, h.LastEventID())
}

func TestHubForgetClosesSubscribers(t *testing.T) {
	h := NewHub(10)
	sub, _ := h.Subscribe("s1", 0)
	h.Publish("s1", Event{Type: EventMessage})

	h.Forget("s1")

	var types []EventType
	for ev := range sub.Events() {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []EventType{EventMessage, EventSessionEnded}, types)
	assert.Equal(t, 0, h.Subscribers("s1"))

	_, missed := h.Subscribe("s1", 1)
	assert.Empty(t, missed)

	// A late typing event does not reopen the buffer.
	h.Publish("s1", Event{Type: EventTyping})
	_, missed = h.Subscribe("s1", 1)
	assert.Empty(t, missed)
}

func TestHubTypingNeedsOpenBuffer(t *testing.T) {
	h := NewHub(10)
	h.Publish("s1", Event{Type: EventTyping})
	assert.NotContains(t, h.replay, "s1")

	h.Publish("s1", Event{Type: EventMessage})
	h.Publish("s1", Event{Type: EventTyping})
	_, missed := h.Subscribe("s1", 1)
	require.Len(t, missed, 2)
	assert.Equal(t, EventMessage, missed[0].Type)
	assert.Equal(t, EventTyping, missed[1].Type)
}

func TestHubDisconnectsSlowSubscriber(t *testing.T) {
	h := NewHub(1000)
	sub, _ := h.Subscribe("s1", 0)
	for i := 0; i < subscriberBuffer+1; i++ {
		h.Publish("s1", Event{Type: EventTyping})
	}

	n := 0
	for range sub.Events() {
		n++
	}
	assert.Equal(t, subscriberBuffer, n)
	assert.Equal(t, 0, h.Subscribers("s1"))

	// Close after eviction is harmless.
	sub.Close()
}

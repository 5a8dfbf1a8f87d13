package chat

import (
	"container/list"
	"log/slog"
	"sync"
	"time"
)

// subscriberBuffer is how many events a subscriber may lag before it is cut off.
// A cut-off client reconnects with its last event ID and is served from replay.
const subscriberBuffer = 64

// Subscription receives one session's events.
type Subscription struct {
	id        int64
	sessionID string
	events    chan Event
	hub       *Hub
	closeOnce sync.Once
}

// Events is closed when the subscription ends for any reason.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Close detaches the subscription from its hub.
func (s *Subscription) Close() {
	s.hub.unsubscribe(s)
}

func (s *Subscription) closeChannel() {
	s.closeOnce.Do(func() { close(s.events) })
}

// Hub fans session events out to live subscribers and keeps a bounded,
// per-session replay buffer so reconnecting clients can catch up.
// Event IDs are global and strictly increasing.
type Hub struct {
	mu        sync.Mutex
	lastID    int64
	nextSubID int64
	maxReplay int
	replay    map[string]*list.List
	subs      map[string]map[int64]*Subscription
}

// NewHub creates a hub keeping up to maxReplay events per session.
func NewHub(maxReplay int) *Hub {
	if maxReplay <= 0 {
		maxReplay = 100 // Default: keep last 100 events per session
	}
	return &Hub{
		maxReplay: maxReplay,
		replay:    make(map[string]*list.List),
		subs:      make(map[string]map[int64]*Subscription),
	}
}

// Publish stamps ev with the next event ID, buffers it for replay and
// delivers it to every live subscriber of the session.
func (h *Hub) Publish(sessionID string, ev Event) Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastID++
	ev.ID = h.lastID
	ev.SessionID = sessionID
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	// Only message events open a replay buffer, so late typing events of a
	// forgotten session do not resurrect it.
	l, ok := h.replay[sessionID]
	if !ok && ev.Type == EventMessage {
		l = list.New()
		h.replay[sessionID] = l
	}
	if l != nil {
		l.PushBack(ev)
		// Evict oldest events only within this session's buffer.
		for l.Len() > h.maxReplay {
			l.Remove(l.Front())
		}
	}

	for id, sub := range h.subs[sessionID] {
		select {
		case sub.events <- ev:
		default:
			slog.Warn("chat subscriber too slow, disconnecting",
				"session_id", sessionID,
				"subscriber_id", id,
				"event_id", ev.ID,
			)
			delete(h.subs[sessionID], id)
			sub.closeChannel()
		}
	}
	return ev
}

// Subscribe attaches to a session's live stream. Buffered events with an ID
// greater than afterID are returned for replay; there is no gap or overlap
// between them and the first live event.
func (h *Hub) Subscribe(sessionID string, afterID int64) (*Subscription, []Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var missed []Event
	if l, ok := h.replay[sessionID]; ok && afterID > 0 {
		for e := l.Front(); e != nil; e = e.Next() {
			if ev := e.Value.(Event); ev.ID > afterID {
				missed = append(missed, ev)
			}
		}
	}

	h.nextSubID++
	sub := &Subscription{
		id:        h.nextSubID,
		sessionID: sessionID,
		events:    make(chan Event, subscriberBuffer),
		hub:       h,
	}
	if _, ok := h.subs[sessionID]; !ok {
		h.subs[sessionID] = make(map[int64]*Subscription)
	}
	h.subs[sessionID][sub.id] = sub
	return sub, missed
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.subs[sub.sessionID]; ok {
		delete(subs, sub.id)
		if len(subs) == 0 {
			delete(h.subs, sub.sessionID)
		}
	}
	sub.closeChannel()
}

// Forget publishes a final session_ended event, closes every subscription of
// the session and drops its replay buffer.
func (h *Hub) Forget(sessionID string) {
	h.Publish(sessionID, Event{Type: EventSessionEnded})

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs[sessionID] {
		sub.closeChannel()
	}
	delete(h.subs, sessionID)
	delete(h.replay, sessionID)
}

// LastEventID returns the most recently assigned event ID.
func (h *Hub) LastEventID() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastID
}

// Subscribers returns the number of live subscribers of a session.
func (h *Hub) Subscribers(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[sessionID])
}

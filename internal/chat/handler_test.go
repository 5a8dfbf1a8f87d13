package chat

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/navyasetu/varunnetra/internal/config"
	"github.com/navyasetu/varunnetra/internal/domain"
	"github.com/navyasetu/varunnetra/internal/identity"
	"github.com/navyasetu/varunnetra/internal/respond"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, svc *Service, userID string) http.Handler {
	t.Helper()
	h := NewHandler(svc, svc.repo, config.SSEConfig{KeepaliveInterval: time.Hour, RetryDelay: time.Second})
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(identity.WithUser(req.Context(), userID)))
		})
	})
	h.RegisterRoutes(r, nil)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHandleRespond(t *testing.T) {
	svc, _ := newTestService(t, config.ChatConfig{})
	router := newTestRouter(t, svc, testUser)

	w := do(t, router, http.MethodPost, "/api/chat/respond", `{"utterance":"Is there ARSENIC here?","language":"fr"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp RespondResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, respond.RuleHeavyMetal, resp.RuleID)
	assert.Equal(t, "en", resp.Language)
	assert.True(t, resp.LanguageFallback)
	assert.False(t, resp.Fallback)
}

func TestHandleRespondRejectsBadBody(t *testing.T) {
	svc, _ := newTestService(t, config.ChatConfig{})
	router := newTestRouter(t, svc, testUser)

	w := do(t, router, http.MethodPost, "/api/chat/respond", `{"utterance":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	long := strings.Repeat("a", 8001)
	w = do(t, router, http.MethodPost, "/api/chat/respond", `{"utterance":"`+long+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Utterance")
}

func TestHandleSessionLifecycle(t *testing.T) {
	svc, _ := newTestService(t, config.ChatConfig{})
	router := newTestRouter(t, svc, testUser)

	w := do(t, router, http.MethodPost, "/api/chat/sessions", `{"language":"hi"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var started Transcript
	require.NoError(t, json.NewDecoder(w.Body).Decode(&started))
	require.Len(t, started.Messages, 1)
	assert.Equal(t, "hi", started.Session.Language)
	base := "/api/chat/sessions/" + started.Session.ID

	w = do(t, router, http.MethodPost, base+"/messages", `{"content":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, base+"/messages", `{"content":"मुझे सिरदर्द है"}`)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	w = do(t, router, http.MethodPost, base+"/quick-actions/teleport", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	tr := waitForMessages(t, svc, started.Session.ID, 3)
	assert.Equal(t, respond.Select("सिरदर्द", "hi"), tr.Messages[2].Content)

	w = do(t, router, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got Transcript
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Len(t, got.Messages, 3)

	w = do(t, router, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, router, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleStartSessionUsesStoredLanguage(t *testing.T) {
	svc, _ := newTestService(t, config.ChatConfig{})
	ctx := context.Background()
	require.NoError(t, svc.repo.UpsertUser(ctx, &domain.User{UserID: testUser, Username: "anon-89abcdef"}))
	require.NoError(t, svc.repo.UpdateAppState(ctx, testUser, "hi", true, "chatbot"))
	router := newTestRouter(t, svc, testUser)

	w := do(t, router, http.MethodPost, "/api/chat/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var started Transcript
	require.NoError(t, json.NewDecoder(w.Body).Decode(&started))
	assert.Equal(t, "hi", started.Session.Language)
}

func TestHandleOtherUsersSessionIsNotFound(t *testing.T) {
	svc, _ := newTestService(t, config.ChatConfig{})
	tr, err := svc.StartSession(context.Background(), testUser, "en")
	require.NoError(t, err)

	router := newTestRouter(t, svc, "anon_ffffffffffffffffffffffffffffffff")
	w := do(t, router, http.MethodPost, "/api/chat/sessions/"+tr.Session.ID+"/messages", `{"content":"hello"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleStreamReplaysAndFollows(t *testing.T) {
	svc, _ := newTestService(t, config.ChatConfig{}, WithReplyDelay(func() time.Duration { return 20 * time.Millisecond }))
	srv := httptest.NewServer(newTestRouter(t, svc, testUser))
	defer srv.Close()

	tr, err := svc.StartSession(context.Background(), testUser, "en")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/chat/sessions/"+tr.Session.ID+"/stream", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := make(chan string, 16)
	go func() {
		defer close(events)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if name, ok := strings.CutPrefix(scanner.Text(), "event: "); ok {
				events <- name
			}
		}
	}()

	next := func() string {
		select {
		case name, ok := <-events:
			require.True(t, ok, "stream closed early")
			return name
		case <-ctx.Done():
			t.Fatal("timed out waiting for SSE event")
			return ""
		}
	}

	require.Equal(t, "connected", next())

	_, err = svc.Submit(context.Background(), testUser, tr.Session.ID, "water quality report", "")
	require.NoError(t, err)
	assert.Equal(t, "message", next())
	assert.Equal(t, "typing", next())
	assert.Equal(t, "message", next())
	assert.Equal(t, "typing", next())

	require.NoError(t, svc.EndSession(context.Background(), testUser, tr.Session.ID))
	assert.Equal(t, "session_ended", next())
	_, ok := <-events
	assert.False(t, ok, "stream should end with the session")
}

func TestHandleStreamReplayAfterLastEventID(t *testing.T) {
	svc, hub := newTestService(t, config.ChatConfig{})
	router := newTestRouter(t, svc, testUser)

	tr, err := svc.StartSession(context.Background(), testUser, "en")
	require.NoError(t, err)
	first := hub.LastEventID()
	_, err = svc.Submit(context.Background(), testUser, tr.Session.ID, "emergency", "")
	require.NoError(t, err)
	waitForMessages(t, svc, tr.Session.ID, 3)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/chat/sessions/"+tr.Session.ID+"/stream", nil).WithContext(ctx)
	req.Header.Set("Last-Event-ID", strconv.FormatInt(first, 10))
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		router.ServeHTTP(w, req)
		close(done)
	}()
	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "retry: 1000\n\n"))
	// user message, typing on, assistant reply, typing off
	assert.Equal(t, 2, strings.Count(body, "event: message\n"))
	assert.Equal(t, 2, strings.Count(body, "event: typing\n"))
	assert.Contains(t, body, "id: "+strconv.FormatInt(first+1, 10)+"\n")
	assert.NotContains(t, body, "id: "+strconv.FormatInt(first, 10)+"\n")
}

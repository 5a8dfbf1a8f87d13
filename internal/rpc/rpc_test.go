package rpc

import (
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/navyasetu/varunnetra/internal/i18n"
	"github.com/navyasetu/varunnetra/internal/respond"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type recordingObserver struct {
	mu    sync.Mutex
	rules []string
}

func (o *recordingObserver) ObserveSelection(rule, _ string, _ bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rules = append(o.rules, rule)
}

func startServer(t *testing.T, obs Observer) *bufconn.Listener {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer(grpc.UnaryInterceptor(LoggingInterceptor(nil)))
	Register(gs, NewServer(nil, obs))
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)
	return lis
}

func newTestClient(t *testing.T, lis *bufconn.Listener) *Client {
	t.Helper()
	cfg := DefaultClientConfig("passthrough:///bufnet")
	c, err := NewClient(cfg, nil, grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestClientRespond(t *testing.T) {
	obs := &recordingObserver{}
	c := newTestClient(t, startServer(t, obs))
	ctx := context.Background()

	tests := []struct {
		name      string
		utterance string
		lang      string
		rule      string
		langOut   i18n.Tag
		fallback  bool
		langFall  bool
	}{
		{"keyword english", "I have a bad headache", "en", respond.RuleHeadache, i18n.English, false, false},
		{"keyword hindi", "मुझे सिरदर्द है", "hi", respond.RuleHeadache, i18n.Hindi, false, false},
		{"no match", "hello there", "en", respond.RuleDefault, i18n.English, true, false},
		{"unsupported language", "ARSENIC in my well", "ta", respond.RuleHeavyMetal, i18n.English, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := c.Respond(ctx, tt.utterance, tt.lang)
			require.NoError(t, err)
			assert.Equal(t, tt.rule, m.RuleID)
			assert.Equal(t, tt.langOut, m.Language)
			assert.Equal(t, tt.fallback, m.Fallback)
			assert.Equal(t, tt.langFall, m.LanguageFallback)
			assert.Equal(t, respond.Select(tt.utterance, tt.lang), m.Text)
		})
	}

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Len(t, obs.rules, len(tests))
}

func TestServerRejectsOversizedUtterance(t *testing.T) {
	c := newTestClient(t, startServer(t, nil))

	_, err := c.Respond(context.Background(), strings.Repeat("a", maxUtteranceLength+1), "en")
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestHealthServing(t *testing.T) {
	c := newTestClient(t, startServer(t, nil))

	st, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, st)
}

func TestNewClientFailsFast(t *testing.T) {
	cfg := DefaultClientConfig("passthrough:///nowhere")
	cfg.ConnectTimeout = 200 * time.Millisecond

	start := time.Now()
	_, err := NewClient(cfg, nil, grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
		return nil, net.ErrClosed
	}))
	require.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestDecodeMatchRejectsEmpty(t *testing.T) {
	s, err := structpb.NewStruct(map[string]any{"language": "en"})
	require.NoError(t, err)

	_, err = decodeMatch(s)
	assert.ErrorIs(t, err, errMalformedResponse)
}

package birdie

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// sleepRecorder replaces the backoff sleep and records each wait.
type sleepRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.waits = append(r.waits, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *sleepRecorder) recorded() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.waits...)
}

func newTestSession(t *testing.T, handler http.HandlerFunc, opts ...Option) (*httptest.Server, *Session, *sleepRecorder) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	s, err := NewSession(append([]Option{WithEndpoint(srv.URL), WithRetries(2)}, opts...)...)
	require.NoError(t, err)
	rec := &sleepRecorder{}
	s.sleep = rec.sleep
	return srv, s, rec
}

// statusSequence answers with the given statuses in order and repeats the
// last one afterwards. Successful statuses carry {"ok": true}.
func statusSequence(statuses ...int) (http.HandlerFunc, *atomic.Int32) {
	var calls atomic.Int32
	return func(w http.ResponseWriter, _ *http.Request) {
		n := int(calls.Add(1))
		if n > len(statuses) {
			n = len(statuses)
		}
		status := statuses[n-1]
		if status < 400 {
			writeJSON(w, status, map[string]any{"ok": true})
			return
		}
		writeJSON(w, status, map[string]any{"fault": map[string]any{"message": http.StatusText(status)}})
	}, &calls
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func mustPath(t *testing.T, r *http.Request, want string) {
	t.Helper()
	if r.URL.Path != want {
		t.Errorf("path = %s, want %s", r.URL.Path, want)
	}
}

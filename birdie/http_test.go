package birdie

import (
	"context"
	"encoding/json"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestExecute_StandardHeaders(t *testing.T) {
	var ua, accept, ctype string
	_, s, _ := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		accept = r.Header.Get("Accept")
		ctype = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	})

	_, err := s.Get(context.Background(), "/x")
	require.NoError(t, err)
	assert.Equal(t, DefaultUserAgent, ua)
	assert.Equal(t, "application/json", accept)
	assert.Empty(t, ctype, "Content-Type must only be sent with a body")
}

func TestExecute_JSONBody(t *testing.T) {
	var ctype string
	var got map[string]any
	_, s, _ := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		ctype = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusCreated, map[string]any{"resource": map[string]any{"id": "s-1"}})
	})

	res, err := s.Post(context.Background(), "/v1/services", map[string]any{"resource": map[string]any{"name": "a"}})
	require.NoError(t, err)
	assert.Equal(t, "application/json", ctype)
	assert.Equal(t, map[string]any{"resource": map[string]any{"name": "a"}}, got)
	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, map[string]any{"resource": map[string]any{"id": "s-1"}}, res.Body)
}

func TestExecute_EmptyBodyDecodesToNil(t *testing.T) {
	_, s, _ := newTestSession(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	res, err := s.Delete(context.Background(), "/v1/services/a")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Nil(t, res.Body)
}

func TestExecute_MalformedBodyDecodesToNil(t *testing.T) {
	_, s, _ := newTestSession(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "<html>not json</html>")
	})

	res, err := s.Get(context.Background(), "/x")
	require.NoError(t, err)
	assert.Nil(t, res.Body)
}

func TestExecute_MalformedErrorBodyStillClassified(t *testing.T) {
	_, s, _ := newTestSession(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "gone fishing")
	})

	_, err := s.Get(context.Background(), "/x")
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindNotFound, e.Kind)
	assert.Equal(t, "Not Found", e.Message)
	assert.Nil(t, e.Body)
}

func TestExecute_HeaderKeysAreCaseInsensitive(t *testing.T) {
	var trace, token string
	_, s, _ := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		trace = r.Header.Get("X-Trace")
		token = r.Header.Get(headerAuthToken)
		w.WriteHeader(http.StatusOK)
	}, WithAuthToken("session-token"))

	_, err := s.perform(context.Background(), RequestSpec{
		Method:  http.MethodGet,
		Path:    "/x",
		Headers: http.Header{"x-trace": {"abc"}, "x-auth-token": {"call-token"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "abc", trace)
	assert.Equal(t, "call-token", token)
}

func newObservedSession(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Session, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	_, s, _ := newTestSession(t, handler, append([]Option{WithLogger(zap.New(core))}, opts...)...)
	return s, logs
}

func TestTrace_RedactsPasswords(t *testing.T) {
	s, logs := newObservedSession(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}, WithDebug(true), WithAuthToken("tok-secret"))

	body := map[string]any{
		"auth": map[string]any{
			"username":  "admin",
			"password":  "hunter2",
			"adminPass": "letmein",
		},
		"note": "my password is swordfish",
	}
	_, err := s.Post(context.Background(), "/v1/login", body)
	require.NoError(t, err)

	reqs := logs.FilterMessageSnippet("REQ: ").All()
	require.Len(t, reqs, 1)
	line := reqs[0].Message
	assert.Contains(t, line, "curl -i -X POST "+s.ManagementURL()+"/v1/login")
	assert.Contains(t, line, `-H "Accept: application/json"`)
	assert.Contains(t, line, `"username":"admin"`)
	for _, secret := range []string{"hunter2", "letmein", "swordfish", "tok-secret"} {
		assert.NotContains(t, line, secret)
	}
	assert.Len(t, logs.FilterMessage("RESP").All(), 1)
}

func TestTrace_DisabledByDefault(t *testing.T) {
	s, logs := newObservedSession(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := s.Post(context.Background(), "/x", map[string]any{"password": "p"})
	require.NoError(t, err)
	assert.Empty(t, logs.FilterMessageSnippet("REQ: ").All())
	assert.Empty(t, logs.FilterMessage("RESP").All())
}

func TestTrace_LogsRetryDecisions(t *testing.T) {
	h, _ := statusSequence(500, 401, 200)
	s, logs := newObservedSession(t, h)

	_, err := s.Get(context.Background(), "/x")
	require.NoError(t, err)
	assert.Len(t, logs.FilterMessage("failed attempt, retrying").All(), 1)
	assert.Len(t, logs.FilterMessage("unauthorized, reauthenticating").All(), 1)
}

func TestTLS_InsecureSkipsVerification(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, err := NewSession(WithEndpoint(srv.URL), WithInsecure(true))
	require.NoError(t, err)
	_, err = s.Get(context.Background(), "/x")
	assert.NoError(t, err)
}

func TestTLS_VerifiesByDefault(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, err := NewSession(WithEndpoint(srv.URL))
	require.NoError(t, err)
	_, err = s.Get(context.Background(), "/x")
	assert.ErrorIs(t, err, ErrConnection)
}

func TestTLS_TrustAnchorFile(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "ca.pem")
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	require.NoError(t, os.WriteFile(path, pemBytes, 0o600))

	s, err := NewSession(WithEndpoint(srv.URL), WithCACert(path))
	require.NoError(t, err)
	_, err = s.Get(context.Background(), "/x")
	assert.NoError(t, err)
}

func TestTLS_BadTrustAnchorFile(t *testing.T) {
	_, err := NewSession(WithCACert(filepath.Join(t.TempDir(), "missing.pem")))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "empty.pem")
	require.NoError(t, os.WriteFile(path, []byte("not a cert"), 0o600))
	_, err = NewSession(WithCACert(path))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "no certificates"))
}

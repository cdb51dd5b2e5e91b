package birdie

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// authHeaders builds the authentication headers from the current session state.
func (s *Session) authHeaders(st *authState) http.Header {
	h := http.Header{}
	if st.token != "" {
		h.Set(headerAuthToken, st.token)
	}
	if s.cfg.ProjectID != "" {
		h.Set(headerProjectID, s.cfg.ProjectID)
	}
	return h
}

// buildCallOptions collects CallOptions.
func buildCallOptions(opts ...CallOption) *callOptions {
	co := &callOptions{}
	for _, o := range opts {
		o(co)
	}
	return co
}

// mergeHeaders sets values from src into dst, replacing existing keys.
func mergeHeaders(dst http.Header, src http.Header) {
	for k, vs := range src {
		dst.Del(k)
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}

// encodeQuery renders non-empty query values in key order.
func encodeQuery(q map[string]string) string {
	v := url.Values{}
	for k, val := range q {
		if val != "" {
			v.Set(k, val)
		}
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// parseFault pulls message and details out of an error body. It understands
// the wrapped fault shape {"itemNotFound": {"message": ..., "details": ...}}
// as well as flat {"message": ...} or {"error": ...} bodies.
func parseFault(body any) (string, any) {
	m, ok := body.(map[string]any)
	if !ok {
		if s, ok := body.(string); ok {
			return s, nil
		}
		return "", nil
	}
	if msg, details, ok := faultFields(m); ok {
		return msg, details
	}
	if len(m) == 1 {
		for _, v := range m {
			if inner, ok := v.(map[string]any); ok {
				if msg, details, ok := faultFields(inner); ok {
					return msg, details
				}
			}
		}
	}
	return "", nil
}

func faultFields(m map[string]any) (string, any, bool) {
	details := m["details"]
	for _, k := range []string{"message", "error"} {
		switch v := m[k].(type) {
		case string:
			if v != "" {
				return v, details, true
			}
		case map[string]any:
			if msg, d, ok := faultFields(v); ok {
				return msg, d, true
			}
		}
	}
	if details != nil {
		return fmt.Sprint(details), details, true
	}
	return "", nil, false
}

// joinURL appends a path to a base URL without doubling the separator.
func joinURL(base, path string) string {
	if path == "" {
		return base
	}
	if strings.HasSuffix(base, "/") && strings.HasPrefix(path, "/") {
		return base + path[1:]
	}
	return base + path
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// normalizeRetries ensures non-negative retry counts.
func normalizeRetries(r int) int {
	if r < 0 {
		return 0
	}
	return r
}

// normalizeBackoff falls back to one second when no unit is configured.
func normalizeBackoff(unit time.Duration) time.Duration {
	if unit <= 0 {
		return DefaultBackoffUnit
	}
	return unit
}

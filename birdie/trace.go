package birdie

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// redactionMarker replaces sensitive values in the debug trace.
const redactionMarker = "***"

// sensitiveKeys are matched case-insensitively as substrings of body field names.
var sensitiveKeys = []string{"password", "adminpass", "secret", "token"}

func isSensitiveKey(k string) bool {
	k = strings.ToLower(k)
	for _, s := range sensitiveKeys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

// redactValue returns a copy of v with sensitive fields masked. Strings that
// mention a password are masked wherever they appear.
func redactValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if isSensitiveKey(k) {
				out[k] = redactionMarker
				continue
			}
			out[k] = redactValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = redactValue(val)
		}
		return out
	case string:
		if strings.Contains(strings.ToLower(t), "password") {
			return redactionMarker
		}
		return t
	default:
		return v
	}
}

// redactPayload masks a serialized JSON payload for logging. Payloads that do
// not decode are replaced entirely.
func redactPayload(raw []byte) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return redactionMarker
	}
	b, err := json.Marshal(redactValue(v))
	if err != nil {
		return redactionMarker
	}
	return string(b)
}

// redactHeaders masks the auth token for logging.
func redactHeaders(h http.Header) http.Header {
	cp := http.Header{}
	for k, vs := range h {
		for _, v := range vs {
			if strings.EqualFold(k, headerAuthToken) {
				cp.Add(k, redactionMarker)
			} else {
				cp.Add(k, v)
			}
		}
	}
	return cp
}

// curlLine reconstructs a request as a single curl invocation.
func curlLine(method, url string, h http.Header, payload []byte) string {
	var b strings.Builder
	b.WriteString("curl -i -X ")
	b.WriteString(method)
	b.WriteString(" ")
	b.WriteString(url)

	safe := redactHeaders(h)
	keys := make([]string, 0, len(safe))
	for k := range safe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range safe[k] {
			b.WriteString(` -H "`)
			b.WriteString(k)
			b.WriteString(": ")
			b.WriteString(v)
			b.WriteString(`"`)
		}
	}
	if payload != nil {
		b.WriteString(" -d '")
		b.WriteString(redactPayload(payload))
		b.WriteString("'")
	}
	return b.String()
}

func (s *Session) traceRequest(requestID, method, url string, h http.Header, payload []byte) {
	if !s.cfg.Debug {
		return
	}
	s.logger.Debug("REQ: "+curlLine(method, url, h, payload), zap.String("request_id", requestID))
}

func (s *Session) traceResponse(requestID string, status int, h http.Header, body []byte) {
	if !s.cfg.Debug {
		return
	}
	s.logger.Debug("RESP",
		zap.String("request_id", requestID),
		zap.Int("status", status),
		zap.Any("headers", redactHeaders(h)),
		zap.ByteString("body", body),
	)
}

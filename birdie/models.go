package birdie

import (
	"net"
	"net/http"
	"strings"
)

// ---- Transport Models ----

// RequestSpec describes one logical call. Path is relative to the session's
// management URL.
type RequestSpec struct {
	Method  string
	Path    string
	Headers http.Header
	Body    any // Serialized as JSON when non-nil.
}

// ResponseEnvelope is a decoded successful response. Body is nil when the
// response had no body or the body was not valid JSON.
type ResponseEnvelope struct {
	StatusCode int
	Headers    http.Header
	Body       any
}

// ---- Connection Models ----

// Credentials identify the caller to the gateway.
type Credentials struct {
	Username  string
	Password  string
	ProjectID string
	TenantID  string
	AuthToken string
}

// Endpoint locates the gateway. Scheme defaults to http.
type Endpoint struct {
	Scheme string
	Host   string
	Port   string
}

// URL renders the endpoint as an origin, for example http://gateway:8090.
func (e Endpoint) URL() string {
	scheme := e.Scheme
	if scheme == "" {
		scheme = "http"
	}
	host := strings.TrimSpace(e.Host)
	if e.Port != "" {
		host = net.JoinHostPort(host, e.Port)
	}
	return scheme + "://" + host
}

// ---- Resource Models ----

// Resource is intentionally open to allow backend evolution.
type Resource = map[string]any

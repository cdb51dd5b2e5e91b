package birdie

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Option customizes a Session at construction time.
type Option func(*Session)

func WithEndpoint(u string) Option       { return func(s *Session) { s.cfg.Endpoint = strings.TrimRight(u, "/") } }
func WithProjectID(id string) Option     { return func(s *Session) { s.cfg.ProjectID = id } }
func WithTenantID(id string) Option      { return func(s *Session) { s.cfg.TenantID = id } }
func WithAuthToken(t string) Option      { return func(s *Session) { s.cfg.AuthToken = t } }
func WithInsecure(b bool) Option         { return func(s *Session) { s.cfg.Insecure = b } }
func WithCACert(path string) Option      { return func(s *Session) { s.cfg.CACertFile = path } }
func WithTimeout(d time.Duration) Option { return func(s *Session) { s.cfg.Timeout = d } }
func WithRetries(max int) Option         { return func(s *Session) { s.cfg.MaxRetries = max } }
func WithBackoffUnit(d time.Duration) Option {
	return func(s *Session) { s.cfg.BackoffUnit = d }
}
func WithDebug(b bool) Option              { return func(s *Session) { s.cfg.Debug = b } }
func WithUserAgent(ua string) Option       { return func(s *Session) { s.cfg.UserAgent = ua } }
func WithHTTPClient(h *http.Client) Option { return func(s *Session) { s.baseClient = h } }

// WithCredentials sets the username and password presented to the Authenticator.
func WithCredentials(username, password string) Option {
	return func(s *Session) {
		s.cfg.Username = username
		s.cfg.Password = password
	}
}

// WithLogger routes retry decisions and the debug trace to l.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAuthenticator installs the hook that refills the session after a 401.
func WithAuthenticator(a Authenticator) Option {
	return func(s *Session) {
		if a != nil {
			s.auth = a
		}
	}
}

// CallOption customizes a single API call.
type CallOption func(*callOptions)

type callOptions struct {
	headers     http.Header
	responseKey string
}

// WithHeader adds an arbitrary header to a single API call.
func WithHeader(key, value string) CallOption {
	return func(co *callOptions) {
		if co.headers == nil {
			co.headers = http.Header{}
		}
		co.headers.Add(key, value)
	}
}

// WithResponseKey unwraps body[key] from an object response.
func WithResponseKey(key string) CallOption {
	return func(co *callOptions) { co.responseKey = key }
}

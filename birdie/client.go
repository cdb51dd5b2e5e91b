// Package birdie provides a Go client for the Birdie gateway management API.
// The client wraps HTTP transport, failure classification, retries with
// exponential backoff, and a single re-authentication round on credential
// expiry, and exposes CRUD-shaped resource managers on top.
//
// Connect builds a Client for an API version; every manager on that Client
// shares one Session and is safe for concurrent use.
package birdie

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-cleanhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultUserAgent identifies this client to the gateway.
	DefaultUserAgent = "birdie-gateway-go"

	// DefaultBackoffUnit is the wait before the first retry. It doubles after
	// every retryable failure.
	DefaultBackoffUnit = time.Second

	headerAuthToken = "X-Auth-Token"
	headerProjectID = "X-Auth-Project-Id"
	headerRequestID = "X-Request-Id"
	mimeJSON        = "application/json"
)

// SessionConfig is the immutable configuration of a Session.
type SessionConfig struct {
	// Endpoint is the API origin (for example: http://gateway:8090).
	Endpoint string

	Username  string
	Password  string
	ProjectID string
	TenantID  string

	// AuthToken is an optional pre-issued token sent as X-Auth-Token.
	AuthToken string

	// Insecure disables TLS verification. CACertFile, when set, replaces the
	// system trust anchors with the certificates in that PEM file.
	Insecure   bool
	CACertFile string

	// Timeout bounds each HTTP exchange. Zero means no client-side timeout.
	Timeout time.Duration

	// MaxRetries is the retry budget for transient failures. BackoffUnit is the
	// first backoff wait.
	MaxRetries  int
	BackoffUnit time.Duration

	// Debug enables the request/response trace at debug level.
	Debug bool

	UserAgent string
}

// Authenticator fills the session state after it has been cleared. It returns
// the management URL requests are sent to and the token to present.
// Concurrent callers share one fill, so ctx carries the first caller's values
// but not its cancellation; implementations should bound their own I/O.
type Authenticator interface {
	Authenticate(ctx context.Context, cfg SessionConfig) (managementURL, token string, err error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, cfg SessionConfig) (string, string, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, cfg SessionConfig) (string, string, error) {
	return f(ctx, cfg)
}

// staticAuthenticator targets the configured endpoint with the preset token.
type staticAuthenticator struct{}

func (staticAuthenticator) Authenticate(_ context.Context, cfg SessionConfig) (string, string, error) {
	return cfg.Endpoint, cfg.AuthToken, nil
}

// Session holds the configuration and mutable transport state shared by all
// calls from one logical client.
type Session struct {
	cfg    SessionConfig
	http   *resty.Client
	logger *zap.Logger
	auth   Authenticator

	// baseClient is the caller-supplied HTTP client, used at construction only.
	baseClient *http.Client

	state atomicState
	fill  singleflight.Group

	// sleep suspends the caller between retries.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSession constructs a Session with safe defaults. Options can override
// defaults. It performs no network I/O.
func NewSession(opts ...Option) (*Session, error) {
	s := &Session{
		cfg: SessionConfig{
			UserAgent:   DefaultUserAgent,
			BackoffUnit: DefaultBackoffUnit,
		},
		logger: zap.NewNop(),
		auth:   staticAuthenticator{},
		sleep:  sleepCtx,
	}
	for _, f := range opts {
		f(s)
	}
	s.cfg.Endpoint = strings.TrimRight(s.cfg.Endpoint, "/")
	s.cfg.MaxRetries = normalizeRetries(s.cfg.MaxRetries)
	s.cfg.BackoffUnit = normalizeBackoff(s.cfg.BackoffUnit)
	if s.cfg.UserAgent == "" {
		s.cfg.UserAgent = DefaultUserAgent
	}

	hc := s.baseClient
	if hc == nil {
		hc = &http.Client{Transport: cleanhttp.DefaultPooledTransport()}
	}
	s.baseClient = nil
	rc := resty.NewWithClient(hc).
		SetRetryCount(0).
		SetLogger(s.logger.Sugar())
	if s.cfg.Timeout > 0 {
		rc.SetTimeout(s.cfg.Timeout)
	}
	if tlsCfg, err := s.tlsConfig(); err != nil {
		return nil, err
	} else if tlsCfg != nil {
		rc.SetTLSClientConfig(tlsCfg)
	}
	s.http = rc
	s.state.store(&authState{managementURL: s.cfg.Endpoint, token: s.cfg.AuthToken})
	return s, nil
}

// Config returns a copy of the session configuration.
func (s *Session) Config() SessionConfig { return s.cfg }

// tlsConfig returns nil when the transport default verification applies.
func (s *Session) tlsConfig() (*tls.Config, error) {
	if s.cfg.Insecure {
		return &tls.Config{InsecureSkipVerify: true}, nil //nolint:gosec // explicitly requested
	}
	if s.cfg.CACertFile == "" {
		return nil, nil
	}
	pem, err := os.ReadFile(s.cfg.CACertFile)
	if err != nil {
		return nil, fmt.Errorf("read CA certificate: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %s", s.cfg.CACertFile)
	}
	return &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

package birdie

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// retryState is scoped to one logical call.
type retryState struct {
	attempt      int
	authAttempts int
	backoff      time.Duration
}

// perform runs spec against the session's management URL, retrying transient
// failures with doubling backoff and re-authenticating at most once on 401.
// The re-authentication round is not charged against MaxRetries.
func (s *Session) perform(ctx context.Context, spec RequestSpec) (*ResponseEnvelope, error) {
	requestID := spec.Headers.Get(headerRequestID)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	log := s.logger.With(zap.String("request_id", requestID), zap.String("method", spec.Method), zap.String("path", spec.Path))
	rs := retryState{backoff: s.cfg.BackoffUnit}
	retries := s.cfg.MaxRetries

	for {
		rs.attempt++

		st, err := s.currentAuth(ctx)
		if err != nil {
			return nil, err
		}
		h := s.authHeaders(st)
		h.Set(headerRequestID, requestID)
		mergeHeaders(h, spec.Headers)
		attemptSpec := spec
		attemptSpec.Headers = h

		res, err := s.execute(ctx, requestID, joinURL(st.managementURL, spec.Path), attemptSpec)
		if err == nil {
			return res, nil
		}

		var e *Error
		if !errors.As(err, &e) {
			return nil, err
		}
		if e.Kind == KindAuth && rs.authAttempts == 0 {
			log.Debug("unauthorized, reauthenticating")
			s.resetAuth()
			rs.attempt--
			rs.authAttempts++
			continue
		}
		if !e.Kind.Retryable() {
			return nil, e
		}
		if e.Kind == KindConnection {
			log.Debug("connection error", zap.Error(e.Err))
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %w", e, ctx.Err())
			}
			// Timeouts are terminal.
			if isTimeout(e.Err) {
				return nil, &Error{
					Kind:    KindConnection,
					Message: fmt.Sprintf("Request timed out: %v", e.Err),
					Err:     e.Err,
				}
			}
		}
		if rs.attempt > retries {
			if e.Kind == KindConnection {
				return nil, &Error{
					Kind:    KindConnection,
					Message: fmt.Sprintf("Unable to establish connection: %v", e.Err),
					Err:     e.Err,
				}
			}
			return nil, e
		}

		log.Debug("failed attempt, retrying",
			zap.Int("attempt", rs.attempt),
			zap.Int("max_retries", retries),
			zap.Duration("backoff", rs.backoff),
			zap.Stringer("kind", e.Kind),
		)
		if serr := s.sleep(ctx, rs.backoff); serr != nil {
			return nil, fmt.Errorf("%w: %w", e, serr)
		}
		rs.backoff *= 2
	}
}

// isTimeout reports whether err is a client timeout or an expired deadline.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func (s *Session) call(ctx context.Context, method, path string, body any, opts ...CallOption) (*ResponseEnvelope, error) {
	co := buildCallOptions(opts...)
	return s.perform(ctx, RequestSpec{Method: method, Path: path, Headers: co.headers, Body: body})
}

// Get issues a GET for path relative to the management URL.
func (s *Session) Get(ctx context.Context, path string, opts ...CallOption) (*ResponseEnvelope, error) {
	return s.call(ctx, http.MethodGet, path, nil, opts...)
}

// Post issues a POST with a JSON body.
func (s *Session) Post(ctx context.Context, path string, body any, opts ...CallOption) (*ResponseEnvelope, error) {
	return s.call(ctx, http.MethodPost, path, body, opts...)
}

// Put issues a PUT with a JSON body.
func (s *Session) Put(ctx context.Context, path string, body any, opts ...CallOption) (*ResponseEnvelope, error) {
	return s.call(ctx, http.MethodPut, path, body, opts...)
}

// Delete issues a DELETE for path.
func (s *Session) Delete(ctx context.Context, path string, opts ...CallOption) (*ResponseEnvelope, error) {
	return s.call(ctx, http.MethodDelete, path, nil, opts...)
}

package birdie

import (
	"context"
	"errors"
	"sync/atomic"
)

// authState is the mutable part of a session. Values are never modified in
// place; a new authState replaces the old one.
type authState struct {
	managementURL string
	token         string
}

func (a *authState) empty() bool { return a.managementURL == "" }

type atomicState struct{ p atomic.Pointer[authState] }

func (s *atomicState) load() *authState {
	if st := s.p.Load(); st != nil {
		return st
	}
	return &authState{}
}

func (s *atomicState) store(st *authState) { s.p.Store(st) }

// ManagementURL returns the URL requests are currently sent to. It is empty
// between a reauthentication reset and the next fill.
func (s *Session) ManagementURL() string { return s.state.load().managementURL }

// AuthToken returns the token currently presented, if any.
func (s *Session) AuthToken() string { return s.state.load().token }

// resetAuth clears the management URL and token in one step.
func (s *Session) resetAuth() {
	s.state.store(&authState{})
}

// currentAuth returns the auth state, filling it through the Authenticator
// when it has been cleared. Concurrent callers share a single fill.
func (s *Session) currentAuth(ctx context.Context) (*authState, error) {
	if st := s.state.load(); !st.empty() {
		return st, nil
	}
	// The fill outlives any single waiter; each waiter stops waiting when its
	// own context ends.
	fillCtx := context.WithoutCancel(ctx)
	ch := s.fill.DoChan("auth", func() (any, error) {
		if st := s.state.load(); !st.empty() {
			return st, nil
		}
		mgmt, token, err := s.auth.Authenticate(fillCtx, s.cfg)
		if err != nil {
			return nil, err
		}
		if mgmt == "" {
			return nil, &Error{Kind: KindAuth, Message: "authenticator returned no management URL"}
		}
		st := &authState{managementURL: mgmt, token: token}
		s.state.store(st)
		return st, nil
	})
	var (
		v   any
		err error
	)
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case r := <-ch:
		v, err = r.Val, r.Err
	}
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			return nil, err
		}
		return nil, &Error{Kind: KindAuth, Message: "authentication failed", Err: err}
	}
	return v.(*authState), nil
}

// Authenticate forces a fresh fill of the session state.
func (s *Session) Authenticate(ctx context.Context) error {
	s.resetAuth()
	_, err := s.currentAuth(ctx)
	return err
}

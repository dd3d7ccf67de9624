package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/medilens/internal/domain/model"
	"github.com/ericfisherdev/medilens/internal/domain/port/driven"
)

// DefaultSplashDuration is how long the splash view shows before continuing.
const DefaultSplashDuration = 3250 * time.Millisecond

var (
	// ErrLoginRejected is returned when the service answered a login with
	// success but issued no access token.
	ErrLoginRejected = errors.New("login rejected")
	// ErrSignupRejected is returned when a signup response carries none of
	// the expected success markers.
	ErrSignupRejected = errors.New("signup rejected")
)

var (
	loginDetailField = aliases{"detail"}
	signupAckField   = aliases{"id", "success", "message"}
)

// ScreenState is what the GUI should currently render.
type ScreenState struct {
	View          model.View
	Authenticated bool
	Subject       string
	// Placeholder is set when View needs a credential the session lacks.
	Placeholder bool
}

// Session tracks the current view and credential. It starts on the splash
// view; the first exit from splash goes to text when a stored credential
// exists, otherwise to login.
type Session struct {
	api    driven.AnalysisAPI
	tokens driven.TokenStore
	splash time.Duration
	logger *slog.Logger

	mu         sync.Mutex
	view       model.View
	cred       *model.Credential
	restored   bool
	splashDone bool
}

// NewSession creates a Session. A non-positive splash duration selects the
// default.
func NewSession(api driven.AnalysisAPI, tokens driven.TokenStore, splash time.Duration) *Session {
	if splash <= 0 {
		splash = DefaultSplashDuration
	}
	return &Session{
		api:    api,
		tokens: tokens,
		splash: splash,
		logger: slog.Default(),
		view:   model.ViewSplash,
	}
}

// SplashDuration returns the configured splash duration.
func (s *Session) SplashDuration() time.Duration {
	return s.splash
}

// RunSplash leaves the splash view once the splash duration elapses. It
// returns early when ctx is canceled.
func (s *Session) RunSplash(ctx context.Context) {
	timer := time.NewTimer(s.splash)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
		s.ContinueFromSplash(ctx)
	}
}

// ContinueFromSplash leaves the splash view. Only the first call has any
// effect; it returns the resulting view.
func (s *Session) ContinueFromSplash(ctx context.Context) model.View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.splashDone {
		return s.view
	}
	s.splashDone = true

	if s.credentialLocked(ctx) != nil {
		s.view = model.ViewText
	} else {
		s.view = model.ViewLogin
	}
	s.logger.Debug("left splash", "view", s.view)
	return s.view
}

// Login authenticates and moves to the text view.
func (s *Session) Login(ctx context.Context, username, password string) error {
	body, err := s.api.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}

	token := model.AccessToken(body)
	if token == "" {
		msg := "Login failed"
		if obj, ok := body.(map[string]any); ok {
			if detail := stringify(loginDetailField.firstSet(obj)); detail != "" {
				msg = detail
			}
		}
		return &model.RequestError{Message: msg, RawBody: body, Err: ErrLoginRejected}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = &model.Credential{Token: token, Subject: username}
	s.restored = true
	s.splashDone = true
	s.view = model.ViewText
	return nil
}

// Signup registers an account and moves to the login view. It does not
// authenticate.
func (s *Session) Signup(ctx context.Context, name, email, password string) error {
	body, err := s.api.Signup(ctx, name, email, password)
	if err != nil {
		return fmt.Errorf("signing up: %w", err)
	}

	obj, _ := body.(map[string]any)
	if obj == nil || signupAckField.firstSet(obj) == nil {
		msg := MsgSignupFailed
		if body != nil {
			msg = stringify(body)
		}
		return &model.RequestError{Message: msg, RawBody: body, Err: ErrSignupRejected}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.splashDone = true
	s.view = model.ViewLogin
	return nil
}

// Logout clears the credential and moves to the login view. The in-memory
// credential is dropped even when clearing the store fails.
func (s *Session) Logout(ctx context.Context) error {
	err := s.api.Logout(ctx)

	s.mu.Lock()
	s.cred = nil
	s.restored = true
	s.splashDone = true
	s.view = model.ViewLogin
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("logging out: %w", err)
	}
	return nil
}

// Navigate switches to v. Every known view is reachable in any state.
func (s *Session) Navigate(v model.View) error {
	if !v.Known() {
		return &model.ValidationError{Field: "view", Message: fmt.Sprintf("unknown view %q", v)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if v != model.ViewSplash {
		s.splashDone = true
	}
	s.view = v
	return nil
}

// Screen returns the current view and authentication state.
func (s *Session) Screen(ctx context.Context) ScreenState {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred := s.credentialLocked(ctx)
	state := ScreenState{View: s.view, Authenticated: cred != nil}
	if cred != nil {
		state.Subject = cred.Subject
	}
	state.Placeholder = s.view.RequiresAuth() && !state.Authenticated
	return state
}

// Authenticated reports whether the session holds a credential.
func (s *Session) Authenticated(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credentialLocked(ctx) != nil
}

// credentialLocked returns the current credential, restoring it from the
// token store on first use. A store failure reads as unauthenticated.
func (s *Session) credentialLocked(ctx context.Context) *model.Credential {
	if !s.restored {
		cred, err := s.tokens.Get(ctx)
		if err != nil {
			s.logger.Warn("restoring credential", "error", err)
		} else {
			s.restored = true
			if cred.Valid() {
				s.cred = cred
			}
		}
	}
	return s.cred
}

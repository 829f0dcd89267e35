package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jw6ventures/carrental-console/internal/backend"
)

// ErrAuth is returned when the backend rejects the supplied credentials.
var ErrAuth = errors.New("invalid username or password")

// Service encapsulates the login flow and session enforcement.
type Service struct {
	api      *backend.Client
	sessions *SessionManager
	now      func() time.Time
}

func NewService(api *backend.Client, sessions *SessionManager) *Service {
	return &Service{api: api, sessions: sessions, now: time.Now}
}

// Login verifies the credentials with the backend and starts a session. On failure the
// response is left untouched so any existing session survives.
func (s *Service) Login(ctx context.Context, w http.ResponseWriter, r *http.Request, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrAuth
	}

	cred := backend.EncodeCredential(username, password)
	profile, err := s.api.WithCredential(cred).Me(ctx)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			return nil, ErrAuth
		}
		return nil, fmt.Errorf("%w: %w", ErrAuth, err)
	}

	now := s.now()
	sess := &Session{
		ID:         uuid.NewString(),
		Credential: cred,
		User:       *profile,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.sessions.TTL()),
	}
	if err := s.sessions.Issue(w, r, sess); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	return sess, nil
}

// Logout ends the current session.
func (s *Service) Logout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w, r)
}

// Attach loads the session cookie, when present, into the request context.
func (s *Service) Attach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess, ok := s.sessions.Load(r); ok {
			r = r.WithContext(WithSession(r.Context(), sess))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSession redirects anonymous requests to the login page.
func (s *Service) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SessionFromContext(r.Context()); !ok {
			sess, loaded := s.sessions.Load(r)
			if !loaded {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}
			r = r.WithContext(WithSession(r.Context(), sess))
		}
		next.ServeHTTP(w, r)
	})
}

// Client returns a backend client that authenticates as sess.
func (s *Service) Client(sess *Session) *backend.Client {
	return s.api.WithCredential(sess.Credential)
}

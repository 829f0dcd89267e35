package auth

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/hkdf"

	"github.com/jw6ventures/carrental-console/internal/backend"
	"github.com/jw6ventures/carrental-console/internal/config"
)

const (
	cookieName  = "carrental_session"
	payloadName = "carrental_session_payload"
)

// ErrSessionNotFound is returned by backends for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Session is the signed-in state of one browser.
type Session struct {
	ID         string              `json:"id"`
	Credential string              `json:"credential"`
	User       backend.UserProfile `json:"user"`
	CreatedAt  time.Time           `json:"created_at"`
	ExpiresAt  time.Time           `json:"expires_at"`
}

// SessionBackend keeps encoded sessions server side. Payloads are already encrypted.
type SessionBackend interface {
	Save(ctx context.Context, id, payload string, expiresAt time.Time) error
	Load(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) error
}

type cookieRef struct {
	ID string `json:"id"`
}

// SessionManager manages console sessions. Without a backend the whole session lives in the
// encrypted cookie; with one the cookie only names the session.
type SessionManager struct {
	codec   *securecookie.SecureCookie
	secure  bool
	ttl     time.Duration
	backend SessionBackend
	now     func() time.Time
}

func NewSessionManager(cfg *config.Config, backend SessionBackend) (*SessionManager, error) {
	hashKey, blockKey, err := deriveKeys(cfg.Session.Secret)
	if err != nil {
		return nil, err
	}
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int(cfg.Session.TTL.Seconds()))
	sc.SetSerializer(securecookie.JSONEncoder{})

	secure := true
	if base, err := url.Parse(cfg.BaseURL); err == nil && base.Scheme != "https" {
		secure = false
	}

	return &SessionManager{
		codec:   sc,
		secure:  secure,
		ttl:     cfg.Session.TTL,
		backend: backend,
		now:     time.Now,
	}, nil
}

// deriveKeys expands the configured secret into independent HMAC and AES keys.
func deriveKeys(secret string) (hashKey, blockKey []byte, err error) {
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("carrental-console session cookie"))
	hashKey = make([]byte, 64)
	blockKey = make([]byte, 32)
	if _, err := io.ReadFull(r, hashKey); err != nil {
		return nil, nil, fmt.Errorf("derive session hash key: %w", err)
	}
	if _, err := io.ReadFull(r, blockKey); err != nil {
		return nil, nil, fmt.Errorf("derive session block key: %w", err)
	}
	return hashKey, blockKey, nil
}

// TTL is how long a freshly issued session stays valid.
func (m *SessionManager) TTL() time.Duration { return m.ttl }

// Issue persists sess and sets its cookie.
func (m *SessionManager) Issue(w http.ResponseWriter, r *http.Request, sess *Session) error {
	var value any = sess
	if m.backend != nil {
		payload, err := m.codec.Encode(payloadName, sess)
		if err != nil {
			return fmt.Errorf("encode session: %w", err)
		}
		if err := m.backend.Save(r.Context(), sess.ID, payload, sess.ExpiresAt); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		value = cookieRef{ID: sess.ID}
	}

	encoded, err := m.codec.Encode(cookieName, value)
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    encoded,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Load returns the session named by the request cookie, if it is valid and unexpired.
func (m *SessionManager) Load(r *http.Request) (*Session, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return nil, false
	}

	var sess Session
	if m.backend == nil {
		if err := m.codec.Decode(cookieName, c.Value, &sess); err != nil {
			return nil, false
		}
	} else {
		var ref cookieRef
		if err := m.codec.Decode(cookieName, c.Value, &ref); err != nil || ref.ID == "" {
			return nil, false
		}
		payload, err := m.backend.Load(r.Context(), ref.ID)
		if err != nil {
			if !errors.Is(err, ErrSessionNotFound) {
				log.Printf("[ERROR] load session %s: %v", ref.ID, err)
			}
			return nil, false
		}
		if err := m.codec.Decode(payloadName, payload, &sess); err != nil || sess.ID != ref.ID {
			return nil, false
		}
	}

	if !sess.ExpiresAt.After(m.now()) {
		return nil, false
	}
	return &sess, true
}

// Clear deletes the server-side session, if any, and expires the cookie.
func (m *SessionManager) Clear(w http.ResponseWriter, r *http.Request) {
	if m.backend != nil {
		if sess, ok := SessionFromContext(r.Context()); ok {
			if err := m.backend.Delete(r.Context(), sess.ID); err != nil {
				log.Printf("[ERROR] delete session %s: %v", sess.ID, err)
			}
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
	})
}

// Package console implements the cars, bookings and customers views: fetching snapshots
// from the backend, sorting them, mutating records and queueing notices for the next page.
package console

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/jw6ventures/carrental-console/internal/backend"
	httperrors "github.com/jw6ventures/carrental-console/internal/http/errors"
	"github.com/jw6ventures/carrental-console/internal/metrics"
	"github.com/jw6ventures/carrental-console/internal/table"
)

// ErrForbidden is returned when the signed-in user's policy does not allow an operation.
var ErrForbidden = errors.New("action not permitted")

type NoticeKind string

const (
	NoticeInfo     NoticeKind = "info"
	NoticePositive NoticeKind = "positive"
	NoticeNegative NoticeKind = "negative"
	NoticeWarning  NoticeKind = "warning"
)

// Notice is a transient message shown on the next rendered page.
type Notice struct {
	Message string
	Kind    NoticeKind
}

// snapshot is the last fetched copy of one collection.
type snapshot[T any] struct {
	rows   []T
	loaded bool
	// reuse makes the next render skip the fetch.
	reuse bool
	// failed is set when the latest refresh failed; the render then shows no rows.
	failed bool
}

func (s *snapshot[T]) replace(rows []T) {
	s.rows = rows
	s.loaded = true
	s.failed = false
}

func (s *snapshot[T]) takeReuse() bool {
	ok := s.reuse && s.loaded
	s.reuse = false
	return ok
}

// State is the per-session view state. Views hold mu for the whole of an operation.
type State struct {
	mu sync.Mutex

	cars      snapshot[backend.Car]
	bookings  snapshot[backend.Booking]
	customers snapshot[backend.Customer]

	// sort is shared by the bookings and customers tables.
	sort    table.SortDescriptor
	carSort string

	notices      []Notice
	unauthorized bool
}

func (s *State) notify(message string, kind NoticeKind) {
	s.notices = append(s.notices, Notice{Message: message, Kind: kind})
	metrics.CountNotification(string(kind))
}

// Notify queues a notice for the next render.
func (s *State) Notify(message string, kind NoticeKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify(message, kind)
}

// Notices drains the queued notices.
func (s *State) Notices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notices
	s.notices = nil
	return out
}

// Unauthorized reports, once, whether a backend call was rejected with 401 since the last check.
func (s *State) Unauthorized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.unauthorized
	s.unauthorized = false
	return u
}

// Sort returns the shared table sort descriptor.
func (s *State) Sort() table.SortDescriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sort
}

// fail logs err and queues message as a negative notice.
func (s *State) fail(ctx context.Context, message string, err error) {
	httperrors.LogContext(ctx, message, err)
	if errors.Is(err, backend.ErrUnauthorized) {
		s.unauthorized = true
	}
	s.notify(message, NoticeNegative)
}

// Registry keeps one State per session, evicting idle ones.
type Registry struct {
	mu     sync.Mutex
	states *expirable.LRU[string, *State]
}

func NewRegistry(size int, ttl time.Duration) *Registry {
	return &Registry{states: expirable.NewLRU[string, *State](size, nil, ttl)}
}

// For returns the state of sessionID, creating it on first use.
func (r *Registry) For(sessionID string) *State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.states.Get(sessionID); ok {
		return st
	}
	st := &State{}
	r.states.Add(sessionID, st)
	return st
}

// Has reports whether sessionID currently holds view state.
func (r *Registry) Has(sessionID string) bool {
	return r.states.Contains(sessionID)
}

// Forget drops the state of sessionID.
func (r *Registry) Forget(sessionID string) {
	r.states.Remove(sessionID)
}

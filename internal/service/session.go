package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"go-shoe-studio/internal/canvas"
	"go-shoe-studio/internal/catalog"
	"go-shoe-studio/internal/logger"
	"go-shoe-studio/internal/modal"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is one design tab view: its canvas, the open panel and the current
// color and reference selections.
type Session struct {
	ID        string
	CreatedAt time.Time
	Document  *canvas.Document
	Modal     modal.State

	mu        sync.RWMutex
	color     string
	reference *catalog.Item

	inflight atomic.Pointer[string]
	lastSeen atomic.Int64
}

func newSession(now time.Time) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now.UTC(),
		Document:  canvas.NewDocument(),
	}
	s.lastSeen.Store(now.UnixNano())
	return s
}

// Color returns the selected "#RRGGBB" color, or "" when none is selected.
func (s *Session) Color() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.color
}

func (s *Session) setColor(hex string) {
	s.mu.Lock()
	s.color = hex
	s.mu.Unlock()
}

// Reference returns the selected pattern or leather item.
func (s *Session) Reference() (catalog.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.reference == nil {
		return catalog.Item{}, false
	}
	return *s.reference, true
}

func (s *Session) setReference(it *catalog.Item) {
	s.mu.Lock()
	s.reference = it
	s.mu.Unlock()
}

// TryBegin claims the session's single transform slot and returns the request
// token. It fails while another transform holds the slot.
func (s *Session) TryBegin() (string, bool) {
	token := uuid.NewString()
	if !s.inflight.CompareAndSwap(nil, &token) {
		return "", false
	}
	return token, true
}

// End releases the slot if token still holds it.
func (s *Session) End(token string) {
	cur := s.inflight.Load()
	if cur != nil && *cur == token {
		s.inflight.CompareAndSwap(cur, nil)
	}
}

// Loading reports whether a transform is in flight.
func (s *Session) Loading() bool {
	return s.inflight.Load() != nil
}

// Moodboard is one moodboard tab view.
type Moodboard struct {
	ID        string
	CreatedAt time.Time
	Document  *canvas.Document

	lastSeen atomic.Int64
}

// Store keeps sessions and moodboards in memory. Entries idle for longer than
// the TTL given to Sweep are dropped with their canvases.
type Store struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	moodboards map[string]*Moodboard
	now        func() time.Time
}

func NewStore() *Store {
	return &Store{
		sessions:   make(map[string]*Session),
		moodboards: make(map[string]*Moodboard),
		now:        time.Now,
	}
}

// CreateSession starts a design session with an empty canvas.
func (st *Store) CreateSession() *Session {
	s := newSession(st.now())
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Session looks up a session and marks it as used.
func (st *Store) Session(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.lastSeen.Store(st.now().UnixNano())
	return s, nil
}

// CreateMoodboard starts a moodboard with an empty canvas.
func (st *Store) CreateMoodboard() *Moodboard {
	now := st.now()
	m := &Moodboard{ID: uuid.NewString(), CreatedAt: now.UTC(), Document: canvas.NewDocument()}
	m.lastSeen.Store(now.UnixNano())
	st.mu.Lock()
	st.moodboards[m.ID] = m
	st.mu.Unlock()
	return m
}

// Moodboard looks up a moodboard and marks it as used.
func (st *Store) Moodboard(id string) (*Moodboard, error) {
	st.mu.RLock()
	m, ok := st.moodboards[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	m.lastSeen.Store(st.now().UnixNano())
	return m, nil
}

// Sweep removes sessions and moodboards not used since now-ttl and returns how
// many were removed. Sessions with a transform in flight are kept.
func (st *Store) Sweep(now time.Time, ttl time.Duration) int {
	cutoff := now.Add(-ttl).UnixNano()
	removed := 0

	st.mu.Lock()
	defer st.mu.Unlock()
	for id, s := range st.sessions {
		if s.lastSeen.Load() < cutoff && !s.Loading() {
			delete(st.sessions, id)
			removed++
		}
	}
	for id, m := range st.moodboards {
		if m.lastSeen.Load() < cutoff {
			delete(st.moodboards, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions and moodboards.
func (st *Store) Len() (sessions, moodboards int) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions), len(st.moodboards)
}

// RunJanitor sweeps idle entries every interval until ctx is done.
func (st *Store) RunJanitor(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.Sweep(st.now(), ttl); n > 0 {
				sessions, boards := st.Len()
				logger.WithFields(logrus.Fields{
					"evicted":    n,
					"sessions":   sessions,
					"moodboards": boards,
				}).Info("Evicted idle sessions")
			}
		}
	}
}

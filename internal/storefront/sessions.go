package storefront

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/ajinkyamaster/storefront/internal/cart"
	"github.com/ajinkyamaster/storefront/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sessionCookie = "cart_session"

// Session is the state owned by one browser.
type Session struct {
	Cart *cart.Cart
	// Notice is shown once on the next cart page render.
	Notice string
	// Receipt is the last accepted checkout, shown on the receipt page.
	Receipt *domain.Receipt
}

type sessionEntry struct {
	mu       sync.Mutex
	session  Session
	lastSeen time.Time // guarded by Sessions.mu
}

// Sessions maps session IDs to their state. Carts live only as long as the
// process and are dropped after a period of inactivity.
type Sessions struct {
	mu      sync.Mutex
	entries map[string]*sessionEntry
	now     func() time.Time
}

func NewSessions() *Sessions {
	return &Sessions{
		entries: make(map[string]*sessionEntry),
		now:     time.Now,
	}
}

// With runs fn with exclusive access to the session id, creating it if needed.
func (s *Sessions) With(id string, fn func(*Session)) {
	s.run(id, true, fn)
}

// Existing runs fn only if the session id is already known. It reports
// whether fn ran.
func (s *Sessions) Existing(id string, fn func(*Session)) bool {
	if id == "" {
		return false
	}
	return s.run(id, false, fn)
}

func (s *Sessions) run(id string, create bool, fn func(*Session)) bool {
	s.mu.Lock()
	entry, ok := s.entries[id]
	if !ok {
		if !create {
			s.mu.Unlock()
			return false
		}
		entry = &sessionEntry{session: Session{Cart: cart.New()}}
		s.entries[id] = entry
	}
	entry.lastSeen = s.now()
	s.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()
	fn(&entry.session)
	return true
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep drops sessions not used for longer than idle and returns how many
// were dropped. A session is touched before it is locked, so one in use is
// never idle.
func (s *Sessions) Sweep(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-idle)
	removed := 0
	for id, entry := range s.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Expire sweeps idle sessions every interval until ctx is done.
func (s *Sessions) Expire(ctx context.Context, idle, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(idle); n > 0 {
				logger.Debug("expired idle sessions", zap.Int("count", n), zap.Int("remaining", s.Len()))
			}
		}
	}
}

// currentSessionID returns the session ID from the request cookie, or "" when
// there is none. It never issues a cookie.
func currentSessionID(r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	return ""
}

// sessionID returns the caller's session ID, issuing a new cookie when the
// request has none or an invalid one.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if id := currentSessionID(r); id != "" {
		return id
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

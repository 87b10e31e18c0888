package sessions

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"make24/core"
)

// CookieName carries the opaque session identifier.
const CookieName = "make24_session"

// DefaultTTL is how long an idle session survives.
const DefaultTTL = 24 * time.Hour

type session struct {
	username core.Username
	expires  time.Time
}

// Manager is an in-process session store keyed by opaque random identifiers.
// It holds only the authenticated username; challenge bindings live in the
// quiz store, keyed by the same session ID.
type Manager struct {
	mu      sync.Mutex
	ttl     time.Duration
	data    map[string]*session
	onEvict func(id string)
}

func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{ttl: ttl, data: map[string]*session{}}
}

func newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("sessions: crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(b[:])
}

// Ensure returns the request's session ID, creating a session and setting the
// cookie when none exists or the existing one expired.
func (m *Manager) Ensure(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil {
		if m.valid(c.Value) {
			return c.Value
		}
	}
	id := newID()
	m.mu.Lock()
	m.data[id] = &session{expires: time.Now().Add(m.ttl)}
	m.mu.Unlock()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.ttl / time.Second),
	})
	return id
}

// OnEvict registers a callback invoked with each session ID that expires, so
// per-session state held elsewhere (challenge bindings) is released with the
// session. Called outside the manager's lock.
func (m *Manager) OnEvict(fn func(id string)) {
	m.mu.Lock()
	m.onEvict = fn
	m.mu.Unlock()
}

func (m *Manager) valid(id string) bool {
	m.mu.Lock()
	s, ok := m.data[id]
	if !ok {
		m.mu.Unlock()
		return false
	}
	if time.Now().After(s.expires) {
		delete(m.data, id)
		fn := m.onEvict
		m.mu.Unlock()
		if fn != nil {
			fn(id)
		}
		return false
	}
	s.expires = time.Now().Add(m.ttl)
	m.mu.Unlock()
	return true
}

// Username returns the identity bound to the session, or "" when anonymous.
func (m *Manager) Username(id string) core.Username {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.data[id]; ok {
		return s.username
	}
	return ""
}

// SetUsername binds an authenticated identity to the session.
func (m *Manager) SetUsername(id string, user core.Username) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.data[id]; ok {
		s.username = user
	}
}

// Sweep drops expired sessions. Call periodically from the server loop.
func (m *Manager) Sweep() {
	now := time.Now()
	var evicted []string
	m.mu.Lock()
	for id, s := range m.data {
		if now.After(s.expires) {
			delete(m.data, id)
			evicted = append(evicted, id)
		}
	}
	fn := m.onEvict
	m.mu.Unlock()
	if fn != nil {
		for _, id := range evicted {
			fn(id)
		}
	}
}

package flash

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	SessionCookie = "board_session"
	DefaultTTL    = 5 * time.Minute
)

// Manager ties flashes to a browser through a session cookie.
type Manager struct {
	store Store
	ttl   time.Duration
}

func NewManager(store Store, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{store: store, ttl: ttl}
}

// Add queues f for the next page this browser loads. A session cookie is
// issued on the response when the request carries none.
func (m *Manager) Add(w http.ResponseWriter, r *http.Request, f Flash) error {
	id, ok := sessionID(r)
	if !ok {
		id = uuid.New().String()
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return m.store.Put(id, f, m.ttl)
}

// Pop returns the pending flash for the request's session and discards it.
func (m *Manager) Pop(r *http.Request) (Flash, error) {
	id, ok := sessionID(r)
	if !ok {
		return Flash{}, nil
	}
	f, _, err := m.store.Take(id)
	return f, err
}

func sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return "", false
	}
	return c.Value, true
}

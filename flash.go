package inertia

import (
	"errors"
	"maps"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pthm/inertia/lib/encoding"
)

// FlashKey is the prop under which flash values are exposed to every page.
const FlashKey = "flash"

// Conventional flash keys.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashWarning = "warning"
	FlashInfo    = "info"
)

// FlashStore persists one-shot values between a write (usually right before
// a redirect) and the next page render of the same session.
//
// Put receives every value written during the current request. Pull returns
// the stored values and clears them; a second Pull returns nothing.
type FlashStore interface {
	Put(w http.ResponseWriter, r *http.Request, flash Props) error
	Pull(w http.ResponseWriter, r *http.Request) (Props, error)
}

// CookieFlashStore keeps flash values in a signed cookie.
//
// Values round-trip through msgpack, so numbers may come back as a
// different integer width. Call Sensitive to encrypt instead of sign.
type CookieFlashStore struct {
	encoder   *Encoder
	name      string
	path      string
	secure    bool
	sensitive bool
}

// flashMaxAge bounds how long a sealed flash cookie is honoured.
const flashMaxAge = 10 * time.Minute

// NewCookieFlashStore creates a cookie-backed flash store sealed with key.
// The payload is bound to the cookie name and expires after ten minutes.
func NewCookieFlashStore(key []byte) (*CookieFlashStore, error) {
	enc, err := NewEncoder(key, encoding.WithMaxAge(flashMaxAge))
	if err != nil {
		return nil, err
	}
	return &CookieFlashStore{
		encoder: enc,
		name:    "inertia_flash",
		path:    "/",
	}, nil
}

// Sensitive switches the cookie from signed to encrypted.
func (s *CookieFlashStore) Sensitive() *CookieFlashStore {
	s.sensitive = true
	return s
}

// Secure marks the cookie Secure.
func (s *CookieFlashStore) Secure() *CookieFlashStore {
	s.secure = true
	return s
}

// Name overrides the cookie name (default "inertia_flash").
func (s *CookieFlashStore) Name(name string) *CookieFlashStore {
	s.name = name
	return s
}

// Put implements FlashStore.
func (s *CookieFlashStore) Put(w http.ResponseWriter, r *http.Request, flash Props) error {
	merged := Props{}
	if existing, err := s.read(r); err == nil {
		maps.Copy(merged, existing)
	}
	maps.Copy(merged, flash)

	value, err := s.encoder.Encode(s.name, merged, s.sensitive)
	if err != nil {
		return err
	}

	replaceCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    value,
		Path:     s.path,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Pull implements FlashStore. Values written earlier in the same request are
// included. A tampered cookie is cleared and reported as ErrInvalidFlash.
func (s *CookieFlashStore) Pull(w http.ResponseWriter, r *http.Request) (Props, error) {
	pending := takePendingFlash(r.Context())
	if _, err := r.Cookie(s.name); err != nil && len(pending) == 0 {
		return Props{}, nil
	}

	replaceCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    "",
		Path:     s.path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})

	flash, err := s.read(r)
	if err != nil && !errors.Is(err, http.ErrNoCookie) {
		return pending, wrapEncodingError(err)
	}
	if flash == nil {
		flash = Props{}
	}
	maps.Copy(flash, pending)
	return flash, nil
}

func (s *CookieFlashStore) read(r *http.Request) (Props, error) {
	c, err := r.Cookie(s.name)
	if err != nil {
		return nil, err
	}
	data, err := s.encoder.Decode(s.name, c.Value, s.sensitive)
	if err != nil {
		return nil, err
	}
	return Props(data), nil
}

// MemoryFlashStore keeps flash values in process memory, keyed by a session
// cookie holding a random UUID. It suits tests and single-instance servers.
type MemoryFlashStore struct {
	mu       sync.Mutex
	sessions map[string]Props
	cookie   string
}

// NewMemoryFlashStore creates an empty in-memory flash store.
func NewMemoryFlashStore() *MemoryFlashStore {
	return &MemoryFlashStore{
		sessions: make(map[string]Props),
		cookie:   "inertia_session",
	}
}

// Put implements FlashStore.
func (s *MemoryFlashStore) Put(w http.ResponseWriter, r *http.Request, flash Props) error {
	id := s.sessionID(w, r)

	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.sessions[id]
	if !ok {
		stored = Props{}
		s.sessions[id] = stored
	}
	maps.Copy(stored, flash)
	return nil
}

// Pull implements FlashStore.
func (s *MemoryFlashStore) Pull(w http.ResponseWriter, r *http.Request) (Props, error) {
	takePendingFlash(r.Context())

	var id string
	if c, err := r.Cookie(s.cookie); err == nil {
		id = c.Value
	} else if st := stateFrom(r.Context()); st != nil {
		st.mu.Lock()
		id = st.sessionID
		st.mu.Unlock()
	}
	if id == "" {
		return Props{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	flash, ok := s.sessions[id]
	if !ok {
		return Props{}, nil
	}
	delete(s.sessions, id)
	return flash, nil
}

// Len returns the number of sessions holding unread flash values.
func (s *MemoryFlashStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// sessionID returns the caller's session id, issuing a new one on first use.
// A new id is remembered on the request state so repeated writes in the same
// request land in the same session.
func (s *MemoryFlashStore) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(s.cookie); err == nil && c.Value != "" {
		return c.Value
	}

	st := stateFrom(r.Context())
	if st != nil {
		st.mu.Lock()
		defer st.mu.Unlock()
		if st.sessionID != "" {
			return st.sessionID
		}
	}

	id := uuid.NewString()
	if st != nil {
		st.sessionID = id
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// replaceCookie sets c, dropping any Set-Cookie header already written for
// the same name.
func replaceCookie(w http.ResponseWriter, c *http.Cookie) {
	h := w.Header()
	prefix := c.Name + "="
	var kept []string
	for _, v := range h.Values("Set-Cookie") {
		if !strings.HasPrefix(v, prefix) {
			kept = append(kept, v)
		}
	}
	h.Del("Set-Cookie")
	for _, v := range kept {
		h.Add("Set-Cookie", v)
	}
	http.SetCookie(w, c)
}

package web

import (
	"context"
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/securecookie"
)

const sessionCookie = "session"

// Session is the signed client-side session: the logged-in user and any
// pending flash messages.
type Session struct {
	UserID  int64
	Flashes []string

	dirty bool
}

// Flash queues a message for the next rendered page.
func (s *Session) Flash(msg string) {
	s.Flashes = append(s.Flashes, msg)
	s.dirty = true
}

// Login replaces the session contents with the given user.
func (s *Session) Login(userID int64) {
	s.UserID = userID
	s.Flashes = nil
	s.dirty = true
}

// Clear empties the session.
func (s *Session) Clear() {
	s.UserID = 0
	s.Flashes = nil
	s.dirty = true
}

func (s *Session) popFlashes() []string {
	flashes := s.Flashes
	if len(flashes) > 0 {
		s.Flashes = nil
		s.dirty = true
	}
	return flashes
}

type sessionKey struct{}

// SessionFromContext returns the request's session. It is never nil inside
// the router.
func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	if s == nil {
		return &Session{}
	}
	return s
}

// sessionStore signs session cookies with a key derived from SECRET_KEY.
type sessionStore struct {
	codec *securecookie.SecureCookie
}

func newSessionStore(secretKey string) *sessionStore {
	hashKey := sha256.Sum256([]byte(secretKey))
	codec := securecookie.New(hashKey[:], nil)
	codec.MaxAge(0)
	return &sessionStore{codec: codec}
}

// load decodes the session cookie. A missing or tampered cookie yields an
// empty session.
func (st *sessionStore) load(r *http.Request) *Session {
	var s Session
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return &s
	}
	if err := st.codec.Decode(sessionCookie, cookie.Value, &s); err != nil {
		return &Session{}
	}
	return &s
}

// save writes the session cookie if the session changed. It must run before
// the response header is written.
func (st *sessionStore) save(w http.ResponseWriter, s *Session) error {
	if !s.dirty {
		return nil
	}
	if s.UserID == 0 && len(s.Flashes) == 0 {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
		s.dirty = false
		return nil
	}

	encoded, err := st.codec.Encode(sessionCookie, s)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.dirty = false
	return nil
}

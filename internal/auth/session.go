package auth

import (
	"errors"
	"net/url"
	"strings"

	"github.com/delitruck/delitruck-backend/internal/storage"
)

// SessionCookieName is the cookie carrying the session ID.
const SessionCookieName = "session_id"

// ErrUnauthenticated is returned whenever a cookie header cannot be
// resolved to a live session. Missing cookie, unknown session, expired
// session and store errors all collapse to this one error so the
// caller never learns which it was.
var ErrUnauthenticated = errors.New("unauthenticated")

// Resolver turns a raw cookie header into an authenticated user ID.
type Resolver interface {
	Resolve(cookieHeader string) (string, error)
}

// SessionResolver resolves session cookies against the session store.
type SessionResolver struct {
	store storage.Store
}

func NewSessionResolver(store storage.Store) *SessionResolver {
	return &SessionResolver{store: store}
}

// Resolve parses the cookie header, extracts the session cookie, strips
// any signing envelope and looks the session up in the store.
func (r *SessionResolver) Resolve(cookieHeader string) (string, error) {
	cookies := parseCookies(cookieHeader)
	raw, ok := cookies[SessionCookieName]
	if !ok || raw == "" {
		return "", ErrUnauthenticated
	}

	session, err := r.store.GetSession(stripSignature(raw))
	if err != nil || session == nil {
		return "", ErrUnauthenticated
	}
	if session.Expired() {
		return "", ErrUnauthenticated
	}
	return session.UserID, nil
}

// parseCookies splits a Cookie header into name/value pairs. Malformed
// pairs are skipped rather than failing the whole header.
func parseCookies(header string) map[string]string {
	cookies := make(map[string]string)
	for _, part := range strings.Split(header, ";") {
		name, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found || name == "" {
			continue
		}
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		cookies[name] = value
	}
	return cookies
}

// stripSignature removes the signed-cookie envelope: an "s:" prefix and
// a ".signature" suffix. A bare session ID passes through unchanged.
func stripSignature(raw string) string {
	raw = strings.TrimPrefix(raw, "s:")
	if i := strings.Index(raw, "."); i >= 0 {
		raw = raw[:i]
	}
	return raw
}

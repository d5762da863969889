package gate

import (
	"net/http"
	"strings"
	"time"
)

// DefaultCookieName is the session cookie used when none is configured.
const DefaultCookieName = "athletix_session"

// Cookie writes and reads the session cookie.
type Cookie struct {
	Name   string
	Secure bool
}

// Set stores token in the session cookie until expires.
func (c Cookie) Set(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session cookie.
func (c Cookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c Cookie) name() string {
	if c.Name == "" {
		return DefaultCookieName
	}
	return c.Name
}

// tokenSource says where a request's token was found.
type tokenSource int

const (
	sourceNone tokenSource = iota
	sourceCookie
	sourceBearer
)

// token extracts the session token from the cookie, falling back to an
// Authorization bearer header.
func (c Cookie) token(r *http.Request) (string, tokenSource) {
	if ck, err := r.Cookie(c.name()); err == nil && ck.Value != "" {
		return ck.Value, sourceCookie
	}
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		if t := strings.TrimSpace(h[7:]); t != "" {
			return t, sourceBearer
		}
	}
	return "", sourceNone
}

package middleware

// identity.go resolves who is calling: the signed-in user set by JWTAuth and
// the anonymous visitor session carried in a cookie.

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// SessionCookie names the cookie holding the visitor session id.
	SessionCookie = "cv_session"
	// SessionHeader may carry the session id for clients without cookies.
	SessionHeader = "X-Session-ID"
	// SessionIDKey is the context key holding the session id.
	SessionIDKey = "session_id"
)

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(c echo.Context) string {
	if s, ok := c.Get(UserIDKey).(string); ok {
		return s
	}
	return ""
}

// SessionID returns the visitor session id set by Session.
func SessionID(c echo.Context) string {
	s, _ := c.Get(SessionIDKey).(string)
	return s
}

// Session makes sure every request has a visitor session id.  An existing
// id is taken from the header or cookie when it parses as a UUID; otherwise
// a new one is issued and set as a cookie valid for ttl.
func Session(ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(SessionHeader)
			if id == "" {
				if ck, err := c.Cookie(SessionCookie); err == nil {
					id = ck.Value
				}
			}
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     SessionCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   int(ttl / time.Second),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			c.Set(SessionIDKey, id)
			c.Response().Header().Set(SessionHeader, id)
			return next(c)
		}
	}
}

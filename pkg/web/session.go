package web

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/harrisonrobin/taskboard/pkg/session"
)

const (
	sessionCookieName = "taskboard_session"
	sessionContextKey = "session"
)

// withSession loads the caller's session, or a new unsaved one when the cookie
// is missing or stale. The cookie is only issued once a session is saved.
func (s *Server) withSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		var id string
		if ck, err := c.Cookie(sessionCookieName); err == nil {
			id = ck.Value
		}
		sess, err := s.sessions.Load(c.Request().Context(), id)
		if err != nil {
			s.log.WithError(err).Error("could not load session")
			return echo.NewHTTPError(http.StatusServiceUnavailable, "session store unavailable")
		}
		c.Set(sessionContextKey, sess)
		return next(c)
	}
}

func (s *Server) requirePage(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.guard.IsAuthenticated(currentSession(c)) {
			return c.Redirect(http.StatusSeeOther, "/login")
		}
		return next(c)
	}
}

func (s *Server) requireAPI(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.guard.IsAuthenticated(currentSession(c)) {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		}
		return next(c)
	}
}

func currentSession(c echo.Context) *session.Session {
	sess, _ := c.Get(sessionContextKey).(*session.Session)
	return sess
}

func (s *Server) setSessionCookie(c echo.Context, id string) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.opts.SessionTTL.Seconds()),
	})
}

func (s *Server) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// flash stores a one-shot message and saves the session.
func (s *Server) flash(c echo.Context, msg string, isErr bool) {
	sess := currentSession(c)
	sess.Flash, sess.FlashError = msg, isErr
	if err := s.sessions.Save(c.Request().Context(), sess); err != nil {
		s.log.WithError(err).Warn("could not save session")
	}
}

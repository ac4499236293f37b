package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/harrisonrobin/taskboard/pkg/metrics"
	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/store"
)

type loginView struct {
	Failed bool
}

type boardView struct {
	Username      string
	Flash         string
	FlashError    bool
	LoadError     string
	Columns       []metrics.Column
	Summary       metrics.Summary
	Owners        []string
	EffortMin     int
	EffortMax     int
	DefaultEffort int
}

func (s *Server) loginPage(c echo.Context) error {
	sess := currentSession(c)
	if s.guard.IsAuthenticated(sess) {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	failed := sess.LastAttemptFailed
	if failed {
		sess.LastAttemptFailed = false
		if err := s.sessions.Save(c.Request().Context(), sess); err != nil {
			s.log.WithError(err).Warn("could not save session")
		}
	}
	return c.Render(http.StatusOK, "login.html", loginView{Failed: failed})
}

func (s *Server) login(c echo.Context) error {
	ctx := c.Request().Context()
	sess := currentSession(c)
	username := strings.TrimSpace(c.FormValue("username"))

	s.guard.SubmitCredentials(sess, username, c.FormValue("password"))
	if !s.guard.IsAuthenticated(sess) {
		s.log.WithField("username", username).Info("login failed")
		if err := s.sessions.Save(ctx, sess); err != nil {
			return err
		}
		s.setSessionCookie(c, sess.ID)
		return c.Redirect(http.StatusSeeOther, "/login")
	}

	// new session id after login
	fresh, err := s.sessions.Start(ctx)
	if err != nil {
		return err
	}
	fresh.Username = sess.Username
	fresh.Authenticated = true
	if err := s.sessions.Save(ctx, fresh); err != nil {
		return err
	}
	if err := s.sessions.End(ctx, sess); err != nil {
		s.log.WithError(err).Warn("could not drop pre-login session")
	}
	s.setSessionCookie(c, fresh.ID)
	s.log.WithField("username", fresh.Username).Info("login")
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) logout(c echo.Context) error {
	sess := currentSession(c)
	s.guard.LogOut(sess)
	if err := s.sessions.End(c.Request().Context(), sess); err != nil {
		s.log.WithError(err).Warn("could not drop session")
	}
	s.clearSessionCookie(c)
	return c.Redirect(http.StatusSeeOther, "/login")
}

func (s *Server) board(c echo.Context) error {
	sess := currentSession(c)
	tasks, err := s.store.ListTasks(c.Request().Context())

	flash, flashErr := sess.TakeFlash()
	if flash != "" {
		if err := s.sessions.Save(c.Request().Context(), sess); err != nil {
			s.log.WithError(err).Warn("could not save session")
		}
	}

	lo, hi := s.store.EffortRange()
	view := boardView{
		Username:      sess.Username,
		Flash:         flash,
		FlashError:    flashErr,
		Columns:       metrics.Board(tasks),
		Summary:       metrics.Summarize(tasks),
		Owners:        s.store.Owners(),
		EffortMin:     lo,
		EffortMax:     hi,
		DefaultEffort: s.opts.DefaultEffort,
	}
	if err != nil {
		s.log.WithError(err).Error("could not load tasks")
		view.LoadError = userMessage(err)
	}
	return c.Render(http.StatusOK, "board.html", view)
}

func (s *Server) createTask(c echo.Context) error {
	title := c.FormValue("title")
	owner := c.FormValue("owner")
	effort, err := strconv.Atoi(c.FormValue("effort"))
	if err != nil {
		s.flash(c, "Effort must be a number", true)
		return c.Redirect(http.StatusSeeOther, "/")
	}

	task, err := s.store.CreateTask(c.Request().Context(), title, owner, effort)
	if err != nil {
		s.log.WithError(err).Warn("could not create task")
		s.flash(c, userMessage(err), true)
		return c.Redirect(http.StatusSeeOther, "/")
	}
	s.flash(c, fmt.Sprintf("Task %q created", task.Title), false)
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) moveTask(c echo.Context) error {
	id := c.Param("id")
	updated, err := s.store.UpdateTaskField(c.Request().Context(), id, model.FIELD_STATUS, c.FormValue("status"))
	switch {
	case err != nil:
		s.log.WithError(err).WithField("task", id).Warn("could not move task")
		s.flash(c, userMessage(err), true)
	case !updated:
		s.flash(c, "Nothing changed", false)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// userMessage turns a store error into text safe to show on the page.
func userMessage(err error) string {
	switch {
	case errors.Is(err, store.ErrTaskNotFound):
		return "That task no longer exists"
	case isValidation(err):
		return err.Error()
	case errors.Is(err, store.ErrSchemaMismatch):
		return "The task sheet columns do not match the configuration"
	}
	return "Could not reach the task sheet, please try again"
}

func isValidation(err error) bool {
	for _, target := range []error{
		store.ErrInvalidField,
		store.ErrInvalidStatus,
		store.ErrInvalidEffort,
		store.ErrInvalidOwner,
		store.ErrEmptyTitle,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

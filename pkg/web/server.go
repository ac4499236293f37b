package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/harrisonrobin/taskboard/pkg/colors"
	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/session"
)

// TaskStore is the task sheet as seen by the web layer.
type TaskStore interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	UpdateTaskField(ctx context.Context, id string, field model.Field, value string) (bool, error)
	CreateTask(ctx context.Context, title, owner string, effort int) (model.Task, error)
	Owners() []string
	EffortRange() (int, int)
}

type Options struct {
	DefaultEffort int
	SecureCookie  bool
	SessionTTL    time.Duration
	Logger        *log.Logger
}

type Server struct {
	e        *echo.Echo
	store    TaskStore
	guard    *session.Guard
	sessions *session.Manager
	palette  *colors.OwnerPalette
	log      *log.Logger
	opts     Options
}

func New(store TaskStore, guard *session.Guard, sessions *session.Manager, opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}
	lo, hi := store.EffortRange()
	if opts.DefaultEffort < lo || opts.DefaultEffort > hi {
		opts.DefaultEffort = lo
	}

	s := &Server{
		e:        echo.New(),
		store:    store,
		guard:    guard,
		sessions: sessions,
		palette:  colors.NewOwnerPalette(nil),
		log:      opts.Logger,
		opts:     opts,
	}

	r, err := newRenderer(s.templateFuncs())
	if err != nil {
		return nil, err
	}
	s.e.HideBanner = true
	s.e.HidePort = true
	s.e.Renderer = r
	s.e.JSONSerializer = sonicSerializer{}
	s.e.Use(middleware.Recover())
	s.e.Use(requestLogger(s.log))
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.e.GET("/healthz", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	s.e.GET("/login", s.loginPage, s.withSession)
	s.e.POST("/login", s.login, s.withSession)
	s.e.POST("/logout", s.logout, s.withSession)
	s.e.GET("/", s.board, s.withSession, s.requirePage)
	s.e.POST("/tasks", s.createTask, s.withSession, s.requirePage)
	s.e.POST("/tasks/:id/status", s.moveTask, s.withSession, s.requirePage)

	api := s.e.Group("/api", s.withSession, s.requireAPI)
	api.GET("/tasks", s.apiListTasks)
	api.GET("/metrics", s.apiMetrics)
	api.POST("/tasks", s.apiCreateTask)
	api.PATCH("/tasks/:id", s.apiUpdateTask)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.e
}

// Start serves on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", addr)
		if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.e.Shutdown(shutdownCtx)
	}
}

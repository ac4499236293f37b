package web

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/harrisonrobin/taskboard/pkg/metrics"
	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

type tasksResponse struct {
	Tasks []model.Task `json:"tasks"`
}

type metricsResponse struct {
	Summary metrics.Summary  `json:"summary"`
	Board   []metrics.Column `json:"board"`
}

type createTaskRequest struct {
	Title  string `json:"title"`
	Owner  string `json:"owner"`
	Effort int    `json:"effort"`
}

type updateTaskRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type updateTaskResponse struct {
	Updated bool `json:"updated"`
}

func (s *Server) apiListTasks(c echo.Context) error {
	tasks, err := s.store.ListTasks(c.Request().Context())
	if err != nil {
		return s.apiError(c, err)
	}
	return c.JSON(http.StatusOK, tasksResponse{Tasks: tasks})
}

func (s *Server) apiMetrics(c echo.Context) error {
	tasks, err := s.store.ListTasks(c.Request().Context())
	if err != nil {
		return s.apiError(c, err)
	}
	return c.JSON(http.StatusOK, metricsResponse{
		Summary: metrics.Summarize(tasks),
		Board:   metrics.Board(tasks),
	})
}

func (s *Server) apiCreateTask(c echo.Context) error {
	var req createTaskRequest
	if err := c.Echo().JSONSerializer.Deserialize(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
	}
	task, err := s.store.CreateTask(c.Request().Context(), req.Title, req.Owner, req.Effort)
	if err != nil {
		return s.apiError(c, err)
	}
	return c.JSON(http.StatusCreated, task)
}

func (s *Server) apiUpdateTask(c echo.Context) error {
	var req updateTaskRequest
	if err := c.Echo().JSONSerializer.Deserialize(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
	}
	updated, err := s.store.UpdateTaskField(c.Request().Context(), c.Param("id"), model.Field(req.Field), req.Value)
	if err != nil {
		return s.apiError(c, err)
	}
	return c.JSON(http.StatusOK, updateTaskResponse{Updated: updated})
}

func (s *Server) apiError(c echo.Context, err error) error {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, store.ErrTaskNotFound):
		status = http.StatusNotFound
	case isValidation(err):
		status = http.StatusBadRequest
	default:
		s.log.WithError(err).Error("task sheet request failed")
	}
	return c.JSON(status, errorResponse{Error: userMessage(err)})
}

package server

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/existflow/eisenhower/internal/export"
	"github.com/existflow/eisenhower/internal/logger"
	"github.com/existflow/eisenhower/internal/model"
	"github.com/existflow/eisenhower/internal/repository"
	"github.com/existflow/eisenhower/internal/tasks"
	"github.com/labstack/echo/v4"
)

// workspace is one user's task collection. The service is single-writer,
// so every access goes through mu.
type workspace struct {
	mu  sync.Mutex
	svc *tasks.Service
}

func (s *Server) workspace(ctx context.Context, userID string) *workspace {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ws, ok := s.workspaces[userID]; ok {
		return ws
	}
	repo := repository.New(s.store,
		repository.WithUser(userID),
		repository.WithLogger(logger.L().WithFields(logger.F("user_id", userID))))
	ws := &workspace{svc: tasks.New(ctx, repo)}
	s.workspaces[userID] = ws
	return ws
}

// withTasks runs fn against the caller's collection
func (s *Server) withTasks(c echo.Context, fn func(ctx context.Context, svc *tasks.Service) error) error {
	ctx := c.Request().Context()
	ws := s.workspace(ctx, currentUser(c).ID)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return fn(ctx, ws.svc)
}

type moveRequest struct {
	Quadrant string `json:"quadrant"`
}

// filterFromQuery reads q, priority and completed query parameters. The
// priority is case-insensitive; unknown values are rejected.
func filterFromQuery(c echo.Context) (tasks.Filter, bool) {
	f := tasks.DefaultFilter()
	f.Text = c.QueryParam("q")
	if raw := c.QueryParam("priority"); raw != "" && !strings.EqualFold(raw, tasks.PriorityAll) {
		p, ok := model.ParsePriority(raw)
		if !ok {
			return f, false
		}
		f.Priority = string(p)
	}
	if v, err := strconv.ParseBool(c.QueryParam("completed")); err == nil {
		f.ShowCompleted = v
	}
	return f, true
}

func (s *Server) handleListTasks(c echo.Context) error {
	f, ok := filterFromQuery(c)
	if !ok {
		return badRequest(c)
	}
	return s.withTasks(c, func(ctx context.Context, svc *tasks.Service) error {
		return c.JSON(http.StatusOK, svc.Query(f))
	})
}

func (s *Server) handleCreateTask(c echo.Context) error {
	var in model.TaskInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c)
	}
	return s.withTasks(c, func(ctx context.Context, svc *tasks.Service) error {
		t, err := svc.Create(ctx, in)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, t)
	})
}

func (s *Server) handleGetTask(c echo.Context) error {
	return s.withTasks(c, func(ctx context.Context, svc *tasks.Service) error {
		t, err := svc.Get(c.Param("id"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, t)
	})
}

func (s *Server) handleUpdateTask(c echo.Context) error {
	var patch model.TaskPatch
	if err := c.Bind(&patch); err != nil {
		return badRequest(c)
	}
	return s.withTasks(c, func(ctx context.Context, svc *tasks.Service) error {
		t, err := svc.Update(ctx, c.Param("id"), patch)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, t)
	})
}

func (s *Server) handleDeleteTask(c echo.Context) error {
	return s.withTasks(c, func(ctx context.Context, svc *tasks.Service) error {
		svc.Delete(ctx, c.Param("id"))
		return c.NoContent(http.StatusNoContent)
	})
}

func (s *Server) handleToggleTask(c echo.Context) error {
	return s.withTasks(c, func(ctx context.Context, svc *tasks.Service) error {
		t, err := svc.ToggleComplete(ctx, c.Param("id"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, t)
	})
}

func (s *Server) handleMoveTask(c echo.Context) error {
	var req moveRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	q, ok := model.ParseQuadrant(req.Quadrant)
	if !ok {
		q = model.Quadrant(req.Quadrant)
	}
	return s.withTasks(c, func(ctx context.Context, svc *tasks.Service) error {
		t, err := svc.Move(ctx, c.Param("id"), q)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, t)
	})
}

func (s *Server) handleMatrix(c echo.Context) error {
	f, ok := filterFromQuery(c)
	if !ok {
		return badRequest(c)
	}
	return s.withTasks(c, func(ctx context.Context, svc *tasks.Service) error {
		return c.JSON(http.StatusOK, tasks.GroupByQuadrant(svc.Query(f)))
	})
}

func (s *Server) handleStats(c echo.Context) error {
	f, ok := filterFromQuery(c)
	if !ok {
		return badRequest(c)
	}
	return s.withTasks(c, func(ctx context.Context, svc *tasks.Service) error {
		return c.JSON(http.StatusOK, svc.Statistics(svc.Query(f)))
	})
}

func (s *Server) handleExport(c echo.Context) error {
	format := c.QueryParam("format")
	if format == "" {
		format = export.FormatCSV
	}
	if format != export.FormatCSV && format != export.FormatHTML {
		return badRequest(c)
	}

	return s.withTasks(c, func(ctx context.Context, svc *tasks.Service) error {
		now := time.Now()
		var buf bytes.Buffer
		if err := export.Write(&buf, format, svc.All(), now); err != nil {
			return writeError(c, err)
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+export.Filename(format, now)+`"`)
		return c.Blob(http.StatusOK, export.ContentType(format), buf.Bytes())
	})
}

package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/existflow/eisenhower/internal/auth"
	"github.com/existflow/eisenhower/internal/logger"
	"github.com/existflow/eisenhower/internal/model"
	"github.com/existflow/eisenhower/internal/tasks"
	"github.com/existflow/eisenhower/internal/validate"
	"github.com/labstack/echo/v4"
)

const (
	ctxUser  = "user"
	ctxToken = "token"
)

// authMiddleware checks for valid session token
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// Get token from Authorization header
		header := c.Request().Header.Get("Authorization")
		if header == "" {
			return c.JSON(http.StatusUnauthorized, auth.ErrorResponse{Error: "authorization required"})
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			return c.JSON(http.StatusUnauthorized, auth.ErrorResponse{Error: "invalid authorization format"})
		}

		user, err := s.accounts.Authenticate(c.Request().Context(), token)
		if errors.Is(err, auth.ErrInvalidToken) {
			return c.JSON(http.StatusUnauthorized, auth.ErrorResponse{Error: err.Error()})
		}
		if err != nil {
			return writeError(c, err)
		}

		c.Set(ctxUser, user)
		c.Set(ctxToken, token)
		return next(c)
	}
}

func currentUser(c echo.Context) model.User {
	u, _ := c.Get(ctxUser).(model.User)
	return u
}

// writeError maps domain errors onto status codes
func writeError(c echo.Context, err error) error {
	var fieldErrs validate.Errors
	if errors.As(err, &fieldErrs) {
		return c.JSON(http.StatusUnprocessableEntity, auth.ErrorResponse{Errors: fieldErrs})
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, tasks.ErrNotFound), errors.Is(err, auth.ErrUnknownAccount):
		status = http.StatusNotFound
	case errors.Is(err, auth.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, auth.ErrEmailTaken), errors.Is(err, auth.ErrAlreadyPro):
		status = http.StatusConflict
	case errors.Is(err, auth.ErrInvalidToken):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		logger.Error("Request failed",
			logger.F("uri", c.Request().RequestURI),
			logger.F("error", err))
		return c.JSON(status, auth.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(status, auth.ErrorResponse{Error: err.Error()})
}

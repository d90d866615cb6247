package server

import (
	"net/http"

	"github.com/existflow/eisenhower/internal/auth"
	"github.com/labstack/echo/v4"
)

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type confirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func badRequest(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, auth.ErrorResponse{Error: "invalid request"})
}

// handleRegister handles user registration
func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}

	user, session, err := s.accounts.Register(c.Request().Context(), req.Email, req.Name, req.Password)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, auth.SessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      user,
	})
}

// handleLogin handles user login
func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}

	user, session, err := s.accounts.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, auth.SessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      user,
	})
}

// handleMe returns current user info
func (s *Server) handleMe(c echo.Context) error {
	return c.JSON(http.StatusOK, currentUser(c))
}

func (s *Server) handleLogout(c echo.Context) error {
	token, _ := c.Get(ctxToken).(string)
	if err := s.accounts.Logout(c.Request().Context(), token); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleUpgrade(c echo.Context) error {
	user, err := s.accounts.Upgrade(c.Request().Context(), currentUser(c).ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// handlePasswordReset issues a 15 minute reset token. There is no mailer,
// so the token is returned in the response.
func (s *Server) handlePasswordReset(c echo.Context) error {
	var req resetRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}

	reset, err := s.accounts.RequestReset(c.Request().Context(), req.Email)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, auth.ResetResponse{
		Message: "password reset requested",
		Token:   reset.Token,
	})
}

func (s *Server) handlePasswordConfirm(c echo.Context) error {
	var req confirmRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}

	if err := s.accounts.ConfirmReset(c.Request().Context(), req.Token, req.Password); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

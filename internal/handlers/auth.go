package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ytakahashi/todo-sync/internal/models"
	"github.com/ytakahashi/todo-sync/internal/services"
	"github.com/ytakahashi/todo-sync/internal/todolist"
)

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Message         string              `json:"message"`
	User            *models.SessionUser `json:"user"`
	Profile         *models.UserProfile `json:"profile,omitempty"`
	RedirectAfterMs int64               `json:"redirectAfterMs,omitempty"`
}

type authErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func (h *APIHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind sign-up request")
		return c.JSON(http.StatusBadRequest, authErrorResponse{Error: todolist.AlertSignUpFailed})
	}

	out := h.flow.SignUp(c.Request().Context(), req.Name, req.Email, req.Password)
	if out.Err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(out.Err, services.ErrEmailAlreadyInUse):
			status = http.StatusConflict
		case errors.Is(out.Err, services.ErrInvalidEmail), errors.Is(out.Err, services.ErrWeakPassword):
			status = http.StatusBadRequest
		}
		return c.JSON(status, authErrorResponse{Error: out.Alert, Detail: out.Err.Error()})
	}

	return c.JSON(http.StatusCreated, sessionResponse{
		Message: out.Alert,
		User:    out.User,
	})
}

func (h *APIHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind login request")
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}

	out, err := h.flow.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return errorJSON(c, http.StatusUnauthorized, err.Error())
		}
		return errorJSON(c, http.StatusInternalServerError, "login failed")
	}
	if !out.Navigate {
		return errorJSON(c, http.StatusNotFound, out.Alert)
	}

	return c.JSON(http.StatusOK, sessionResponse{
		Message:         out.Alert,
		User:            out.User,
		Profile:         out.Profile,
		RedirectAfterMs: out.NavigateAfter.Milliseconds(),
	})
}

func (h *APIHandler) Me(c echo.Context) error {
	user := sessionFrom(c)
	profile, err := h.store.GetProfile(c.Request().Context(), user.UID)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			return errorJSON(c, http.StatusNotFound, todolist.AlertUserNotExist)
		}
		h.logger.Error().
			Err(err).
			Str("uid", user.UID).
			Msg("failed to get profile")
		return errorJSON(c, http.StatusInternalServerError, "failed to get profile")
	}
	return c.JSON(http.StatusOK, profile)
}

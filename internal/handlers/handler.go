package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ytakahashi/todo-sync/internal/models"
	"github.com/ytakahashi/todo-sync/internal/services"
	"github.com/ytakahashi/todo-sync/internal/todolist"
)

const sessionCtxKey = "session"

type TokenVerifier interface {
	VerifyToken(token string) (*models.SessionUser, error)
}

type APIHandler struct {
	logger zerolog.Logger
	store  services.Store
	tokens TokenVerifier
	flow   *todolist.AuthFlow
}

func NewAPIHandler(logger zerolog.Logger, store services.Store, tokens TokenVerifier, flow *todolist.AuthFlow) *APIHandler {
	return &APIHandler{
		logger: logger,
		store:  store,
		tokens: tokens,
		flow:   flow,
	}
}

func errorJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"error": message})
}

// RequireSession accepts a bearer token in the Authorization header or,
// for websocket clients that cannot set headers, an access_token query
// parameter.
func (h *APIHandler) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := c.QueryParam("access_token")
		if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				h.logger.Warn().Msg("invalid authorization header")
				return errorJSON(c, http.StatusUnauthorized, "invalid authorization header")
			}
			token = parts[1]
		}
		if token == "" {
			return errorJSON(c, http.StatusUnauthorized, "authorization required")
		}

		user, err := h.tokens.VerifyToken(token)
		if err != nil {
			h.logger.Warn().
				Err(err).
				Msg("rejected session token")
			return errorJSON(c, http.StatusUnauthorized, "invalid or expired session")
		}

		c.Set(sessionCtxKey, user)
		return next(c)
	}
}

func sessionFrom(c echo.Context) *models.SessionUser {
	user, _ := c.Get(sessionCtxKey).(*models.SessionUser)
	return user
}

func (h *APIHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

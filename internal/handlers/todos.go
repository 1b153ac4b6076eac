package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ytakahashi/todo-sync/internal/models"
	"github.com/ytakahashi/todo-sync/internal/services"
	"github.com/ytakahashi/todo-sync/internal/todolist"
)

type todoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type todoResponse struct {
	Message string       `json:"message"`
	Todo    *models.Todo `json:"todo,omitempty"`
}

type todoListResponse struct {
	Todos []models.Todo `json:"todos"`
}

func (h *APIHandler) ListTodos(c echo.Context) error {
	user := sessionFrom(c)
	todos, err := h.store.ListTodos(c.Request().Context(), user.UID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("uid", user.UID).
			Msg("failed to list todos")
		return errorJSON(c, http.StatusInternalServerError, "failed to list todos")
	}

	return c.JSON(http.StatusOK, todoListResponse{Todos: todolist.SortForDisplay(todos)})
}

func (h *APIHandler) CreateTodo(c echo.Context) error {
	user := sessionFrom(c)

	var req todoRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}

	todo, err := todolist.NewTodo(user.UID, req.Title, req.Description, time.Now())
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	created, err := h.store.CreateTodo(c.Request().Context(), todo)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("uid", user.UID).
			Msg("failed to create todo")
		return errorJSON(c, http.StatusInternalServerError, "failed to create todo")
	}

	h.logger.Info().
		Str("todo_id", created.ID).
		Str("uid", user.UID).
		Msg("created todo")
	return c.JSON(http.StatusCreated, todoResponse{Message: todolist.ToastAdded, Todo: created})
}

func (h *APIHandler) UpdateTodo(c echo.Context) error {
	user := sessionFrom(c)
	id := c.Param("id")

	var req todoRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Title) == "" {
		return errorJSON(c, http.StatusBadRequest, todolist.ErrEmptyTitle.Error())
	}

	if err := h.ownedTodo(c, user, id); err != nil {
		return err
	}

	ctx := c.Request().Context()
	err := h.store.UpdateTodo(ctx, id, models.TodoUpdate{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return h.storeError(c, err, id, "failed to update todo")
	}

	updated, err := h.store.GetTodo(ctx, id)
	if err != nil {
		return h.storeError(c, err, id, "failed to get todo")
	}

	h.logger.Info().
		Str("todo_id", id).
		Msg("updated todo")
	return c.JSON(http.StatusOK, todoResponse{Message: todolist.ToastSaved, Todo: updated})
}

func (h *APIHandler) DeleteTodo(c echo.Context) error {
	user := sessionFrom(c)
	id := c.Param("id")

	if err := h.ownedTodo(c, user, id); err != nil {
		return err
	}

	if err := h.store.DeleteTodo(c.Request().Context(), id); err != nil {
		return h.storeError(c, err, id, "failed to delete todo")
	}

	h.logger.Info().
		Str("todo_id", id).
		Msg("deleted todo")
	return c.JSON(http.StatusOK, todoResponse{Message: todolist.ToastDeleted})
}

// ownedTodo writes a 404 unless id exists and belongs to user, so that
// other users' IDs are indistinguishable from missing ones.
func (h *APIHandler) ownedTodo(c echo.Context, user *models.SessionUser, id string) error {
	todo, err := h.store.GetTodo(c.Request().Context(), id)
	if err != nil {
		return h.storeError(c, err, id, "failed to get todo")
	}
	if todo.OwnerID != user.UID {
		h.logger.Warn().
			Str("todo_id", id).
			Str("uid", user.UID).
			Msg("todo belongs to another user")
		return errorJSON(c, http.StatusNotFound, services.ErrTodoNotFound.Error())
	}
	return nil
}

func (h *APIHandler) storeError(c echo.Context, err error, id, message string) error {
	if errors.Is(err, services.ErrTodoNotFound) {
		return errorJSON(c, http.StatusNotFound, err.Error())
	}
	h.logger.Error().
		Err(err).
		Str("todo_id", id).
		Msg(message)
	return errorJSON(c, http.StatusInternalServerError, message)
}

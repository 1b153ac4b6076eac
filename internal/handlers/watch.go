package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/ytakahashi/todo-sync/internal/models"
	"github.com/ytakahashi/todo-sync/internal/todolist"
)

const watchWriteWait = 10 * time.Second

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 32 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type watchMessage struct {
	Todos []models.Todo `json:"todos"`
}

// WatchTodos streams the caller's full todo list, in display order, each
// time it changes. The stream ends when the client goes away.
func (h *APIHandler) WatchTodos(c echo.Context) error {
	user := sessionFrom(c)

	conn, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("websocket upgrade failed")
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	watch, err := h.store.WatchTodos(ctx, user.UID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("uid", user.UID).
			Msg("failed to watch todos")
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "failed to watch todos"))
		return nil
	}
	defer watch.Stop()

	// Hijacked connections don't cancel the request context, so a reader
	// is needed to notice the client leaving.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	h.logger.Info().
		Str("uid", user.UID).
		Msg("todo watch opened")

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().
				Str("uid", user.UID).
				Msg("todo watch closed")
			return nil
		case todos, ok := <-watch.C:
			if !ok {
				if err := watch.Err(); err != nil {
					h.logger.Error().
						Err(err).
						Str("uid", user.UID).
						Msg("todo watch failed")
				}
				return nil
			}

			_ = conn.SetWriteDeadline(time.Now().Add(watchWriteWait))
			err := conn.WriteJSON(watchMessage{Todos: todolist.SortForDisplay(todos)})
			if err != nil {
				h.logger.Warn().
					Err(err).
					Str("uid", user.UID).
					Msg("failed to write todo snapshot")
				return nil
			}
		}
	}
}

package cli

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ytakahashi/todo-sync/internal/models"
	"github.com/ytakahashi/todo-sync/internal/services"
	"github.com/ytakahashi/todo-sync/internal/todolist"
)

type credentials struct {
	email    string
	password string
}

func (c *credentials) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.email, "email", "", "Account email")
	cmd.Flags().StringVar(&c.password, "password", "", "Account password (default: $TODO_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
}

// signIn opens the store and signs in. The caller closes the store.
func (c *credentials) signIn(ctx context.Context, a *App) (services.Store, *models.SessionUser, error) {
	password := c.password
	if password == "" {
		password = os.Getenv("TODO_PASSWORD")
	}
	if password == "" {
		return nil, nil, errors.New("password required: pass --password or set TODO_PASSWORD")
	}

	store, auth, err := a.open(ctx, a)
	if err != nil {
		return nil, nil, err
	}

	user, err := auth.SignIn(ctx, c.email, password)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return store, user, nil
}

func newListCmd(a *App) *cobra.Command {
	var creds credentials

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print your todos, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, user, err := creds.signIn(ctx, a)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer store.Close()

			todos, err := store.ListTodos(ctx, user.UID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, a, todolist.SortForDisplay(todos))
		},
	}
	creds.register(cmd)
	return cmd
}

func newAddCmd(a *App) *cobra.Command {
	var (
		creds       credentials
		title       string
		description string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a todo",
		RunE: func(cmd *cobra.Command, args []string) error {
			todo, err := todolist.NewTodo("", title, description, time.Now())
			if err != nil {
				return writeErr(cmd, err)
			}

			ctx := cmd.Context()
			store, user, err := creds.signIn(ctx, a)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer store.Close()

			todo.OwnerID = user.UID
			created, err := store.CreateTodo(ctx, todo)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, a, created)
		},
	}
	creds.register(cmd)
	cmd.Flags().StringVar(&title, "title", "", "Todo title")
	cmd.Flags().StringVar(&description, "description", "", "Todo description")
	return cmd
}

package services

import (
	"context"
	"errors"

	"github.com/ytakahashi/todo-sync/internal/models"
)

var (
	ErrTodoNotFound    = errors.New("todo not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
)

type TodoStore interface {
	// CreateTodo stores a new record and returns it with its assigned ID.
	CreateTodo(ctx context.Context, todo models.Todo) (*models.Todo, error)

	// GetTodo returns ErrTodoNotFound if no record has the given ID.
	GetTodo(ctx context.Context, id string) (*models.Todo, error)

	// ListTodos returns the owner's records in store order.
	ListTodos(ctx context.Context, ownerID string) ([]models.Todo, error)

	// UpdateTodo changes title and description only.
	//
	// It returns ErrTodoNotFound if the record doesn't exist.
	UpdateTodo(ctx context.Context, id string, update models.TodoUpdate) error

	// DeleteTodo returns ErrTodoNotFound if the record doesn't exist.
	DeleteTodo(ctx context.Context, id string) error

	// WatchTodos opens a live subscription delivering the owner's full
	// result set whenever it changes, starting with the current one.
	WatchTodos(ctx context.Context, ownerID string) (*TodoWatch, error)
}

type ProfileStore interface {
	CreateProfile(ctx context.Context, profile models.UserProfile) error

	// GetProfile returns ErrProfileNotFound if users/{uid} is absent.
	GetProfile(ctx context.Context, uid string) (*models.UserProfile, error)
}

type AccountStore interface {
	// CreateAccount returns ErrAccountExists if the email is taken.
	CreateAccount(ctx context.Context, account models.Account) error

	// GetAccount looks an account up by normalized email.
	GetAccount(ctx context.Context, email string) (*models.Account, error)
}

// Store is the document store the application runs against.
type Store interface {
	TodoStore
	ProfileStore
	AccountStore
	Close() error
}

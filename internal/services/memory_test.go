package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ytakahashi/todo-sync/internal/models"
)

func receive(t *testing.T, w *TodoWatch) []models.Todo {
	t.Helper()
	select {
	case todos, ok := <-w.C:
		if !ok {
			t.Fatalf("watch closed unexpectedly: %v", w.Err())
		}
		return todos
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return nil
}

func TestMemoryStoreTodoCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	created, err := s.CreateTodo(ctx, models.Todo{
		Title:     "Buy milk",
		DateAdded: "2024-05-01T10:00:00.000Z",
		OwnerID:   "u1",
	})
	if err != nil {
		t.Fatalf("CreateTodo failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("CreateTodo did not assign an ID")
	}

	err = s.UpdateTodo(ctx, created.ID, models.TodoUpdate{Title: "Buy oat milk", Description: "2%"})
	if err != nil {
		t.Fatalf("UpdateTodo failed: %v", err)
	}

	got, err := s.GetTodo(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTodo failed: %v", err)
	}
	if got.Title != "Buy oat milk" || got.Description != "2%" {
		t.Errorf("updated todo: got %+v", got)
	}
	if got.DateAdded != created.DateAdded || got.OwnerID != "u1" {
		t.Errorf("immutable fields changed: got %+v", got)
	}

	if err := s.DeleteTodo(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTodo failed: %v", err)
	}
	if _, err := s.GetTodo(ctx, created.ID); !errors.Is(err, ErrTodoNotFound) {
		t.Errorf("GetTodo after delete: got %v, want ErrTodoNotFound", err)
	}
	if err := s.DeleteTodo(ctx, created.ID); !errors.Is(err, ErrTodoNotFound) {
		t.Errorf("second DeleteTodo: got %v, want ErrTodoNotFound", err)
	}
	if err := s.UpdateTodo(ctx, created.ID, models.TodoUpdate{Title: "x"}); !errors.Is(err, ErrTodoNotFound) {
		t.Errorf("UpdateTodo on missing: got %v, want ErrTodoNotFound", err)
	}
}

func TestMemoryStoreListFiltersByOwner(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for _, owner := range []string{"u1", "u2", "u1"} {
		if _, err := s.CreateTodo(ctx, models.Todo{Title: "t", OwnerID: owner}); err != nil {
			t.Fatalf("CreateTodo failed: %v", err)
		}
	}

	todos, err := s.ListTodos(ctx, "u1")
	if err != nil {
		t.Fatalf("ListTodos failed: %v", err)
	}
	if len(todos) != 2 {
		t.Fatalf("ListTodos(u1): got %d, want 2", len(todos))
	}
	for _, todo := range todos {
		if todo.OwnerID != "u1" {
			t.Errorf("ListTodos(u1) returned owner %q", todo.OwnerID)
		}
	}
}

func TestMemoryStoreWatchDeliversFullSnapshots(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	w, err := s.WatchTodos(ctx, "u1")
	if err != nil {
		t.Fatalf("WatchTodos failed: %v", err)
	}
	defer w.Stop()

	if initial := receive(t, w); len(initial) != 0 {
		t.Fatalf("initial snapshot: got %d todos, want 0", len(initial))
	}

	if _, err := s.CreateTodo(ctx, models.Todo{Title: "a", OwnerID: "u1"}); err != nil {
		t.Fatalf("CreateTodo failed: %v", err)
	}
	if snap := receive(t, w); len(snap) != 1 {
		t.Fatalf("after create: got %d todos, want 1", len(snap))
	}

	// Writes for other owners never wake this watch.
	if _, err := s.CreateTodo(ctx, models.Todo{Title: "b", OwnerID: "u2"}); err != nil {
		t.Fatalf("CreateTodo failed: %v", err)
	}
	if _, err := s.CreateTodo(ctx, models.Todo{Title: "c", OwnerID: "u1"}); err != nil {
		t.Fatalf("CreateTodo failed: %v", err)
	}
	snap := receive(t, w)
	if len(snap) != 2 {
		t.Fatalf("after second create: got %d todos, want 2", len(snap))
	}
	for _, todo := range snap {
		if todo.OwnerID != "u1" {
			t.Errorf("snapshot contains owner %q", todo.OwnerID)
		}
	}
}

func TestMemoryStoreWatchStop(t *testing.T) {
	s := NewMemoryStore()
	w, err := s.WatchTodos(context.Background(), "u1")
	if err != nil {
		t.Fatalf("WatchTodos failed: %v", err)
	}
	receive(t, w)

	w.Stop()
	w.Stop()

	if _, ok := <-w.C; ok {
		t.Fatal("channel still open after Stop")
	}
	if err := w.Err(); err != nil {
		t.Errorf("Err after Stop: got %v, want nil", err)
	}

	s.watchMu.Lock()
	n := len(s.watchers)
	s.watchMu.Unlock()
	if n != 0 {
		t.Errorf("watchers after Stop: got %d, want 0", n)
	}
}

func TestMemoryStoreWatchEndsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewMemoryStore()
	w, err := s.WatchTodos(ctx, "u1")
	if err != nil {
		t.Fatalf("WatchTodos failed: %v", err)
	}
	cancel()

	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not end after context cancel")
	}
}

func TestMemoryStoreProfilesAndAccounts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.GetProfile(ctx, "u1"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("GetProfile on missing: got %v, want ErrProfileNotFound", err)
	}
	if err := s.CreateProfile(ctx, models.UserProfile{UID: "u1", Name: "Ann", Email: "ann@example.com"}); err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}
	profile, err := s.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if profile.Name != "Ann" {
		t.Errorf("profile name: got %q, want Ann", profile.Name)
	}

	account := models.Account{UID: "u1", Email: "ann@example.com"}
	if err := s.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if err := s.CreateAccount(ctx, models.Account{UID: "u2", Email: " ANN@example.com "}); !errors.Is(err, ErrAccountExists) {
		t.Errorf("duplicate CreateAccount: got %v, want ErrAccountExists", err)
	}
	got, err := s.GetAccount(ctx, "Ann@Example.com")
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if got.UID != "u1" {
		t.Errorf("account uid: got %q, want u1", got.UID)
	}
	if _, err := s.GetAccount(ctx, "bob@example.com"); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("GetAccount on missing: got %v, want ErrAccountNotFound", err)
	}
}

func TestAccountKeyIsNormalized(t *testing.T) {
	if accountKey("Ann@Example.com ") != accountKey("ann@example.com") {
		t.Error("accountKey differs for equivalent emails")
	}
	if len(accountKey("ann@example.com")) != 64 {
		t.Errorf("accountKey length: got %d, want 64", len(accountKey("ann@example.com")))
	}
}

package todolist

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ytakahashi/todo-sync/internal/models"
	"github.com/ytakahashi/todo-sync/internal/services"
)

// snapshots collects onChange deliveries from a Synchronizer.
type snapshots chan []models.Todo

func (s snapshots) onChange(display []models.Todo) {
	s <- display
}

// waitFor drains deliveries until one satisfies cond.
func (s snapshots) waitFor(t *testing.T, cond func([]models.Todo) bool) []models.Todo {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case display := <-s:
			if cond(display) {
				return display
			}
		case <-deadline:
			t.Fatal("timed out waiting for todo list update")
			return nil
		}
	}
}

func hasLen(n int) func([]models.Todo) bool {
	return func(display []models.Todo) bool { return len(display) == n }
}

type fixture struct {
	store  *services.MemoryStore
	sync   *Synchronizer
	editor *Editor
	events snapshots
	user   *models.SessionUser
}

func newFixture(t *testing.T, uid string) *fixture {
	t.Helper()
	store := services.NewMemoryStore()
	events := make(snapshots, 64)
	s := NewSynchronizer(zerolog.Nop(), store, events.onChange)
	f := &fixture{
		store:  store,
		sync:   s,
		editor: NewEditor(zerolog.Nop(), store, s),
		events: events,
		user:   &models.SessionUser{UID: uid},
	}

	unsubscribe, err := s.Subscribe(context.Background(), uid)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	t.Cleanup(unsubscribe)
	events.waitFor(t, hasLen(0))
	return f
}

func (f *fixture) compose(t *testing.T, title, description string) Outcome {
	t.Helper()
	f.editor.SetTitle(title)
	f.editor.SetDescription(description)
	out, err := f.editor.Submit(context.Background(), f.user)
	if err != nil {
		t.Fatalf("Submit(%q) failed: %v", title, err)
	}
	return out
}

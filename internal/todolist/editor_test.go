package todolist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ytakahashi/todo-sync/internal/models"
	"github.com/ytakahashi/todo-sync/internal/services"
)

func TestEditorComposeCreatesRecord(t *testing.T) {
	f := newFixture(t, "u1")
	f.editor.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }

	out := f.compose(t, "Buy milk", "2%")
	if out.Toast != ToastAdded || !out.FocusTitle {
		t.Errorf("outcome: got %+v", out)
	}

	display := f.events.waitFor(t, hasLen(1))
	got := display[0]
	if got.Title != "Buy milk" || got.Description != "2%" {
		t.Errorf("record: got %+v", got)
	}
	if got.OwnerID != "u1" {
		t.Errorf("ownerId: got %q, want u1", got.OwnerID)
	}
	if got.Completed {
		t.Error("new record is completed")
	}
	if got.DateAdded != "2024-05-01T10:00:00.000Z" {
		t.Errorf("dateAdded: got %q", got.DateAdded)
	}

	title, description := f.editor.Buffers()
	if title != "" || description != "" {
		t.Errorf("buffers not cleared: %q, %q", title, description)
	}
	if f.editor.Mode() != Composing {
		t.Errorf("mode: got %s, want composing", f.editor.Mode())
	}
}

func TestEditorEachComposeAddsExactlyOne(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "u1")

	for i, title := range []string{"a", "b", " c ", "d"} {
		before, err := f.store.ListTodos(ctx, "u1")
		if err != nil {
			t.Fatalf("ListTodos failed: %v", err)
		}
		f.compose(t, title, "")
		after, err := f.store.ListTodos(ctx, "u1")
		if err != nil {
			t.Fatalf("ListTodos failed: %v", err)
		}
		if len(after) != len(before)+1 {
			t.Fatalf("compose %d: size %d -> %d", i, len(before), len(after))
		}
	}
}

func TestEditorEmptyTitleIsIgnored(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "u1")

	for _, title := range []string{"", "   ", "\t\n"} {
		f.editor.SetTitle(title)
		f.editor.SetDescription("kept")
		_, err := f.editor.Submit(ctx, f.user)
		if !errors.Is(err, ErrEmptyTitle) {
			t.Fatalf("Submit(%q): got %v, want ErrEmptyTitle", title, err)
		}
	}

	todos, err := f.store.ListTodos(ctx, "u1")
	if err != nil {
		t.Fatalf("ListTodos failed: %v", err)
	}
	if len(todos) != 0 {
		t.Errorf("store has %d todos, want 0", len(todos))
	}
	if _, description := f.editor.Buffers(); description != "kept" {
		t.Errorf("description buffer: got %q, want kept", description)
	}
}

func TestEditorEmptyTitleIsIgnoredWhileEditing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "u1")
	f.compose(t, "Buy milk", "2%")
	display := f.events.waitFor(t, hasLen(1))

	if err := f.editor.BeginEditAt(display, 0); err != nil {
		t.Fatalf("BeginEditAt failed: %v", err)
	}
	f.editor.SetTitle("  ")
	if _, err := f.editor.Submit(ctx, f.user); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("Submit: got %v, want ErrEmptyTitle", err)
	}
	if f.editor.Mode() != Editing || f.editor.EditingID() != display[0].ID {
		t.Errorf("state: mode %s, id %q", f.editor.Mode(), f.editor.EditingID())
	}

	todos, err := f.store.ListTodos(ctx, "u1")
	if err != nil {
		t.Fatalf("ListTodos failed: %v", err)
	}
	if len(todos) != 1 || todos[0].Title != "Buy milk" {
		t.Errorf("store: got %+v, want the unchanged record", todos)
	}
}

func TestEditorEditKeepsImmutableFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "u1")
	f.compose(t, "Buy milk", "2%")
	display := f.events.waitFor(t, hasLen(1))
	original := display[0]

	if err := f.editor.BeginEditAt(display, 0); err != nil {
		t.Fatalf("BeginEditAt failed: %v", err)
	}
	if f.editor.Mode() != Editing || f.editor.EditingID() != original.ID {
		t.Fatalf("state: mode %s, id %q", f.editor.Mode(), f.editor.EditingID())
	}
	title, description := f.editor.Buffers()
	if title != "Buy milk" || description != "2%" {
		t.Fatalf("buffers: got %q, %q", title, description)
	}

	f.editor.SetTitle("Buy oat milk")
	out, err := f.editor.Submit(ctx, f.user)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if out.Toast != ToastSaved {
		t.Errorf("toast: got %q, want %q", out.Toast, ToastSaved)
	}
	if f.editor.Mode() != Composing {
		t.Errorf("mode after save: got %s", f.editor.Mode())
	}

	updated, err := f.store.GetTodo(ctx, original.ID)
	if err != nil {
		t.Fatalf("GetTodo failed: %v", err)
	}
	if updated.Title != "Buy oat milk" || updated.Description != "2%" {
		t.Errorf("updated: got %+v", updated)
	}
	if updated.DateAdded != original.DateAdded || updated.OwnerID != original.OwnerID || updated.Completed != original.Completed {
		t.Errorf("immutable fields changed: before %+v after %+v", original, updated)
	}
}

func TestEditorCancelLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "u1")
	f.compose(t, "keep me", "")
	display := f.events.waitFor(t, hasLen(1))

	if err := f.editor.BeginEditAt(display, 0); err != nil {
		t.Fatalf("BeginEditAt failed: %v", err)
	}
	f.editor.SetTitle("changed")
	out := f.editor.Cancel()
	if !out.FocusTitle {
		t.Error("Cancel did not request focus")
	}
	if f.editor.Mode() != Composing || f.editor.EditingID() != "" {
		t.Errorf("state after cancel: %s %q", f.editor.Mode(), f.editor.EditingID())
	}
	if title, _ := f.editor.Buffers(); title != "" {
		t.Errorf("title buffer after cancel: %q", title)
	}

	todos, _ := f.store.ListTodos(ctx, "u1")
	if todos[0].Title != "keep me" {
		t.Errorf("store title: got %q", todos[0].Title)
	}
}

func TestEditorDeleteAtRemovesExactlyThatRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "u1")
	for _, d := range []string{"2024-05-03T00:00:00.000Z", "2024-05-01T00:00:00.000Z", "2024-05-02T00:00:00.000Z"} {
		if _, err := f.store.CreateTodo(ctx, models.Todo{Title: d, DateAdded: d, OwnerID: "u1"}); err != nil {
			t.Fatalf("CreateTodo failed: %v", err)
		}
	}
	display := f.events.waitFor(t, hasLen(3))
	target := display[1]

	out, err := f.editor.DeleteAt(ctx, f.user, display, 1)
	if err != nil {
		t.Fatalf("DeleteAt failed: %v", err)
	}
	if out.Toast != ToastDeleted {
		t.Errorf("toast: got %q", out.Toast)
	}

	display = f.events.waitFor(t, hasLen(2))
	for _, todo := range display {
		if todo.ID == target.ID {
			t.Fatalf("deleted record %s still listed", target.ID)
		}
	}

	if _, err := f.editor.DeleteAt(ctx, f.user, display, 5); !errors.Is(err, ErrIndexOutOfView) {
		t.Errorf("DeleteAt(5): got %v, want ErrIndexOutOfView", err)
	}
}

func TestEditorIndexActionsUseTheShownList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "u1")
	if _, err := f.store.CreateTodo(ctx, models.Todo{Title: "shown", DateAdded: "2024-05-02T00:00:00.000Z", OwnerID: "u1"}); err != nil {
		t.Fatalf("CreateTodo failed: %v", err)
	}
	shown := f.events.waitFor(t, hasLen(1))

	// Another device adds an older record after the list was rendered.
	if _, err := f.store.CreateTodo(ctx, models.Todo{Title: "other-device", DateAdded: "2024-05-01T00:00:00.000Z", OwnerID: "u1"}); err != nil {
		t.Fatalf("CreateTodo failed: %v", err)
	}
	if live := f.events.waitFor(t, hasLen(2)); live[0].Title != "other-device" {
		t.Fatalf("live order: got %q first", live[0].Title)
	}

	if err := f.editor.BeginEditAt(shown, 0); err != nil {
		t.Fatalf("BeginEditAt failed: %v", err)
	}
	if title, _ := f.editor.Buffers(); title != "shown" {
		t.Errorf("editing %q, want shown", title)
	}
	f.editor.Cancel()

	if _, err := f.editor.DeleteAt(ctx, f.user, shown, 0); err != nil {
		t.Fatalf("DeleteAt failed: %v", err)
	}
	remaining := f.events.waitFor(t, hasLen(1))
	if remaining[0].Title != "other-device" {
		t.Errorf("remaining: got %q, want other-device", remaining[0].Title)
	}
}

func TestEditorDeleteKeepsEditState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "u1")
	f.compose(t, "one", "")
	f.compose(t, "two", "")
	display := f.events.waitFor(t, hasLen(2))

	if err := f.editor.BeginEdit(display[0].ID); err != nil {
		t.Fatalf("BeginEdit failed: %v", err)
	}
	if _, err := f.editor.Delete(ctx, f.user, display[1].ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if f.editor.Mode() != Editing || f.editor.EditingID() != display[0].ID {
		t.Errorf("edit state changed by delete: %s %q", f.editor.Mode(), f.editor.EditingID())
	}
}

func TestEditorRejectsOtherUsersRecords(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "u1")
	theirs, err := f.store.CreateTodo(ctx, models.Todo{Title: "theirs", OwnerID: "u2"})
	if err != nil {
		t.Fatalf("CreateTodo failed: %v", err)
	}

	if _, err := f.editor.Delete(ctx, f.user, theirs.ID); !errors.Is(err, services.ErrTodoNotFound) {
		t.Errorf("Delete: got %v, want ErrTodoNotFound", err)
	}
	if _, err := f.store.GetTodo(ctx, theirs.ID); err != nil {
		t.Errorf("record of u2 was removed: %v", err)
	}
}

func TestEditorRequiresSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "u1")
	f.editor.SetTitle("x")
	if _, err := f.editor.Submit(ctx, nil); !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("Submit: got %v, want ErrNotSignedIn", err)
	}
	if _, err := f.editor.Delete(ctx, nil, "id"); !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("Delete: got %v, want ErrNotSignedIn", err)
	}
}

// blockingStore parks CreateTodo until released.
type blockingStore struct {
	*services.MemoryStore
	entered chan struct{}
	release chan struct{}
}

func (s *blockingStore) CreateTodo(ctx context.Context, todo models.Todo) (*models.Todo, error) {
	s.entered <- struct{}{}
	<-s.release
	return s.MemoryStore.CreateTodo(ctx, todo)
}

func TestEditorRejectsDoubleSubmit(t *testing.T) {
	ctx := context.Background()
	store := &blockingStore{
		MemoryStore: services.NewMemoryStore(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	s := NewSynchronizer(zerolog.Nop(), store, nil)
	editor := NewEditor(zerolog.Nop(), store, s)
	user := &models.SessionUser{UID: "u1"}

	editor.SetTitle("once")
	errc := make(chan error, 1)
	go func() {
		_, err := editor.Submit(ctx, user)
		errc <- err
	}()
	<-store.entered

	if _, err := editor.Submit(ctx, user); !errors.Is(err, ErrBusy) {
		t.Errorf("second Submit: got %v, want ErrBusy", err)
	}
	if _, err := editor.Delete(ctx, user, "any"); !errors.Is(err, ErrBusy) {
		t.Errorf("Delete during submit: got %v, want ErrBusy", err)
	}

	close(store.release)
	if err := <-errc; err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}

	todos, _ := store.ListTodos(ctx, "u1")
	if len(todos) != 1 {
		t.Errorf("store has %d todos, want 1", len(todos))
	}
}

// failingStore fails every write.
type failingStore struct {
	*services.MemoryStore
}

var errUnavailable = errors.New("unavailable")

func (failingStore) CreateTodo(context.Context, models.Todo) (*models.Todo, error) {
	return nil, errUnavailable
}

func TestEditorStoreFailureKeepsBuffers(t *testing.T) {
	store := failingStore{services.NewMemoryStore()}
	editor := NewEditor(zerolog.Nop(), store, NewSynchronizer(zerolog.Nop(), store, nil))
	editor.SetTitle("try")

	_, err := editor.Submit(context.Background(), &models.SessionUser{UID: "u1"})
	if !errors.Is(err, ErrStoreOperation) || !errors.Is(err, errUnavailable) {
		t.Fatalf("Submit: got %v, want ErrStoreOperation wrapping errUnavailable", err)
	}
	if title, _ := editor.Buffers(); title != "try" {
		t.Errorf("title buffer: got %q, want try", title)
	}
}

func TestScenarioCreateEditDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "U")
	f.editor.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

	f.compose(t, "Buy milk", "2%")
	todos, _ := f.store.ListTodos(ctx, "U")
	if len(todos) != 1 || todos[0].Title != "Buy milk" {
		t.Fatalf("after create: got %+v", todos)
	}
	t0 := todos[0].DateAdded
	f.events.waitFor(t, hasLen(1))

	if err := f.editor.BeginEdit(todos[0].ID); err != nil {
		t.Fatalf("BeginEdit failed: %v", err)
	}
	f.editor.SetTitle("Buy oat milk")
	if _, err := f.editor.Submit(ctx, f.user); err != nil {
		t.Fatalf("Submit edit failed: %v", err)
	}
	todos, _ = f.store.ListTodos(ctx, "U")
	if todos[0].Title != "Buy oat milk" || todos[0].DateAdded != t0 {
		t.Fatalf("after edit: got %+v", todos[0])
	}

	if _, err := f.editor.Delete(ctx, f.user, todos[0].ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	todos, _ = f.store.ListTodos(ctx, "U")
	if len(todos) != 0 {
		t.Fatalf("after delete: got %d todos", len(todos))
	}
}

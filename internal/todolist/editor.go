package todolist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ytakahashi/todo-sync/internal/models"
	"github.com/ytakahashi/todo-sync/internal/services"
)

var (
	ErrEmptyTitle     = errors.New("title is empty")
	ErrNotSignedIn    = errors.New("not signed in")
	ErrBusy           = errors.New("another change is still in flight")
	ErrIndexOutOfView = errors.New("no todo at that position")
	ErrStoreOperation = errors.New("store operation failed")
)

// Confirmation texts shown after a successful change.
const (
	ToastAdded   = "Added new Todo"
	ToastSaved   = "Changes Saved"
	ToastDeleted = "Todo deleted"
)

type Mode int

const (
	Composing Mode = iota
	Editing
)

func (m Mode) String() string {
	switch m {
	case Composing:
		return "composing"
	case Editing:
		return "editing"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

type TodoWriter interface {
	CreateTodo(ctx context.Context, todo models.Todo) (*models.Todo, error)
	GetTodo(ctx context.Context, id string) (*models.Todo, error)
	UpdateTodo(ctx context.Context, id string, update models.TodoUpdate) error
	DeleteTodo(ctx context.Context, id string) error
}

// DisplayView is the ordered list the user is looking at.
type DisplayView interface {
	Display() []models.Todo
}

// Outcome tells the surface what to show after a transition.
type Outcome struct {
	Toast      string
	FocusTitle bool
}

// Editor is the add/edit form. Composing and editing share the Title and
// Description buffers. Records are addressed by ID; display indexes are
// resolved the moment an action is taken.
type Editor struct {
	logger zerolog.Logger
	store  TodoWriter
	view   DisplayView
	now    func() time.Time

	mu          sync.Mutex
	mode        Mode
	editingID   string
	title       string
	description string
	inFlight    bool
}

func NewEditor(logger zerolog.Logger, store TodoWriter, view DisplayView) *Editor {
	return &Editor{
		logger: logger,
		store:  store,
		view:   view,
		now:    time.Now,
	}
}

func (e *Editor) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// EditingID is the record being edited, or "" while composing.
func (e *Editor) EditingID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.editingID
}

func (e *Editor) Buffers() (title, description string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.title, e.description
}

func (e *Editor) SetTitle(title string) {
	e.mu.Lock()
	e.title = title
	e.mu.Unlock()
}

func (e *Editor) SetDescription(description string) {
	e.mu.Lock()
	e.description = description
	e.mu.Unlock()
}

// NewTodo builds a fresh record for owner. It is the only way records are
// created, so the title rule and initial field values live here.
func NewTodo(ownerID, title, description string, now time.Time) (models.Todo, error) {
	if strings.TrimSpace(title) == "" {
		return models.Todo{}, ErrEmptyTitle
	}
	return models.Todo{
		Title:       title,
		Description: description,
		DateAdded:   models.FormatDateAdded(now),
		Completed:   false,
		OwnerID:     ownerID,
	}, nil
}

// Submit creates a record while composing or saves the edited one. A blank
// title is rejected with ErrEmptyTitle in both modes and nothing is sent
// to the store. On store failure the buffers and mode are left as they were.
func (e *Editor) Submit(ctx context.Context, user *models.SessionUser) (Outcome, error) {
	if user == nil {
		return Outcome{}, ErrNotSignedIn
	}

	e.mu.Lock()
	if e.inFlight {
		e.mu.Unlock()
		return Outcome{}, ErrBusy
	}
	mode, id, title, description := e.mode, e.editingID, e.title, e.description
	if strings.TrimSpace(title) == "" {
		e.mu.Unlock()
		e.logger.Debug().
			Str("mode", mode.String()).
			Msg("ignored submit with empty title")
		return Outcome{}, ErrEmptyTitle
	}
	e.inFlight = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.inFlight = false
		e.mu.Unlock()
	}()

	if mode == Editing {
		return e.save(ctx, user, id, title, description)
	}
	return e.create(ctx, user, title, description)
}

func (e *Editor) create(ctx context.Context, user *models.SessionUser, title, description string) (Outcome, error) {
	todo, err := NewTodo(user.UID, title, description, e.now())
	if err != nil {
		return Outcome{}, err
	}

	created, err := e.store.CreateTodo(ctx, todo)
	if err != nil {
		e.logger.Error().
			Err(err).
			Str("owner_id", user.UID).
			Msg("failed to create todo")
		return Outcome{}, fmt.Errorf("%w: %w", ErrStoreOperation, err)
	}

	e.logger.Info().
		Str("todo_id", created.ID).
		Str("owner_id", user.UID).
		Msg("created todo")

	e.mu.Lock()
	// An edit begun while the create was in flight keeps its buffers.
	if e.mode == Composing {
		e.clearLocked()
	}
	e.mu.Unlock()
	return Outcome{Toast: ToastAdded, FocusTitle: true}, nil
}

func (e *Editor) save(ctx context.Context, user *models.SessionUser, id, title, description string) (Outcome, error) {
	if err := e.checkOwner(ctx, user, id); err != nil {
		return Outcome{}, err
	}

	err := e.store.UpdateTodo(ctx, id, models.TodoUpdate{
		Title:       title,
		Description: description,
	})
	if err != nil {
		e.logger.Error().
			Err(err).
			Str("todo_id", id).
			Msg("failed to update todo")
		return Outcome{}, fmt.Errorf("%w: %w", ErrStoreOperation, err)
	}

	e.logger.Info().
		Str("todo_id", id).
		Msg("updated todo")

	e.mu.Lock()
	if e.mode == Editing && e.editingID == id {
		e.mode = Composing
		e.editingID = ""
		e.clearLocked()
	}
	e.mu.Unlock()
	return Outcome{Toast: ToastSaved, FocusTitle: true}, nil
}

// BeginEdit loads the record into the buffers and switches to editing.
func (e *Editor) BeginEdit(id string) error {
	for _, todo := range e.view.Display() {
		if todo.ID != id {
			continue
		}
		e.mu.Lock()
		e.mode = Editing
		e.editingID = todo.ID
		e.title = todo.Title
		e.description = todo.Description
		e.mu.Unlock()
		return nil
	}
	return services.ErrTodoNotFound
}

// BeginEditAt edits the record at index i of shown, the list as the user
// last saw it. The live list may already have moved on.
func (e *Editor) BeginEditAt(shown []models.Todo, i int) error {
	id, ok := ResolveIndex(shown, i)
	if !ok {
		return ErrIndexOutOfView
	}
	return e.BeginEdit(id)
}

// Cancel leaves editing without touching the store. While composing it
// clears the buffers, like the form's Clear action.
func (e *Editor) Cancel() Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = Composing
	e.editingID = ""
	e.clearLocked()
	return Outcome{FocusTitle: true}
}

// Delete removes a record. The form state is left untouched.
func (e *Editor) Delete(ctx context.Context, user *models.SessionUser, id string) (Outcome, error) {
	if user == nil {
		return Outcome{}, ErrNotSignedIn
	}

	e.mu.Lock()
	if e.inFlight {
		e.mu.Unlock()
		return Outcome{}, ErrBusy
	}
	e.inFlight = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.inFlight = false
		e.mu.Unlock()
	}()

	if err := e.checkOwner(ctx, user, id); err != nil {
		return Outcome{}, err
	}

	err := e.store.DeleteTodo(ctx, id)
	if err != nil {
		e.logger.Error().
			Err(err).
			Str("todo_id", id).
			Msg("failed to delete todo")
		return Outcome{}, fmt.Errorf("%w: %w", ErrStoreOperation, err)
	}

	e.logger.Info().
		Str("todo_id", id).
		Msg("deleted todo")
	return Outcome{Toast: ToastDeleted}, nil
}

// DeleteAt deletes the record at index i of shown, the list as the user
// last saw it.
func (e *Editor) DeleteAt(ctx context.Context, user *models.SessionUser, shown []models.Todo, i int) (Outcome, error) {
	id, ok := ResolveIndex(shown, i)
	if !ok {
		return Outcome{}, ErrIndexOutOfView
	}
	return e.Delete(ctx, user, id)
}

// Reset drops all form state, used when the session ends.
func (e *Editor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = Composing
	e.editingID = ""
	e.clearLocked()
}

func (e *Editor) checkOwner(ctx context.Context, user *models.SessionUser, id string) error {
	todo, err := e.store.GetTodo(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrTodoNotFound) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrStoreOperation, err)
	}
	if todo.OwnerID != user.UID {
		e.logger.Warn().
			Str("todo_id", id).
			Str("uid", user.UID).
			Msg("todo belongs to another user")
		return services.ErrTodoNotFound
	}
	return nil
}

func (e *Editor) clearLocked() {
	e.title = ""
	e.description = ""
}

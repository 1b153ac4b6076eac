package todolist

import (
	"context"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ytakahashi/todo-sync/internal/models"
	"github.com/ytakahashi/todo-sync/internal/services"
)

type TodoWatcher interface {
	WatchTodos(ctx context.Context, ownerID string) (*services.TodoWatch, error)
}

// Synchronizer keeps an in-memory copy of one user's todos current with
// the store. Every snapshot replaces the list wholesale.
type Synchronizer struct {
	logger   zerolog.Logger
	store    TodoWatcher
	onChange func(display []models.Todo)

	mu      sync.RWMutex
	todos   []models.Todo
	ownerID string
	watch   *services.TodoWatch
	gen     uint64
}

// NewSynchronizer creates a synchronizer. onChange, if set, receives the
// display-ordered list after every snapshot and after Unsubscribe.
func NewSynchronizer(logger zerolog.Logger, store TodoWatcher, onChange func([]models.Todo)) *Synchronizer {
	return &Synchronizer{
		logger:   logger,
		store:    store,
		onChange: onChange,
	}
}

// Subscribe binds the list to ownerID. Any previous subscription is
// cancelled before the new one starts, so snapshots of a former user can
// never reach the list. The returned handle may be called any number of
// times; only the first call has effect, and none if a later Subscribe
// already replaced this subscription.
func (s *Synchronizer) Subscribe(ctx context.Context, ownerID string) (unsubscribe func(), err error) {
	s.mu.Lock()
	stopped := s.stopLocked()

	watch, err := s.store.WatchTodos(ctx, ownerID)
	if err != nil {
		s.mu.Unlock()
		s.logger.Error().
			Err(err).
			Str("owner_id", ownerID).
			Msg("failed to watch todos")
		// The previous user's list is gone; show that.
		if stopped {
			s.changed()
		}
		return nil, err
	}

	s.gen++
	gen := s.gen
	s.watch = watch
	s.ownerID = ownerID

	go s.pump(gen, watch)
	s.mu.Unlock()

	s.logger.Debug().
		Str("owner_id", ownerID).
		Msg("subscribed to todos")

	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(gen) })
	}, nil
}

// Unsubscribe drops whatever subscription is active and empties the list.
func (s *Synchronizer) Unsubscribe() {
	s.mu.Lock()
	stopped := s.stopLocked()
	s.mu.Unlock()

	if stopped {
		s.changed()
	}
}

// OwnerID returns the user the list is bound to, or "".
func (s *Synchronizer) OwnerID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ownerID
}

// Todos returns the latest snapshot in store order.
func (s *Synchronizer) Todos() []models.Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.todos)
}

// Display returns the latest snapshot sorted for display. The order is
// recomputed on every call.
func (s *Synchronizer) Display() []models.Todo {
	return SortForDisplay(s.Todos())
}

func (s *Synchronizer) unsubscribe(gen uint64) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	stopped := s.stopLocked()
	s.mu.Unlock()

	if stopped {
		s.changed()
	}
}

func (s *Synchronizer) stopLocked() bool {
	if s.watch == nil {
		return false
	}
	s.watch.Stop()
	s.watch = nil
	s.todos = nil
	s.gen++

	s.logger.Debug().
		Str("owner_id", s.ownerID).
		Msg("unsubscribed from todos")
	s.ownerID = ""
	return true
}

func (s *Synchronizer) pump(gen uint64, watch *services.TodoWatch) {
	for todos := range watch.C {
		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			return
		}
		s.todos = todos
		s.mu.Unlock()

		s.logger.Trace().
			Int("count", len(todos)).
			Msg("received todo snapshot")
		s.changed()
	}

	if err := watch.Err(); err != nil {
		s.logger.Error().
			Err(err).
			Msg("todo subscription ended")
	}
}

func (s *Synchronizer) changed() {
	if s.onChange != nil {
		s.onChange(s.Display())
	}
}

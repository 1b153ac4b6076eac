package services

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ytakahashi/todo-sync/internal/models"
)

// MemoryStore is an in-process Store for local runs and tests. Snapshots
// are delivered in ID order, which is unrelated to display order.
type MemoryStore struct {
	mu       sync.RWMutex
	todos    map[string]models.Todo
	profiles map[string]models.UserProfile
	accounts map[string]models.Account

	watchMu  sync.Mutex
	watchers map[*memoryWatcher]struct{}
}

type memoryWatcher struct {
	ownerID string
	// signal holds at most one pending wakeup; snapshots replace each
	// other so missed intermediate states are never needed.
	signal chan struct{}
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		todos:    make(map[string]models.Todo),
		profiles: make(map[string]models.UserProfile),
		accounts: make(map[string]models.Account),
		watchers: make(map[*memoryWatcher]struct{}),
	}
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) CreateTodo(_ context.Context, todo models.Todo) (*models.Todo, error) {
	todo.ID = uuid.New().String()

	s.mu.Lock()
	s.todos[todo.ID] = todo
	s.mu.Unlock()

	s.notify(todo.OwnerID)
	return &todo, nil
}

func (s *MemoryStore) GetTodo(_ context.Context, id string) (*models.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	todo, exists := s.todos[id]
	if !exists {
		return nil, ErrTodoNotFound
	}
	return &todo, nil
}

func (s *MemoryStore) ListTodos(_ context.Context, ownerID string) ([]models.Todo, error) {
	return s.snapshot(ownerID), nil
}

func (s *MemoryStore) UpdateTodo(_ context.Context, id string, update models.TodoUpdate) error {
	s.mu.Lock()
	todo, exists := s.todos[id]
	if !exists {
		s.mu.Unlock()
		return ErrTodoNotFound
	}
	todo.Title = update.Title
	todo.Description = update.Description
	s.todos[id] = todo
	s.mu.Unlock()

	s.notify(todo.OwnerID)
	return nil
}

func (s *MemoryStore) DeleteTodo(_ context.Context, id string) error {
	s.mu.Lock()
	todo, exists := s.todos[id]
	if !exists {
		s.mu.Unlock()
		return ErrTodoNotFound
	}
	delete(s.todos, id)
	s.mu.Unlock()

	s.notify(todo.OwnerID)
	return nil
}

func (s *MemoryStore) WatchTodos(ctx context.Context, ownerID string) (*TodoWatch, error) {
	w := &memoryWatcher{
		ownerID: ownerID,
		signal:  make(chan struct{}, 1),
	}

	// Register before the first snapshot so no write can slip between.
	s.watchMu.Lock()
	s.watchers[w] = struct{}{}
	s.watchMu.Unlock()

	return startTodoWatch(ctx, func(ctx context.Context, emit emitFunc) error {
		defer func() {
			s.watchMu.Lock()
			delete(s.watchers, w)
			s.watchMu.Unlock()
		}()

		if !emit(s.snapshot(ownerID)) {
			return nil
		}
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-w.signal:
				if !emit(s.snapshot(ownerID)) {
					return nil
				}
			}
		}
	}), nil
}

func (s *MemoryStore) CreateProfile(_ context.Context, profile models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.UID] = profile
	return nil
}

func (s *MemoryStore) GetProfile(_ context.Context, uid string) (*models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, exists := s.profiles[uid]
	if !exists {
		return nil, ErrProfileNotFound
	}
	return &profile, nil
}

func (s *MemoryStore) CreateAccount(_ context.Context, account models.Account) error {
	key := NormalizeEmail(account.Email)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[key]; exists {
		return ErrAccountExists
	}
	s.accounts[key] = account
	return nil
}

func (s *MemoryStore) GetAccount(_ context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, exists := s.accounts[NormalizeEmail(email)]
	if !exists {
		return nil, ErrAccountNotFound
	}
	return &account, nil
}

func (s *MemoryStore) snapshot(ownerID string) []models.Todo {
	s.mu.RLock()
	todos := make([]models.Todo, 0, len(s.todos))
	for _, todo := range s.todos {
		if todo.OwnerID == ownerID {
			todos = append(todos, todo)
		}
	}
	s.mu.RUnlock()

	sort.Slice(todos, func(i, j int) bool {
		return todos[i].ID < todos[j].ID
	})
	return todos
}

func (s *MemoryStore) notify(ownerID string) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for w := range s.watchers {
		if w.ownerID != ownerID {
			continue
		}
		select {
		case w.signal <- struct{}{}:
		default:
		}
	}
}

package services

import (
	"context"
	"sync"

	"github.com/ytakahashi/todo-sync/internal/models"
)

// TodoWatch is a running live subscription. Snapshots arrive on C, each a
// complete replacement for the previous one. C is closed once the watch
// ends; Err reports why it ended, if not by Stop or context cancellation.
type TodoWatch struct {
	C <-chan []models.Todo

	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

type emitFunc func([]models.Todo) bool

func startTodoWatch(parent context.Context, run func(ctx context.Context, emit emitFunc) error) *TodoWatch {
	ctx, cancel := context.WithCancel(parent)
	out := make(chan []models.Todo)
	w := &TodoWatch{
		C:      out,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(w.done)
		defer close(out)

		emit := func(todos []models.Todo) bool {
			select {
			case out <- todos:
				return true
			case <-ctx.Done():
				return false
			}
		}
		if err := run(ctx, emit); err != nil && ctx.Err() == nil {
			w.mu.Lock()
			w.err = err
			w.mu.Unlock()
		}
	}()

	return w
}

// Stop cancels the subscription and waits for its producer to exit.
// It is safe to call more than once.
func (w *TodoWatch) Stop() {
	w.cancel()
	<-w.done
}

// Done is closed when the producer has exited.
func (w *TodoWatch) Done() <-chan struct{} {
	return w.done
}

func (w *TodoWatch) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

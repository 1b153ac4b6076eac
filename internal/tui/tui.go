// Package tui is the terminal client: login, sign-up and the live todo
// list, driven by the same identity and store services as the HTTP API.
package tui

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/ytakahashi/todo-sync/internal/models"
	"github.com/ytakahashi/todo-sync/internal/services"
	"github.com/ytakahashi/todo-sync/internal/todolist"
)

type Options struct {
	Logger        zerolog.Logger
	Store         services.Store
	Auth          services.Authenticator
	RedirectDelay time.Duration
	ToastDuration time.Duration
}

// deps is shared by every copy of the model. Callbacks from the binder
// and synchronizer arrive on other goroutines and reach the program
// through events.
type deps struct {
	ctx           context.Context
	logger        zerolog.Logger
	gateway       *services.IdentityGateway
	flow          *todolist.AuthFlow
	sync          *todolist.Synchronizer
	binder        *todolist.Binder
	editor        *todolist.Editor
	toastDuration time.Duration
	events        chan tea.Msg

	mu         sync.Mutex
	stopBinder func()
}

func newDeps(ctx context.Context, opts Options) *deps {
	d := &deps{
		ctx:           ctx,
		logger:        opts.Logger,
		gateway:       services.NewIdentityGateway(opts.Auth),
		toastDuration: opts.ToastDuration,
		events:        make(chan tea.Msg, 16),
	}
	send := func(msg tea.Msg) {
		select {
		case d.events <- msg:
		case <-ctx.Done():
		}
	}

	d.flow = todolist.NewAuthFlow(opts.Logger, d.gateway, opts.Store, opts.RedirectDelay)
	d.sync = todolist.NewSynchronizer(opts.Logger, opts.Store, func(todos []models.Todo) {
		send(todosMsg(todos))
	})
	d.binder = todolist.NewBinder(opts.Logger, d.gateway, opts.Store, d.sync, func() {
		send(signedOutMsg{})
	})
	d.editor = todolist.NewEditor(opts.Logger, opts.Store, d.sync)
	return d
}

// start follows the session. It must run off the event loop because the
// first session notification is delivered synchronously.
func (d *deps) start() tea.Msg {
	stop := d.binder.Start(d.ctx)
	d.mu.Lock()
	d.stopBinder = stop
	d.mu.Unlock()
	return nil
}

// waitForEvent delivers the next background event. Update re-issues it
// after every event.
func (d *deps) waitForEvent() tea.Msg {
	select {
	case msg := <-d.events:
		return eventMsg{msg: msg}
	case <-d.ctx.Done():
		return nil
	}
}

func (d *deps) stop() {
	d.mu.Lock()
	stop := d.stopBinder
	d.stopBinder = nil
	d.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// Run blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	d := newDeps(ctx, opts)
	// Cancel first so callbacks fired while stopping don't block on a
	// program that is no longer reading events.
	defer func() {
		cancel()
		d.stop()
	}()

	p := tea.NewProgram(newModel(d), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

package services

import (
	"context"
	"sync"

	"github.com/ytakahashi/todo-sync/internal/models"
)

// IdentityGateway holds the signed-in session of one client and tells
// listeners whenever it changes.
type IdentityGateway struct {
	auth Authenticator

	mu        sync.Mutex
	current   *models.SessionUser
	listeners map[uint64]func(*models.SessionUser)
	nextID    uint64
}

var _ Authenticator = (*IdentityGateway)(nil)

func NewIdentityGateway(auth Authenticator) *IdentityGateway {
	return &IdentityGateway{
		auth:      auth,
		listeners: make(map[uint64]func(*models.SessionUser)),
	}
}

func (g *IdentityGateway) SignIn(ctx context.Context, email, password string) (*models.SessionUser, error) {
	user, err := g.auth.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	g.setCurrent(user)
	return user, nil
}

// SignUp leaves the new account signed in.
func (g *IdentityGateway) SignUp(ctx context.Context, email, password string) (*models.SessionUser, error) {
	user, err := g.auth.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	g.setCurrent(user)
	return user, nil
}

func (g *IdentityGateway) SignOut() {
	g.setCurrent(nil)
}

// CurrentUser returns nil when signed out.
func (g *IdentityGateway) CurrentUser() *models.SessionUser {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// OnSessionChange registers fn and calls it right away with the current
// session. Listeners run on the goroutine that changed the session.
func (g *IdentityGateway) OnSessionChange(fn func(*models.SessionUser)) (unsubscribe func()) {
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.listeners[id] = fn
	current := g.current
	g.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.listeners, id)
			g.mu.Unlock()
		})
	}
}

func (g *IdentityGateway) setCurrent(user *models.SessionUser) {
	g.mu.Lock()
	g.current = user
	listeners := make([]func(*models.SessionUser), 0, len(g.listeners))
	for _, fn := range g.listeners {
		listeners = append(listeners, fn)
	}
	g.mu.Unlock()

	for _, fn := range listeners {
		fn(user)
	}
}

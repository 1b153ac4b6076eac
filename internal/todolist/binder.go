package todolist

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ytakahashi/todo-sync/internal/models"
	"github.com/ytakahashi/todo-sync/internal/services"
)

type SessionSource interface {
	OnSessionChange(fn func(*models.SessionUser)) (unsubscribe func())
}

type ProfileReader interface {
	GetProfile(ctx context.Context, uid string) (*models.UserProfile, error)
}

// Binder follows the identity session: each sign-in loads the user's
// profile name and points the synchronizer at that user's todos, each
// sign-out tears the subscription down and calls onSignedOut.
type Binder struct {
	logger      zerolog.Logger
	sessions    SessionSource
	profiles    ProfileReader
	sync        *Synchronizer
	onSignedOut func()

	mu       sync.RWMutex
	user     *models.SessionUser
	userName string
}

func NewBinder(
	logger zerolog.Logger,
	sessions SessionSource,
	profiles ProfileReader,
	synchronizer *Synchronizer,
	onSignedOut func(),
) *Binder {
	return &Binder{
		logger:      logger,
		sessions:    sessions,
		profiles:    profiles,
		sync:        synchronizer,
		onSignedOut: onSignedOut,
	}
}

// Start begins following session changes. The returned stop function
// detaches from the session stream and ends the todo subscription.
func (b *Binder) Start(ctx context.Context) (stop func()) {
	unsubscribe := b.sessions.OnSessionChange(func(user *models.SessionUser) {
		b.handle(ctx, user)
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()
			b.sync.Unsubscribe()
		})
	}
}

// User is the session the binder last saw.
func (b *Binder) User() *models.SessionUser {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.user
}

// UserName is the profile name, empty if no profile was found.
func (b *Binder) UserName() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.userName
}

// RefreshProfile reloads the display name for the current session. A
// sign-up notifies before its profile is written, so callers re-read
// once the profile exists.
func (b *Binder) RefreshProfile(ctx context.Context) {
	user := b.User()
	if user == nil {
		return
	}
	b.loadProfile(ctx, user.UID)
}

func (b *Binder) handle(ctx context.Context, user *models.SessionUser) {
	b.mu.Lock()
	b.user = user
	b.userName = ""
	b.mu.Unlock()

	if user == nil {
		b.sync.Unsubscribe()
		b.logger.Info().Msg("no session, showing login")
		if b.onSignedOut != nil {
			b.onSignedOut()
		}
		return
	}

	b.loadProfile(ctx, user.UID)

	if _, err := b.sync.Subscribe(ctx, user.UID); err != nil {
		b.logger.Error().
			Err(err).
			Str("uid", user.UID).
			Msg("failed to bind todo list")
	}
}

func (b *Binder) loadProfile(ctx context.Context, uid string) {
	profile, err := b.profiles.GetProfile(ctx, uid)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			b.logger.Warn().
				Str("uid", uid).
				Msg("user profile not found")
		} else {
			b.logger.Error().
				Err(err).
				Str("uid", uid).
				Msg("failed to fetch user name")
		}
		return
	}

	b.mu.Lock()
	if b.user != nil && b.user.UID == uid {
		b.userName = profile.Name
	}
	b.mu.Unlock()
}

package todolist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ytakahashi/todo-sync/internal/models"
	"github.com/ytakahashi/todo-sync/internal/services"
)

// Alert texts for the login and sign-up screens.
const (
	AlertUserNotExist      = "User does not exist"
	AlertUserAlreadyExists = "User already exists"
	AlertSignUpFailed      = "Sorry, can't sign up"
)

func welcomeAlert(name string) string {
	return fmt.Sprintf("Welcome %s", name)
}

func signUpAlert(name string) string {
	return fmt.Sprintf("Congrats! Account created successfully. Welcome %s", name)
}

type ProfileStore interface {
	ProfileReader
	CreateProfile(ctx context.Context, profile models.UserProfile) error
}

type LoginOutcome struct {
	User    *models.SessionUser
	Profile *models.UserProfile
	Alert   string
	// NavigateAfter is how long the welcome alert stays before going
	// home. It is only meaningful when Navigate is set.
	Navigate      bool
	NavigateAfter time.Duration
}

type SignUpOutcome struct {
	User  *models.SessionUser
	Alert string
	// NavigateOnDismiss is set only for a successful sign-up.
	NavigateOnDismiss bool
	// Err carries the gateway's error text for inline display.
	Err error
}

type AuthFlow struct {
	logger        zerolog.Logger
	auth          services.Authenticator
	profiles      ProfileStore
	redirectDelay time.Duration
}

func NewAuthFlow(
	logger zerolog.Logger,
	auth services.Authenticator,
	profiles ProfileStore,
	redirectDelay time.Duration,
) *AuthFlow {
	return &AuthFlow{
		logger:        logger,
		auth:          auth,
		profiles:      profiles,
		redirectDelay: redirectDelay,
	}
}

// Login signs in and checks that the account has a profile. Gateway
// failures are returned as errors; a missing profile is not an error but
// an outcome that stays on the login screen.
func (f *AuthFlow) Login(ctx context.Context, email, password string) (LoginOutcome, error) {
	user, err := f.auth.SignIn(ctx, email, password)
	if err != nil {
		f.logger.Warn().
			Err(err).
			Str("email", email).
			Msg("login failed")
		return LoginOutcome{}, err
	}

	profile, err := f.profiles.GetProfile(ctx, user.UID)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			f.logger.Warn().
				Str("uid", user.UID).
				Msg("signed in without a profile")
			return LoginOutcome{User: user, Alert: AlertUserNotExist}, nil
		}
		f.logger.Error().
			Err(err).
			Str("uid", user.UID).
			Msg("failed to look up profile")
		return LoginOutcome{}, err
	}

	return LoginOutcome{
		User:          user,
		Profile:       profile,
		Alert:         welcomeAlert(profile.Name),
		Navigate:      true,
		NavigateAfter: f.redirectDelay,
	}, nil
}

// SignUp creates the account and its users/{uid} profile. It never
// returns an error; failures are described by the outcome.
func (f *AuthFlow) SignUp(ctx context.Context, name, email, password string) SignUpOutcome {
	user, err := f.auth.SignUp(ctx, email, password)
	if err != nil {
		if errors.Is(err, services.ErrEmailAlreadyInUse) {
			return SignUpOutcome{Alert: AlertUserAlreadyExists, Err: err}
		}
		f.logger.Warn().
			Err(err).
			Msg("sign-up failed")
		return SignUpOutcome{Alert: AlertSignUpFailed, Err: err}
	}

	err = f.profiles.CreateProfile(ctx, models.UserProfile{
		UID:   user.UID,
		Name:  name,
		Email: user.Email,
	})
	if err != nil {
		f.logger.Error().
			Err(err).
			Str("uid", user.UID).
			Msg("failed to store user profile")
		return SignUpOutcome{Alert: AlertSignUpFailed, Err: err}
	}

	f.logger.Info().
		Str("uid", user.UID).
		Msg("account created")
	return SignUpOutcome{
		User:              user,
		Alert:             signUpAlert(name),
		NavigateOnDismiss: true,
	}
}

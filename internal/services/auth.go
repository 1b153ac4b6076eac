package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ytakahashi/todo-sync/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyInUse  = errors.New("email already in use")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password is too weak")
	ErrInvalidToken       = errors.New("invalid token")
)

// Authenticator is the sign-in half of the identity gateway.
type Authenticator interface {
	// SignIn returns ErrInvalidCredentials if the email is unknown or
	// the password doesn't match.
	SignIn(ctx context.Context, email, password string) (*models.SessionUser, error)

	// SignUp creates an account and signs it in.
	//
	// It returns ErrEmailAlreadyInUse if the email is taken, and
	// ErrInvalidEmail or ErrWeakPassword for rejected input.
	SignUp(ctx context.Context, email, password string) (*models.SessionUser, error)
}

type AuthOptions struct {
	Issuer            string
	SigningKey        []byte
	TokenTTL          time.Duration
	MinPasswordLength int
}

type AuthService struct {
	logger   zerolog.Logger
	accounts AccountStore
	opts     AuthOptions
	now      func() time.Time
}

var _ Authenticator = (*AuthService)(nil)

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func NewAuthService(logger zerolog.Logger, accounts AccountStore, opts AuthOptions) *AuthService {
	return &AuthService{
		logger:   logger,
		accounts: accounts,
		opts:     opts,
		now:      time.Now,
	}
}

// NormalizeEmail is the form accounts are keyed by.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*models.SessionUser, error) {
	email = NormalizeEmail(email)

	account, err := s.accounts.GetAccount(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			s.logger.Warn().
				Str("email", email).
				Msg("account not found")
			return nil, ErrInvalidCredentials
		}

		s.logger.Error().
			Err(err).
			Str("email", email).
			Msg("failed to get account")
		return nil, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password))
	if err != nil {
		s.logger.Warn().
			Str("uid", account.UID).
			Msg("passwords do not match")
		return nil, ErrInvalidCredentials
	}

	session, err := s.issue(account)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("uid", account.UID).
		Msg("signed in")
	return session, nil
}

func (s *AuthService) SignUp(ctx context.Context, email, password string) (*models.SessionUser, error) {
	email = NormalizeEmail(email)

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	if len(password) < s.opts.MinPasswordLength {
		return nil, fmt.Errorf("%w: at least %d characters required", ErrWeakPassword, s.opts.MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return nil, err
	}

	account := models.Account{
		UID:          uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}

	err = s.accounts.CreateAccount(ctx, account)
	if err != nil {
		if errors.Is(err, ErrAccountExists) {
			s.logger.Warn().
				Str("email", email).
				Msg("email already in use")
			return nil, ErrEmailAlreadyInUse
		}

		s.logger.Error().
			Err(err).
			Msg("failed to create account")
		return nil, err
	}

	session, err := s.issue(&account)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("uid", account.UID).
		Msg("signed up")
	return session, nil
}

// VerifyToken parses a token issued by this service.
func (s *AuthService) VerifyToken(token string) (*models.SessionUser, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.opts.SigningKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.opts.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return &models.SessionUser{
		UID:       claims.Subject,
		Email:     claims.Email,
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *AuthService) issue(account *models.Account) (*models.SessionUser, error) {
	now := s.now()
	expiresAt := now.Add(s.opts.TokenTTL)

	claims := sessionClaims{
		Email: account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.opts.Issuer,
			Subject:   account.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.opts.SigningKey)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to sign session token")
		return nil, err
	}

	return &models.SessionUser{
		UID:       account.UID,
		Email:     account.Email,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestAuth() *AuthService {
	return NewAuthService(zerolog.Nop(), NewMemoryStore(), AuthOptions{
		Issuer:            "todo-sync-test",
		SigningKey:        []byte("test-signing-key"),
		TokenTTL:          time.Hour,
		MinPasswordLength: 6,
	})
}

func TestSignUpThenSignIn(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth()

	created, err := auth.SignUp(ctx, "Ann@Example.com", "secret1")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if created.UID == "" || created.Token == "" {
		t.Fatalf("SignUp returned incomplete session: %+v", created)
	}
	if created.Email != "ann@example.com" {
		t.Errorf("email: got %q, want normalized", created.Email)
	}

	signedIn, err := auth.SignIn(ctx, "ann@example.com", "secret1")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if signedIn.UID != created.UID {
		t.Errorf("uid: got %q, want %q", signedIn.UID, created.UID)
	}
}

func TestSignUpErrors(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth()
	if _, err := auth.SignUp(ctx, "ann@example.com", "secret1"); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"duplicate", "ANN@example.com", "another1", ErrEmailAlreadyInUse},
		{"bad email", "not-an-email", "secret1", ErrInvalidEmail},
		{"empty email", "", "secret1", ErrInvalidEmail},
		{"short password", "bob@example.com", "123", ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.SignUp(ctx, tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SignUp: got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSignInInvalidCredentials(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth()
	if _, err := auth.SignUp(ctx, "ann@example.com", "secret1"); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	if _, err := auth.SignIn(ctx, "ann@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
	if _, err := auth.SignIn(ctx, "nobody@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: got %v, want ErrInvalidCredentials", err)
	}
}

func TestVerifyToken(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth()
	session, err := auth.SignUp(ctx, "ann@example.com", "secret1")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	got, err := auth.VerifyToken(session.Token)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if got.UID != session.UID || got.Email != session.Email {
		t.Errorf("VerifyToken: got %+v, want uid %q", got, session.UID)
	}

	if _, err := auth.VerifyToken("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token: got %v, want ErrInvalidToken", err)
	}

	other := NewAuthService(zerolog.Nop(), NewMemoryStore(), AuthOptions{
		Issuer:     "todo-sync-test",
		SigningKey: []byte("different-key"),
		TokenTTL:   time.Hour,
	})
	if _, err := other.VerifyToken(session.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign key: got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyTokenExpired(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth()
	session, err := auth.SignUp(ctx, "ann@example.com", "secret1")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	auth.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := auth.VerifyToken(session.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token: got %v, want ErrInvalidToken", err)
	}
}

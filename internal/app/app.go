// Package app wires configuration into the store and identity services
// shared by the HTTP server and the terminal client.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ytakahashi/todo-sync/internal/config"
	"github.com/ytakahashi/todo-sync/internal/services"
)

// OpenStore connects the backend selected by cfg. The caller closes it.
func OpenStore(ctx context.Context, logger zerolog.Logger, cfg config.StoreConfig) (services.Store, error) {
	switch cfg.Backend {
	case config.BackendFirestore:
		store, err := services.NewFirestoreService(ctx, cfg.ProjectID, cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
		logger.Info().
			Str("project_id", cfg.ProjectID).
			Msg("connected to firestore")
		return store, nil
	case config.BackendMemory:
		logger.Warn().Msg("using in-memory store; data is lost on exit")
		return services.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnknownBackend, cfg.Backend)
	}
}

func NewAuthService(logger zerolog.Logger, accounts services.AccountStore, cfg config.AuthConfig) *services.AuthService {
	return services.NewAuthService(logger, accounts, services.AuthOptions{
		Issuer:            cfg.Issuer,
		SigningKey:        []byte(cfg.SigningKey),
		TokenTTL:          cfg.TokenTTL,
		MinPasswordLength: cfg.MinPasswordLength,
	})
}

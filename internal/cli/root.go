package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ytakahashi/todo-sync/internal/app"
	"github.com/ytakahashi/todo-sync/internal/config"
	"github.com/ytakahashi/todo-sync/internal/logger"
	"github.com/ytakahashi/todo-sync/internal/services"
	"github.com/ytakahashi/todo-sync/internal/tui"
)

type App struct {
	Backend string
	LogFile string
	Pretty  bool

	cfg    *config.Config
	logger zerolog.Logger

	// open is replaced in tests.
	open func(ctx context.Context, a *App) (services.Store, *services.AuthService, error)
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{open: openServices})
}

func newRootCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "todo",
		Short:        "Synchronized todo list client",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive client
  todo

  # Scriptable commands
  todo list --email ann@example.com
  todo add --email ann@example.com --title "Buy milk"
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), a)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return a.init(cmd)
	}

	cmd.PersistentFlags().StringVar(&a.Backend, "backend", "", "Store backend (firestore|memory); overrides STORE_BACKEND")
	cmd.PersistentFlags().StringVar(&a.LogFile, "log-file", "", "Write logs to this file; overrides LOG_FILE")
	cmd.PersistentFlags().BoolVar(&a.Pretty, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newListCmd(a))
	cmd.AddCommand(newAddCmd(a))

	return cmd
}

// init reads the environment and sets up logging. The terminal owns
// stdout, so logs go to a file or nowhere.
func (a *App) init(cmd *cobra.Command) error {
	if a.Backend != "" {
		if err := os.Setenv("STORE_BACKEND", a.Backend); err != nil {
			return writeErr(cmd, err)
		}
	}

	cfg, err := config.NewEnvReader().Read()
	if err != nil {
		return writeErr(cmd, fmt.Errorf("failed to read env: %w", err))
	}
	a.cfg = cfg

	logFile := a.LogFile
	if logFile == "" {
		logFile = cfg.LogFile
	}

	w := io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return writeErr(cmd, fmt.Errorf("failed to open log file: %w", err))
		}
		w = f
	}

	a.logger, err = logger.New(cfg.Env, w)
	if err != nil {
		return writeErr(cmd, err)
	}
	return nil
}

func openServices(ctx context.Context, a *App) (services.Store, *services.AuthService, error) {
	store, err := app.OpenStore(ctx, a.logger, a.cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	return store, app.NewAuthService(a.logger, store, a.cfg.Auth), nil
}

func runTUI(ctx context.Context, a *App) error {
	store, auth, err := a.open(ctx, a)
	if err != nil {
		return err
	}
	defer store.Close()

	return tui.Run(ctx, tui.Options{
		Logger:        a.logger,
		Store:         store,
		Auth:          auth,
		RedirectDelay: a.cfg.UI.RedirectDelay,
		ToastDuration: a.cfg.UI.ToastDuration,
	})
}

func writeOut(cmd *cobra.Command, a *App, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if a.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}

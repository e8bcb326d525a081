// Package commands is the presentation layer: a small CLI over the
// coordinators. It owns input validation and formatting; everything below it
// is reactive core.
package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"spendlog/internal/config"
	"spendlog/internal/log"
	"spendlog/internal/storage"
	"spendlog/internal/store"
)

// snapshotTimeout bounds how long a command waits for a live query to
// deliver. Local sqlite reads settle in milliseconds; hitting this means
// something is broken, not slow.
const snapshotTimeout = 5 * time.Second

type app struct {
	cfg  *config.Config
	log  *log.Logger
	repo *storage.Repository
	live *store.Live
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "spendlog",
		Short: "Personal expense tracking",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	rootCmd.AddCommand(newAddCommand(a))
	rootCmd.AddCommand(newListCommand(a))
	rootCmd.AddCommand(newReportCommand(a))
	rootCmd.AddCommand(newExportCommand(a))

	return rootCmd
}

func (a *app) init() error {
	// .env is optional, for local development.
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger := log.New(log.Config{Level: cfg.LogLevel, Component: log.ComponentApp})
	log.SetDefault(logger)

	repo, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		return fmt.Errorf("open expense store: %w", err)
	}

	a.cfg = cfg
	a.log = logger.WithComponent(log.ComponentCLI)
	a.repo = repo
	a.live = store.NewLive(repo)
	return nil
}

func (a *app) close() {
	if a.live != nil {
		a.live.Close()
	}
	if a.repo != nil {
		if err := a.repo.Close(); err != nil {
			a.log.Error("Failed to close expense store", log.FieldError, err)
		}
	}
}

// awaitSnapshot reads one snapshot from a live query channel.
func awaitSnapshot[T any](ch <-chan T) (T, error) {
	select {
	case v := <-ch:
		return v, nil
	case <-time.After(snapshotTimeout):
		var zero T
		return zero, errors.New("timed out waiting for store snapshot")
	}
}

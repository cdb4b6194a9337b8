package cli

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/kanbanflow/workflow-engine/internal/api"
	"github.com/kanbanflow/workflow-engine/internal/client"
	"github.com/kanbanflow/workflow-engine/internal/client/webhook"
	"github.com/kanbanflow/workflow-engine/internal/config"
	"github.com/kanbanflow/workflow-engine/internal/repository"
	"github.com/kanbanflow/workflow-engine/internal/service"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	cfg        *config.Config
	logger     *slog.Logger
	rootCmd    *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "kanbanflow",
		Short: "Kanban task workflow engine",
		Long: `kanbanflow moves tasks between board columns while enforcing blocking
dependencies and per-column WIP limits.`,
		PersistentPreRunE: loadConfig,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config.yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(depsCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(configCmd)
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if verbose {
		loaded.Log.Level = "debug"
	}
	cfg = loaded
	logger = cfg.Log.NewLogger()
	slog.SetDefault(logger)
	return nil
}

func openDB() (*sql.DB, error) {
	db, err := repository.InitDB(cfg.Database.Driver, cfg.Database.Path, cfg.Database.BusyTimeoutMs)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func buildNotifier() client.Notifier {
	notifiers := client.MultiNotifier{client.NewLogNotifier(logger.With("component", "dispatcher"))}
	if cfg.Dispatcher.WebhookURL != "" {
		notifiers = append(notifiers, webhook.NewWebhookClient(cfg.Dispatcher.WebhookURL, cfg.Dispatcher.WebhookToken))
	}
	return notifiers
}

func buildServices(db *sql.DB) *api.Services {
	return api.NewServices(db, api.Options{
		Notifier:     buildNotifier(),
		Classifier:   service.NewClassifier(cfg.Classifier.Rules...),
		RejectCycles: cfg.Dependencies.RejectCycles,
		Logger:       logger,
	})
}

// withServices opens the store, runs fn, then waits for pending
// notifications before closing it.
func withServices(fn func(s *api.Services) error) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	services := buildServices(db)
	defer services.Transition.Wait()
	return fn(services)
}

// Package main provides the timekeeper CLI entry point.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"timekeeper/internal/config"
	"timekeeper/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	storePath  string

	// Set in PersistentPreRunE
	logger *zap.Logger
	cfg    *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "timekeeper",
	Short: "timekeeper - conversational attendance assistant",
	Long: `timekeeper records one attendance row per day from plain chat messages.

Tell it what you worked on ("worked on the billing API today") and it marks
you Present with the work as remarks. Ask for your timesheet, a month of it,
your expected salary, or have it emailed as an xlsx attachment.

Run without arguments to start the interactive chat interface.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch interactive chat
		return runInteractiveChat(cmd.Context())
	},
}

// setup loads .env, config and loggers. It is shared by every subcommand.
func setup() error {
	zc := zap.NewProductionConfig()
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	var err error
	logger, err = zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if loaded, err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	} else if loaded {
		logger.Debug("Loaded .env")
	}

	cfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if storePath != "" {
		cfg.Store.Path = storePath
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := logging.Initialize(cfg.Logging.LogsDir, logging.Options{
		DebugMode:  cfg.Logging.DebugMode,
		Categories: cfg.Logging.Categories,
		Level:      cfg.Logging.Level,
		JSONFormat: cfg.Logging.JSONFormat(),
	}); err != nil {
		return fmt.Errorf("failed to initialize category logs: %w", err)
	}

	logging.Boot("config loaded: backend=%s path=%s", cfg.Store.Backend, cfg.Store.Path)
	logger.Debug("Config loaded",
		zap.String("backend", cfg.Store.Backend),
		zap.String("store", cfg.Store.Path),
		zap.Bool("llm", cfg.LLM.HasCredentials()),
		zap.Bool("mail", cfg.Mail.Enabled()),
	)
	return nil
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config.yaml (default: built-in defaults)")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "Attendance store path (or set TIMEKEEPER_STORE)")

	// Add commands to root
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(timesheetCmd)
	rootCmd.AddCommand(salaryCmd)
	rootCmd.AddCommand(prefillCmd)
	rootCmd.AddCommand(clearCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

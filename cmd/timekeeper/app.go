package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"timekeeper/internal/core"
	"timekeeper/internal/logging"
	"timekeeper/internal/mail"
	"timekeeper/internal/payroll"
	"timekeeper/internal/perception"
	"timekeeper/internal/store"
)

// app bundles the assistant with the store it owns.
type app struct {
	store     store.Store
	assistant *core.Assistant
}

// newApp wires store, extractor and mailer from the loaded config. Missing
// credentials only disable the feature that needs them.
func newApp(ctx context.Context) (*app, error) {
	st, err := openStore(ctx)
	if err != nil {
		logging.BootError("%v", err)
		return nil, err
	}

	var ex perception.Extractor
	if cfg.LLM.HasCredentials() {
		ex, err = perception.NewExtractorFromConfig(ctx, cfg)
		if err != nil {
			logging.BootError("extractor: %v", err)
			_ = st.Close()
			return nil, err
		}
	} else {
		logger.Warn("No GEMINI_API_KEY set; attendance remarks cannot be extracted")
	}

	opts := []core.Option{
		core.WithEstimator(payroll.NewEstimator(cfg.Payroll)),
		core.WithReportText(cfg.Mail.Subject, cfg.Mail.Body),
		core.WithScratchDir(scratchDir()),
	}
	if cfg.Mail.Enabled() {
		sender, err := mail.NewSenderFromConfig(cfg.Mail)
		if err != nil {
			logging.BootError("mailer: %v", err)
			_ = st.Close()
			return nil, err
		}
		opts = append(opts, core.WithMailer(sender))
	} else {
		logger.Debug("Mail disabled: SENDGRID_API_KEY or FROM_EMAIL missing")
	}

	classifier := perception.NewClassifier(ex)
	return &app{
		store:     st,
		assistant: core.NewAssistant(st, classifier, opts...),
	}, nil
}

func openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if err := st.EnsureInitialized(ctx); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	logger.Debug("Store ready", zap.String("backend", cfg.Store.Backend), zap.String("path", cfg.Store.Path))
	return st, nil
}

func scratchDir() string {
	dir := filepath.Join(os.TempDir(), "timekeeper")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return os.TempDir()
	}
	return dir
}

func (a *app) Close() error {
	return a.store.Close()
}

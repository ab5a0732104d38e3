// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package main

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/parley-dev/parley/internal/config"
	"github.com/parley-dev/parley/internal/generator"
	_ "github.com/parley-dev/parley/internal/generator/anthropic"
	_ "github.com/parley-dev/parley/internal/generator/google"
	_ "github.com/parley-dev/parley/internal/generator/openai"
	"github.com/parley-dev/parley/internal/interview"
	"github.com/parley-dev/parley/internal/secrets"
	"github.com/parley-dev/parley/internal/server"
	"github.com/parley-dev/parley/internal/store"
	_ "github.com/parley-dev/parley/internal/store/redis"
	_ "github.com/parley-dev/parley/internal/store/sqlite"
	"github.com/parley-dev/parley/internal/voice"
	parleyerr "github.com/parley-dev/parley/pkg/errors"
)

func newStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the parley service",
		Long:  "Load configuration, initialize the session store and question generator, and start the HTTP server.",
		RunE:  runStart,
	}

	cmd.Flags().String("listen", "", "override listen address (host:port)")

	return cmd
}

func runStart(cmd *cobra.Command, _ []string) error {
	v := rootViper

	// Resolve keyring:// secret references before unmarshalling so API
	// keys never have to live in the config file.
	secrets.ResolveViperSecrets(v, secrets.NewKeyringStore())

	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.Server.Listen = listen
	}

	setupLogging(cfg.Logging, v.GetBool("verbose"))
	log := slog.Default()

	sessionStore, err := store.New(&store.Config{
		Backend:        cfg.Store.Backend,
		URL:            cfg.Store.URL,
		Path:           cfg.Store.Path,
		SessionTTL:     cfg.Store.SessionTTL,
		RetryAttempts:  cfg.Store.RetryAttempts,
		RetryBaseDelay: cfg.Store.RetryBaseDelay,
		ConnectTimeout: cfg.Store.ConnectTimeout,
	})
	if err != nil {
		return parleyerr.Wrap(err, parleyerr.CodeCLISetupFailure, "initializing session store")
	}
	defer func() { _ = sessionStore.Close() }()

	questions, err := generator.New(&generator.Config{
		Provider:    cfg.Generator.Provider,
		APIKey:      cfg.Generator.APIKey,
		BaseURL:     cfg.Generator.BaseURL,
		Model:       cfg.Generator.Model,
		Temperature: cfg.Generator.Temperature,
		MaxTokens:   cfg.Generator.MaxTokens,
	})
	if err != nil {
		return parleyerr.Wrap(err, parleyerr.CodeCLISetupFailure, "initializing question generator")
	}
	defer func() { _ = questions.Close() }()

	manager := interview.NewManager(sessionStore, questions,
		interview.WithCreateRetry(store.NewRetryPolicy(cfg.Store.RetryAttempts, cfg.Store.RetryBaseDelay)))

	voiceSvc := voice.New(voice.Config{
		APIKey:          cfg.Voice.APIKey,
		BaseURL:         cfg.Voice.BaseURL,
		SpeechModel:     cfg.Voice.SpeechModel,
		TranscribeModel: cfg.Voice.TranscribeModel,
		DefaultVoice:    cfg.Voice.DefaultVoice,
	}, sessionStore)

	srv, err := server.New(server.Config{
		ListenAddr:      cfg.Server.Listen,
		CORSOrigins:     cfg.Server.CORSOrigins,
		SecureCookies:   cfg.Server.SecureCookies,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return err
	}

	svc, err := server.NewServices(manager, voiceSvc, sessionStore)
	if err != nil {
		return err
	}
	srv.RegisterServices(svc)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting parley",
		"listen", cfg.Server.Listen,
		"store", cfg.Store.Backend,
		"generator", cfg.Generator.Provider,
		"voice_configured", voiceSvc.Configured())

	return srv.Start(ctx)
}

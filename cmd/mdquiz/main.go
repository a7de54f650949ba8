// Package main implements the entry point for mdquiz, an interactive
// spaced-repetition reviewer for directories of markdown flashcards.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/phrazzld/mdquiz/internal/cards"
	"github.com/phrazzld/mdquiz/internal/cli"
	"github.com/phrazzld/mdquiz/internal/config"
	"github.com/phrazzld/mdquiz/internal/domain/srs"
	"github.com/phrazzld/mdquiz/internal/platform/logger"
	"github.com/phrazzld/mdquiz/internal/platform/postgres"
	"github.com/phrazzld/mdquiz/internal/review"
	"github.com/phrazzld/mdquiz/internal/store"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run a migration command instead of a review session (up, down, reset, status, version)")
	cardsDir := flag.String("cards", "",
		"override the configured card directory")
	flag.Parse()

	if err := run(*migrateCmd, *cardsDir); err != nil {
		if errors.Is(err, review.ErrSessionAborted) {
			slog.Info("session aborted by learner")
			return
		}
		fmt.Fprintf(os.Stderr, "mdquiz: %v\n", err)
		os.Exit(1)
	}
}

// run loads configuration, sets up logging and the database, and executes
// either the requested migration command or a review session.
func run(migrateCmd, cardsDir string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cardsDir != "" {
		cfg.Cards.Dir = cardsDir
	}

	log, err := logger.Setup(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("configuration loaded",
		"cards_dir", cfg.Cards.Dir,
		"drain_policy", cfg.Review.DrainPolicy,
		"log_level", cfg.Log.Level)

	db, err := setupDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", "error", err)
		}
	}()

	if migrateCmd != "" {
		log.Info("executing migration command", "command", migrateCmd)
		return postgres.RunMigrations(db, migrateCmd)
	}

	policy, err := review.ParseDrainPolicy(cfg.Review.DrainPolicy)
	if err != nil {
		return err
	}

	session := review.NewSession(
		store.NewTransactor(db),
		postgres.NewHistoryStore(db, log),
		postgres.NewReviewLogStore(db, log),
		srs.NewDefaultService(),
		cli.NewPresenter(os.Stdin, os.Stdout, os.Stderr),
		cards.NewLoader(log, cfg.Cards.StrictDependencies),
		log,
		review.Options{
			DrainPolicy:  policy,
			PruneMissing: cfg.Review.PruneMissing,
		},
	)

	ctx := logger.WithLogger(context.Background(), log)
	return session.Run(ctx, os.DirFS(cfg.Cards.Dir))
}

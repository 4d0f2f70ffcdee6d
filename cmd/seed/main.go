// Command seed loads tag and ingredient reference data from JSON files into
// the database. Existing rows are kept; duplicates are skipped.
//
// Usage:
//
//	seed -tags data/tags.json -ingredients data/ingredients.json
//
// File formats:
//
//	tags:        [{"name": "breakfast", "slug": "breakfast"}, ...]
//	ingredients: [{"name": "flour", "measurement_unit": "g"}, ...]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aleksej-tulko/foodgram/internal/apperror"
	"github.com/aleksej-tulko/foodgram/internal/config"
	"github.com/aleksej-tulko/foodgram/internal/model"
	sqliteRepo "github.com/aleksej-tulko/foodgram/internal/repository/sqlite"
)

func main() {
	tagsPath := flag.String("tags", "", "path to the tags JSON file")
	ingredientsPath := flag.String("ingredients", "", "path to the ingredients JSON file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if *tagsPath == "" && *ingredientsPath == "" {
		logger.Error("nothing to do: pass -tags and/or -ingredients")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("loading configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		logger.Error("creating database directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		logger.Error("opening database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()

	if *tagsPath != "" {
		if err := seedTags(ctx, db, *tagsPath, logger); err != nil {
			logger.Error("seeding tags", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
	if *ingredientsPath != "" {
		if err := seedIngredients(ctx, db, *ingredientsPath, logger); err != nil {
			logger.Error("seeding ingredients", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
}

func seedTags(ctx context.Context, db *sqliteRepo.DB, path string, logger *slog.Logger) error {
	var tags []model.Tag
	if err := readJSON(path, &tags); err != nil {
		return err
	}

	created, skipped := 0, 0
	for i := range tags {
		err := db.CreateTag(ctx, &tags[i])
		switch {
		case err == nil:
			created++
		case errors.Is(err, apperror.ErrConflict):
			skipped++
		default:
			return err
		}
	}

	logger.Info("tags seeded", slog.Int("created", created), slog.Int("skipped", skipped))
	return nil
}

func seedIngredients(ctx context.Context, db *sqliteRepo.DB, path string, logger *slog.Logger) error {
	var ingredients []model.Ingredient
	if err := readJSON(path, &ingredients); err != nil {
		return err
	}

	created, skipped := 0, 0
	for i := range ingredients {
		err := db.CreateIngredient(ctx, &ingredients[i])
		switch {
		case err == nil:
			created++
		case errors.Is(err, apperror.ErrConflict):
			skipped++
		default:
			return err
		}
	}

	logger.Info("ingredients seeded", slog.Int("created", created), slog.Int("skipped", skipped))
	return nil
}

func readJSON(path string, dst any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(dst)
}

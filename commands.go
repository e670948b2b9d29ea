package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"recipeportal/catalog"
	"recipeportal/config"
	"recipeportal/db"
	"recipeportal/importer"
	"recipeportal/rdx"
)

const importConcurrency = 4

// withDatabase connects to the configured deployment for one maintenance command.
func withDatabase(ctx context.Context, cfg *config.Config, log *zap.Logger, fn func(*db.Database) error) error {
	database, err := db.Connect(ctx, cfg.Mongo, log)
	if err != nil {
		return err
	}
	defer disconnect(database, log)
	return fn(database)
}

// invalidateStats drops the cached stats of running servers after a bulk write.
func invalidateStats(ctx context.Context, cfg *config.Config, log *zap.Logger) {
	if cfg.Redis.Addr == "" {
		return
	}
	client, err := rdx.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Warn("stats cache not invalidated", zap.Error(err))
		return
	}
	defer client.Close()
	if err := rdx.NewStatsCache(client, cfg.Redis.StatsCacheTTL).Invalidate(ctx); err != nil {
		log.Warn("stats cache not invalidated", zap.Error(err))
	}
}

func seed(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	return withDatabase(ctx, cfg, log, func(database *db.Database) error {
		deleted, inserted, err := importer.Seed(ctx, db.NewRecipeStore(database.Recipes), time.Now())
		if err != nil {
			return err
		}
		log.Info("catalog seeded", zap.Int64("removed", deleted), zap.Int("inserted", inserted))
		invalidateStats(ctx, cfg, log)
		return nil
	})
}

func importCSV(ctx context.Context, cfg *config.Config, log *zap.Logger, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	recipes, res, err := importer.ReadCSV(f, time.Now())
	if err != nil {
		return err
	}
	log.Info("dataset read", zap.String("file", path), zap.Int("rows", res.Rows), zap.Int("valid", len(recipes)), zap.Int("skipped", res.Skipped))
	if len(recipes) == 0 {
		return errors.New("no valid recipes found to insert")
	}

	return withDatabase(ctx, cfg, log, func(database *db.Database) error {
		store := db.NewRecipeStore(database.Recipes)
		done, err := importer.Import(ctx, store, recipes, res, importConcurrency, log)
		if err != nil {
			return err
		}
		log.Info("dataset imported", zap.Int("inserted", done.Inserted), zap.Int("failed", done.Failed))
		invalidateStats(ctx, cfg, log)
		return writeStats(ctx, catalog.NewService(store, nil))
	})
}

func printStats(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	return withDatabase(ctx, cfg, log, func(database *db.Database) error {
		return writeStats(ctx, catalog.NewService(db.NewRecipeStore(database.Recipes), nil))
	})
}

func writeStats(ctx context.Context, svc *catalog.Service) error {
	stats, err := svc.Stats(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Total recipes:\t%d\n\n", stats.TotalRecipes)
	fmt.Fprintln(w, "CUISINE\tRECIPES")
	for _, c := range stats.Cuisines {
		fmt.Fprintf(w, "%s\t%d\n", c.Category, c.Count)
	}
	fmt.Fprintf(w, "\n%d countries\n", len(stats.Countries))
	return w.Flush()
}

func printCount(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	return withDatabase(ctx, cfg, log, func(database *db.Database) error {
		n, err := db.NewRecipeStore(database.Recipes).Count(ctx, catalog.Filter{})
		if err != nil {
			return err
		}
		fmt.Printf("%d recipes in %s\n", n, database.Name)
		return nil
	})
}

// migrate copies the configured deployment into the one at uri.
func migrate(ctx context.Context, cfg *config.Config, log *zap.Logger, uri string) error {
	if uri == "" {
		return errors.New("migrate needs -to <mongodb uri>")
	}
	target := cfg.Mongo
	target.URI = uri
	target.Database = config.DatabaseFromURI(uri)

	return withDatabase(ctx, cfg, log, func(src *db.Database) error {
		dst, err := db.Connect(ctx, target, log.With(zap.String("side", "target")))
		if err != nil {
			return err
		}
		defer disconnect(dst, log)

		if err := dst.EnsureIndexes(ctx); err != nil {
			return err
		}
		res, err := db.Copy(ctx, src, dst, log)
		if err != nil {
			return err
		}
		log.Info("migration complete",
			zap.Int("recipes", res.RecipesCopied),
			zap.Int("users", res.UsersCopied),
			zap.Int("users_skipped", res.UsersSkipped),
		)
		return nil
	})
}

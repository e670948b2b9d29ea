package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"recipeportal/config"
	"recipeportal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	command := flag.String("command", "serve", "serve, seed, import, stats, count or migrate")
	file := flag.String("file", "Cleaned_Indian_Food_Dataset.csv", "dataset for -command import")
	target := flag.String("to", "", "MongoDB URI to copy into for -command migrate")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()
	log = log.With(zap.String("command", *command))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, log)

	switch *command {
	case "serve":
		err = serve(ctx, cfg, log)
	case "seed":
		err = seed(ctx, cfg, log)
	case "import":
		err = importCSV(ctx, cfg, log, *file)
	case "stats":
		err = printStats(ctx, cfg, log)
	case "count":
		err = printCount(ctx, cfg, log)
	case "migrate":
		err = migrate(ctx, cfg, log, *target)
	default:
		fmt.Fprintf(os.Stderr, "Usage: %s -command serve|seed|import|stats|count|migrate [-file X.csv] [-to URI]\n", os.Args[0])
		return 2
	}
	if err != nil {
		log.Error("command failed", zap.Error(err))
		return 1
	}
	return 0
}

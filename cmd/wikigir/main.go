package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/krauseamir/wikigir/internal/pipeline"
	"github.com/krauseamir/wikigir/pkg/config"
	pkgerrors "github.com/krauseamir/wikigir/pkg/errors"
	"github.com/krauseamir/wikigir/pkg/logger"
	"github.com/krauseamir/wikigir/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "configs/wikigir.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting wikigir builder",
		"dump", cfg.Paths.WikiXMLPath(),
		"workers", cfg.Neighbors.Workers,
	)

	m := metrics.New()
	if cfg.Metrics.Enabled {
		shutdown := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(ctx)
		}()
	}

	start := time.Now()
	if err := pipeline.New(cfg, m).Run(); err != nil {
		slog.Error("pipeline failed", "error", err, "fatal", pkgerrors.Fatal(err))
		os.Exit(1)
	}

	slog.Info("all phases complete", "elapsed", time.Since(start).String())
}

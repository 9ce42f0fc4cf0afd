package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/agrisense/internal/buildinfo"
	"github.com/dmitrijs2005/agrisense/internal/client/cli"
	"github.com/dmitrijs2005/agrisense/internal/client/client"
	"github.com/dmitrijs2005/agrisense/internal/client/config"
	"github.com/dmitrijs2005/agrisense/internal/client/metrics"
	"github.com/dmitrijs2005/agrisense/internal/client/services"
	"github.com/dmitrijs2005/agrisense/internal/client/session"
	"github.com/dmitrijs2005/agrisense/internal/filex"
	"github.com/dmitrijs2005/agrisense/internal/logging"
	"github.com/sony/gobreaker/v2"
)

const dbFile = "agrisense.db"

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	if err := run(context.Background(), config.LoadConfig()); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := logging.New(os.Stderr, cfg.LogLevel)

	dir, err := filex.EnsureDir(cfg.DataDir)
	if err != nil {
		return err
	}
	db, err := client.InitDatabase(ctx, filepath.Join(dir, dbFile))
	if err != nil {
		return err
	}
	defer db.Close()
	repos := client.NewRepositories(db)

	var opts []session.Option
	opts = append(opts, session.WithLogger(logger))
	if cfg.VaultPassphrase != "" {
		sealer, err := session.PassphraseSealer(ctx, repos.Metadata, cfg.VaultPassphrase)
		if err != nil {
			return err
		}
		opts = append(opts, session.WithSealer(sealer))
	}
	sess, err := session.Open(ctx, repos.Metadata, opts...)
	if err != nil {
		return err
	}

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, m, logger); err != nil {
				logger.Error(ctx, "metrics endpoint stopped", "error", err)
			}
		}()
	}

	api, err := client.NewHTTPClient(cfg.BaseURL, sess,
		client.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		client.WithLogger(logger),
		client.WithMetrics(m),
		client.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		client.WithCircuitBreaker(gobreaker.Settings{
			Name:        "backend",
			MaxRequests: 1,
			Timeout:     15 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 3 },
		}),
	)
	if err != nil {
		return err
	}

	auth := services.NewAuthService(api, sess, logger)
	app := cli.NewApp(cli.Deps{
		Auth:      auth,
		Fusion:    services.NewFusionService(api, auth, repos.Snapshots, logger),
		Community: services.NewCommunityService(api),
		Session:   sess,
		Logger:    logger,
	}, cfg.OnlineCheckInterval)

	app.Run(ctx)
	return nil
}

// Command economizer evaluates whether opening the windows will cool or heat
// a building, from the latest METAR report of a nearby station and the
// entered indoor conditions and window geometry.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/metar-economizer/internal/adapter/console"
	kafkaadapter "github.com/couchcryptid/metar-economizer/internal/adapter/kafka"
	"github.com/couchcryptid/metar-economizer/internal/adapter/noaa"
	"github.com/couchcryptid/metar-economizer/internal/config"
	"github.com/couchcryptid/metar-economizer/internal/domain"
	"github.com/couchcryptid/metar-economizer/internal/evaluator"
	"github.com/couchcryptid/metar-economizer/internal/observability"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return domain.ExitResourceMissing
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ui := console.New(os.Stdin, os.Stdout)

	table, err := domain.LoadSaturationTable(cfg.SaturationTablePath)
	if err != nil {
		logger.Error("saturation table unavailable", "path", cfg.SaturationTablePath, "error", err)
		ui.Fatal(err)
		return domain.ExitCode(err)
	}
	logger.Debug("saturation table loaded", "path", cfg.SaturationTablePath, "rows", table.Len())

	// Result sink is optional (KAFKA_BROKERS / KAFKA_ENABLED).
	var publisher evaluator.Publisher
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		publisher = writer
		logger.Info("kafka result sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	fetcher := noaa.NewClient(cfg.MetarBaseURL, cfg.UserAgent, cfg.FetchTimeout, logger, metrics)
	e := evaluator.New(fetcher, publisher, ui, table, logger, metrics, cfg.StaleAfter)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	// After the first signal, a second one gets the default handler.
	context.AfterFunc(ctx, stop)

	_, err = e.Run(ctx)
	if cfg.MetricsTextfile != "" {
		if werr := metrics.WriteTextfile(cfg.MetricsTextfile); werr != nil {
			logger.Error("metrics export failed", "path", cfg.MetricsTextfile, "error", werr)
		}
	}

	code := domain.ExitCode(err)
	if code != domain.ExitOK {
		logger.Error("evaluation failed", "error", err, "exit_code", code)
		ui.Fatal(err)
	} else if err != nil && !errors.Is(err, domain.ErrUserExit) {
		logger.Debug("evaluation ended early", "reason", err)
	}
	return code
}

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/park285/spycard-go/internal/common/bootstrap"
	"github.com/park285/spycard-go/internal/common/health"
	sapp "github.com/park285/spycard-go/internal/spycard/app"
	sconfig "github.com/park285/spycard-go/internal/spycard/config"
)

// Version: 빌드 시 ldflags로 주입됨 (예: -ldflags="-X main.Version=1.0.0")
var Version = "dev"

func main() {
	health.Init(Version)

	logger := bootstrap.NewLogger()
	slog.SetDefault(logger)

	finalLogger, err := bootstrap.RunEntrypoint(
		context.Background(),
		logger,
		"spycard.log",
		sconfig.LoadFromEnv,
		func(cfg *sconfig.Config) bootstrap.LogSettings {
			return bootstrap.LogSettings{Log: cfg.Log, EnableOTel: cfg.Telemetry.Enabled}
		},
		sapp.Initialize,
	)
	if err != nil {
		logger = finalLogger
		logger.Error("fatal", "err", err)
		os.Exit(1)
	}
}

//go:build wireinject

package app

import (
	"context"
	"log/slog"

	"github.com/google/wire"

	"github.com/park285/spycard-go/internal/common/bootstrap"
	sconfig "github.com/park285/spycard-go/internal/spycard/config"
)

//go:generate go run github.com/google/wire/cmd/wire@v0.7.0
func Initialize(
	ctx context.Context,
	cfg *sconfig.Config,
	logger *slog.Logger,
) (*bootstrap.ServerApp, func(), error) {
	wire.Build(
		spyCardProviderSet,
	)
	return nil, nil, nil
}

// @title        Art Shoppe storefront
// @version      1.0
// @description  Marketing pages and the admin back office behind the edge gate.
// @BasePath     /
package main

import (
	"context"
	"os/signal"
	"syscall"

	_ "github.com/artshoppe/storefront/docs"
	"github.com/artshoppe/storefront/internal/app"
	"github.com/artshoppe/storefront/internal/pkg/config"
	"github.com/artshoppe/storefront/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "storefront",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("create app")
	}
	if err := a.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("run app")
	}
}

//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/waterbar/waterbar/internal/bootstrap"
	"github.com/waterbar/waterbar/internal/domain/chat"
	"github.com/waterbar/waterbar/internal/domain/plan"
	"github.com/waterbar/waterbar/internal/domain/shop"
	"github.com/waterbar/waterbar/internal/domain/tracker"
	"github.com/waterbar/waterbar/internal/infra/config"
	httpiface "github.com/waterbar/waterbar/internal/interface/http"
	"github.com/waterbar/waterbar/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		providePlanConfig,
		provideTrackerConfig,
		provideChatConfig,
		provideShopConfig,
		provideGenerator,
		provideTrackerRepository,
		provideChatStore,
		provideShopStore,
		plan.NewService,
		tracker.NewService,
		chat.NewService,
		shop.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}

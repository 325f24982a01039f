package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/waterbar/waterbar/internal/domain/chat"
	"github.com/waterbar/waterbar/internal/domain/plan"
	"github.com/waterbar/waterbar/internal/domain/shop"
	"github.com/waterbar/waterbar/internal/domain/tracker"
	"github.com/waterbar/waterbar/internal/infra/chatstore"
	"github.com/waterbar/waterbar/internal/infra/config"
	"github.com/waterbar/waterbar/internal/infra/llm"
	"github.com/waterbar/waterbar/internal/infra/llm/gemini"
	"github.com/waterbar/waterbar/internal/infra/llm/openai"
	"github.com/waterbar/waterbar/internal/infra/shopstore"
	"github.com/waterbar/waterbar/internal/infra/trackerrepo"
)

func providePlanConfig(cfg *config.Config) plan.Config {
	return plan.Config{
		Model:          cfg.LLM.Model,
		RequestTimeout: cfg.LLM.RequestTimeout,
	}
}

func provideTrackerConfig(cfg *config.Config) tracker.Config {
	return tracker.Config{
		DailyGoalML: cfg.Tracker.DailyGoalML,
	}
}

func provideChatConfig(cfg *config.Config) chat.Config {
	return chat.Config{
		Model:        cfg.LLM.Model,
		Prompt:       cfg.Chat.Prompt,
		HistoryLimit: cfg.Chat.HistoryLimit,
	}
}

func provideShopConfig(cfg *config.Config) shop.Config {
	return shop.Config{
		TTL:         cfg.Shop.TTL,
		MaxProducts: cfg.Shop.MaxProducts,
	}
}

func provideGenerator(cfg *config.Config) (llm.Generator, error) {
	switch cfg.LLM.Provider {
	case "gemini":
		return gemini.NewClient(context.Background(), cfg.LLM.APIKey, cfg.LLM.Model)
	case "openai":
		return openai.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLM.Provider)
	}
}

func provideTrackerRepository(cfg *config.Config, logger *slog.Logger) tracker.Repository {
	fallback := trackerrepo.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.Tracker.Postgres.DSN)
	if dsn == "" {
		logger.Info("tracker postgres dsn not set, using memory repository")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback
	}
	if cfg.Tracker.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Tracker.Postgres.MaxConns
	}
	if cfg.Tracker.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Tracker.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("tracker postgres repository enabled")
	return trackerrepo.NewPostgresRepository(pool)
}

func provideChatStore() chat.Store {
	return chatstore.NewMemoryStore()
}

func provideShopStore(cfg *config.Config, logger *slog.Logger) shop.Store {
	if cfg.Shop.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return shopstore.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return shopstore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
		} else {
			logger.Info("shop valkey store enabled", "addr", cfg.Shop.Valkey.Addr)
			return shopstore.NewValkeyStore(client, "shop")
		}
	}
	return shopstore.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Shop.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Shop.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Shop.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

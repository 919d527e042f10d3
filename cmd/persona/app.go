package main

import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/persona-fusion/internal/codec"
	"github.com/danielpatrickdp/persona-fusion/internal/config"
	"github.com/danielpatrickdp/persona-fusion/internal/creative"
	"github.com/danielpatrickdp/persona-fusion/internal/diary"
	"github.com/danielpatrickdp/persona-fusion/internal/environment"
	"github.com/danielpatrickdp/persona-fusion/internal/orchestrator"
	"github.com/danielpatrickdp/persona-fusion/internal/state"
	"go.uber.org/zap"
)

// #region app

// app holds every wired component for one command invocation.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	store      *state.Store
	diary      *diary.Store
	aggregator *environment.Aggregator
	orch       *orchestrator.Orchestrator
	portraits  *creative.Service
	codec      *codec.CodecClient
}

// newApp opens the database and wires the pipeline from cfg.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	store, err := state.NewStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a := &app{cfg: cfg, logger: logger, store: store}

	a.diary, err = diary.NewStore(store.DB())
	if err != nil {
		a.close()
		return nil, fmt.Errorf("open diary: %w", err)
	}
	memory, err := orchestrator.NewRoutingMemory(store.DB())
	if err != nil {
		a.close()
		return nil, fmt.Errorf("open routing memory: %w", err)
	}

	a.aggregator = environment.NewAggregator(providersFor(cfg),
		environment.WithCache(environment.NewMemoryStore(cfg.Cache.MaxEntries, environment.DefaultTTLs)),
		environment.WithLogger(logger),
	)

	var (
		imager  creative.Imager
		intents orchestrator.IntentService
	)
	if cfg.Codec.Enabled {
		a.codec, err = codec.NewCodecClient(cfg.Codec.Addr)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connect codec service at %s: %w", cfg.Codec.Addr, err)
		}
		imager = creative.NewCodecImager(a.codec)
		intents = a.codec
	} else if cfg.GenAI.APIKey != "" {
		g, err := creative.NewGenAIImager(ctx, cfg.GenAI.APIKey, cfg.GenAI.ImageModel)
		if err != nil {
			a.close()
			return nil, err
		}
		imager = g
	}

	a.portraits = creative.NewService(imager, logger)
	deps := orchestrator.Deps{
		Snapshots: store,
		Context:   a.aggregator,
		AuditDB:   store.DB(),
		Memory:    memory,
		Intents:   intents,
		Portraits: a.portraits,
		Logger:    logger,
	}
	a.orch, err = orchestrator.NewOrchestrator(deps)
	if err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) close() {
	if a.codec != nil {
		a.codec.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
	a.logger.Sync()
}

// providersFor picks live or built-in sources per category. Weather without
// an API key stays unconfigured so it resolves to the fallback reading.
func providersFor(cfg *config.Config) environment.Providers {
	var p environment.Providers
	if cfg.Weather.APIKey != "" {
		p.Weather = environment.NewOpenWeatherClient(cfg.Weather.BaseURL, cfg.Weather.APIKey, cfg.Weather.Timeout)
	}
	if cfg.Profiles.BaseURL != "" {
		pc := environment.NewProfileClient(cfg.Profiles.BaseURL, cfg.Profiles.Timeout)
		p.Cultural, p.Economic, p.Geopolitical = pc, pc, pc
	} else {
		var sp environment.StaticProfiles
		p.Cultural, p.Economic, p.Geopolitical = sp, sp, sp
	}
	return p
}

// #endregion app

package cron

import (
	"context"

	"github.com/opsgrid/facilitypulse/internal/config"
	"github.com/opsgrid/facilitypulse/internal/snapshot/generator"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("cron",
	fx.Provide(ProvideConfig),
	fx.Provide(NewController),
	fx.Invoke(registerLifecycle),
)

func ProvideConfig(cfg config.Config) Config {
	return Config{
		Interval: cfg.SnapshotInterval,
	}
}

func NewController(log *zap.Logger, cfg Config, gen *generator.Generator) *Controller {
	return New(log, cfg, gen)
}

func registerLifecycle(lc fx.Lifecycle, ctrl *Controller) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			ctrl.Close()
			return nil
		},
	})
}

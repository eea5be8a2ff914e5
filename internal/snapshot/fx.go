package snapshot

import (
	"github.com/opsgrid/facilitypulse/internal/config"
	"github.com/opsgrid/facilitypulse/internal/snapshot/generator"
	"github.com/opsgrid/facilitypulse/internal/snapshot/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("snapshot",
	fx.Provide(repository.New),
	fx.Provide(provideGeneratorConfig),
	fx.Provide(generator.New),
)

func provideGeneratorConfig(cfg config.Config) generator.Config {
	return generator.Config{
		RetentionLimit: cfg.RetentionLimit,
	}
}

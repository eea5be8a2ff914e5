package facility

import "go.uber.org/fx"

var Module = fx.Module("facility.repository",
	fx.Provide(NewRepository),
)

package viewed

import (
	"go.uber.org/fx"
)

var Module = fx.Module("viewed_repository",
	fx.Provide(
		NewRedis,
		fx.Annotate(
			func(repo *Redis) Repository {
				return repo
			},
			fx.As(new(Repository)),
		),
	),
)

package scheduler

import (
	"context"
	"time"

	"github.com/atomoco/atomo/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("scheduler",
	fx.Provide(newFromConfig),
	fx.Invoke(start),
)

func newFromConfig(p Params, cfg config.Config) *Scheduler {
	return New(p, time.Duration(cfg.SessionSweepInterval)*time.Second)
}

func start(lc fx.Lifecycle, sched *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			go sched.RunForever(ctx)

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})
			return nil
		},
	})
}

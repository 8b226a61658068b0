package billing

import (
	"github.com/atomoco/atomo/internal/billing/repository"
	"github.com/atomoco/atomo/internal/billing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billing.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)

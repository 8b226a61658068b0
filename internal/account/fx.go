package account

import (
	"github.com/atomoco/atomo/internal/account/repository"
	"github.com/atomoco/atomo/internal/account/service"
	"go.uber.org/fx"
)

var Module = fx.Module("account.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)

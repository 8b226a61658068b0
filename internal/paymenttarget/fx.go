package paymenttarget

import (
	"github.com/atomoco/atomo/internal/paymenttarget/repository"
	"github.com/atomoco/atomo/internal/paymenttarget/service"
	"go.uber.org/fx"
)

var Module = fx.Module("paymenttarget.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)

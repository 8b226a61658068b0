package signup

import (
	"github.com/atomoco/atomo/internal/signup/repository"
	"github.com/atomoco/atomo/internal/signup/service"
	"go.uber.org/fx"
)

var Module = fx.Module("signup.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)

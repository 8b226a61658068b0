package client

import (
	"github.com/atomoco/atomo/internal/client/repository"
	"github.com/atomoco/atomo/internal/client/service"
	"go.uber.org/fx"
)

var Module = fx.Module("client.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)

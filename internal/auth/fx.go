package auth

import (
	"github.com/atomoco/atomo/internal/auth/repository"
	"github.com/atomoco/atomo/internal/auth/service"
	"github.com/atomoco/atomo/internal/auth/session"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
	fx.Provide(session.NewManager),
)

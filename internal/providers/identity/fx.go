package identity

import (
	"github.com/atomoco/atomo/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.identity",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config) Provider {
	if cfg.IdentityAPIURL != "" {
		return NewHTTP(cfg.IdentityAPIURL, cfg.IdentityAPIKey)
	}
	return &LocalProvider{}
}

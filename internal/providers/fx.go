package providers

import (
	"github.com/atomoco/atomo/internal/providers/email"
	"github.com/atomoco/atomo/internal/providers/identity"
	"github.com/atomoco/atomo/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	identity.Module,
	pdf.Module,
)

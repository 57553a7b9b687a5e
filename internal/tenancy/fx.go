package tenancy

import (
	"github.com/arafateouronile-glitch/immokey/internal/tenancy/repository"
	"github.com/arafateouronile-glitch/immokey/internal/tenancy/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tenancy.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)

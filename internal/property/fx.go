package property

import (
	"github.com/arafateouronile-glitch/immokey/internal/property/repository"
	"github.com/arafateouronile-glitch/immokey/internal/property/service"
	"go.uber.org/fx"
)

var Module = fx.Module("property.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)

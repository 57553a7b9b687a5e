package rentbilling

import (
	"github.com/arafateouronile-glitch/immokey/internal/rentbilling/repository"
	"github.com/arafateouronile-glitch/immokey/internal/rentbilling/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rentbilling.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)

package booking

import (
	"github.com/arafateouronile-glitch/immokey/internal/booking/repository"
	"github.com/arafateouronile-glitch/immokey/internal/booking/service"
	"go.uber.org/fx"
)

var Module = fx.Module("booking.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)

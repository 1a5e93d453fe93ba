package partner

import (
	"github.com/tunebridge/tunebridge/internal/partner/repository"
	"github.com/tunebridge/tunebridge/internal/partner/service"
	"go.uber.org/fx"
)

var Module = fx.Module("partner.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

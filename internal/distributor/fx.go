package distributor

import (
	"github.com/tunebridge/tunebridge/internal/distributor/repository"
	"github.com/tunebridge/tunebridge/internal/distributor/service"
	"go.uber.org/fx"
)

var Module = fx.Module("distributor.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

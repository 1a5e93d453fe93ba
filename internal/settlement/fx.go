package settlement

import (
	"github.com/tunebridge/tunebridge/internal/settlement/repository"
	"github.com/tunebridge/tunebridge/internal/settlement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("settlement.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

package contract

import (
	"github.com/tunebridge/tunebridge/internal/contract/repository"
	"github.com/tunebridge/tunebridge/internal/contract/service"
	"go.uber.org/fx"
)

var Module = fx.Module("contract.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

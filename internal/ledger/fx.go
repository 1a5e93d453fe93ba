package ledger

import (
	"github.com/tunebridge/tunebridge/internal/ledger/repository"
	"github.com/tunebridge/tunebridge/internal/ledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

package track

import (
	"github.com/tunebridge/tunebridge/internal/track/repository"
	"github.com/tunebridge/tunebridge/internal/track/service"
	"go.uber.org/fx"
)

var Module = fx.Module("track.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

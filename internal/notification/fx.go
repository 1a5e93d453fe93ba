package notification

import (
	"github.com/tunebridge/tunebridge/internal/notification/repository"
	"github.com/tunebridge/tunebridge/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

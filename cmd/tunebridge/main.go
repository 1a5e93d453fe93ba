package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/tunebridge/tunebridge/internal/clock"
	"github.com/tunebridge/tunebridge/internal/config"
	"github.com/tunebridge/tunebridge/internal/migration"
	"github.com/tunebridge/tunebridge/internal/observability"
	"github.com/tunebridge/tunebridge/internal/scheduler"
	"github.com/tunebridge/tunebridge/internal/server"
	"github.com/tunebridge/tunebridge/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		migration.Module,
		server.Module,
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/arafateouronile-glitch/immokey/internal/clock"
	"github.com/arafateouronile-glitch/immokey/internal/config"
	"github.com/arafateouronile-glitch/immokey/internal/logger"
	"github.com/arafateouronile-glitch/immokey/internal/migration"
	"github.com/arafateouronile-glitch/immokey/internal/server"
	"github.com/arafateouronile-glitch/immokey/pkg/db"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// HTTP surface plus the domain modules it wires in
		server.Module,
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

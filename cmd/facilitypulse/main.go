package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/opsgrid/facilitypulse/internal/clock"
	"github.com/opsgrid/facilitypulse/internal/config"
	"github.com/opsgrid/facilitypulse/internal/cron"
	"github.com/opsgrid/facilitypulse/internal/facility"
	"github.com/opsgrid/facilitypulse/internal/migration"
	"github.com/opsgrid/facilitypulse/internal/observability"
	"github.com/opsgrid/facilitypulse/internal/server"
	"github.com/opsgrid/facilitypulse/internal/snapshot"
	"github.com/opsgrid/facilitypulse/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Functional domains
		facility.Module,
		snapshot.Module,
		cron.Module,
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

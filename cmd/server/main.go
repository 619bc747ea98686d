package main

import (
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"github.com/skyvolt/fleetmon/config"
	"github.com/skyvolt/fleetmon/infra"
	"github.com/skyvolt/fleetmon/pkg/logger"
	"github.com/skyvolt/fleetmon/repo"
	"github.com/skyvolt/fleetmon/server"
	syncer "github.com/skyvolt/fleetmon/sync"

	_ "github.com/skyvolt/fleetmon/api/deye"
	_ "github.com/skyvolt/fleetmon/api/growatt"
)

func main() {
	logger.Init("server.log")

	db, err := infra.NewGormDB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	cfg := config.GetConfig()

	credRepo := repo.NewCredentialRepo(db)
	stationRepo := repo.NewStationRepo(db)
	inverterRepo := repo.NewInverterRepo(db)
	telemetryRepo := repo.NewTelemetryRepo(db)
	alertRepo := repo.NewAlertRepo(db)

	var rdb *redis.Client
	if client, err := infra.NewRedis(); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, sync lease uses the database guard only")
	} else {
		rdb = client
		defer rdb.Close()
	}

	publisher, err := infra.NewSnapshotPublisher(cfg.MQTT)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect mqtt broker")
	}
	defer publisher.Close()

	synchronizer := syncer.NewSynchronizer(credRepo, stationRepo, inverterRepo, telemetryRepo, rdb, publisher)

	srv := server.New(server.Config{
		Port:         cfg.Server.Port,
		CredRepo:     credRepo,
		StationRepo:  stationRepo,
		InverterRepo: inverterRepo,
		Telemetry:    telemetryRepo,
		AlertRepo:    alertRepo,
		Synchronizer: synchronizer,
	})

	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

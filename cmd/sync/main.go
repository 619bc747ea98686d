package main

import (
	"flag"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"github.com/skyvolt/fleetmon/config"
	"github.com/skyvolt/fleetmon/infra"
	"github.com/skyvolt/fleetmon/pkg/logger"
	"github.com/skyvolt/fleetmon/repo"
	syncer "github.com/skyvolt/fleetmon/sync"

	_ "github.com/skyvolt/fleetmon/api/deye"
	_ "github.com/skyvolt/fleetmon/api/growatt"
)

func main() {
	logger.Init("sync.log")

	credentialID := flag.Int64("credential", 0, "sync a single credential id instead of the whole fleet")
	flag.Parse()

	db, err := infra.NewGormDB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	credRepo := repo.NewCredentialRepo(db)

	var rdb *redis.Client
	if client, err := infra.NewRedis(); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, sync lease uses the database guard only")
	} else {
		rdb = client
		defer rdb.Close()
	}

	publisher, err := infra.NewSnapshotPublisher(config.GetConfig().MQTT)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect mqtt broker")
	}
	defer publisher.Close()

	synchronizer := syncer.NewSynchronizer(
		credRepo,
		repo.NewStationRepo(db),
		repo.NewInverterRepo(db),
		repo.NewTelemetryRepo(db),
		rdb,
		publisher,
	)

	if *credentialID > 0 {
		credential, err := credRepo.FindOne(*credentialID)
		if err != nil {
			log.Fatal().Err(err).Int64("credential_id", *credentialID).Msg("credential not found")
		}

		if err := synchronizer.SyncCredential(credential, time.Now()); err != nil {
			log.Fatal().Err(err).Msg("credential sync failed")
		}
		return
	}

	if err := synchronizer.Run(); err != nil {
		log.Fatal().Err(err).Msg("sync cycle failed")
	}
}

package main

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/skyvolt/fleetmon/aggregate"
	"github.com/skyvolt/fleetmon/alert"
	"github.com/skyvolt/fleetmon/archive"
	"github.com/skyvolt/fleetmon/config"
	"github.com/skyvolt/fleetmon/infra"
	"github.com/skyvolt/fleetmon/pkg/logger"
	"github.com/skyvolt/fleetmon/repo"
	syncer "github.com/skyvolt/fleetmon/sync"
	"gorm.io/gorm"

	_ "github.com/skyvolt/fleetmon/api/deye"
	_ "github.com/skyvolt/fleetmon/api/growatt"
)

var jobLogger = logger.New("runner_jobs.log")

func main() {
	logger.Init("runner.log")

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
	aggregator := aggregate.NewAggregator(telemetryRepo)
	engine := alert.NewEngine(inverterRepo, alertRepo)

	dispatcher, err := infra.NewSnmpDispatcher(cfg.SnmpList)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create snmp dispatcher")
	}
	notifier := alert.NewNotifier(alertRepo, stationRepo, inverterRepo, dispatcher)

	cron := gocron.NewScheduler(time.Local)
	if err := registerJobs(cron, &cfg, synchronizer, aggregator, engine, notifier, func() error {
		return runArchive(db)
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to register runner jobs")
	}

	log.Info().Msg("starting runner scheduler")
	cron.StartBlocking()
}

func registerJobs(
	cron *gocron.Scheduler,
	cfg *config.Config,
	synchronizer *syncer.Synchronizer,
	aggregator *aggregate.Aggregator,
	engine *alert.Engine,
	notifier *alert.Notifier,
	archiveFn func() error,
) error {
	jobs := []struct {
		cronExpr string
		name     string
		fn       func() error
	}{
		{cfg.Crontab.SyncTime, "fleet_sync", synchronizer.Run},
		{cfg.Crontab.AggregateTime, "daily_aggregate", aggregator.Run},
		{cfg.Crontab.AlertTime, "alert_evaluate", engine.Run},
		{cfg.Crontab.NotifyTime, "alert_notify", notifier.Run},
	}

	if cfg.Elastic.Enabled {
		jobs = append(jobs, struct {
			cronExpr string
			name     string
			fn       func() error
		}{cfg.Crontab.ArchiveTime, "telemetry_archive", archiveFn})
	}

	for _, job := range jobs {
		if err := addCronJob(cron, job.cronExpr, job.name, job.fn); err != nil {
			return err
		}
	}

	return nil
}

func addCronJob(cron *gocron.Scheduler, cronExpr, name string, fn func() error) error {
	if _, err := cron.Cron(cronExpr).StartImmediately().SingletonMode().Do(func() {
		safeRun(name, fn)
	}); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}

	return nil
}

func safeRun(name string, fn func() error) {
	log := jobLogger.With().Str("job", name).Logger()
	log.Info().Msg("job started")
	defer guardJob(log, name)

	if err := fn(); err != nil {
		log.Error().Err(err).Msg("job finished with error")
		return
	}

	log.Info().Msg("job finished successfully")
}

func guardJob(log zerolog.Logger, name string) {
	if r := recover(); r != nil {
		log.Error().
			Str("job", name).
			Any("recover", r).
			Msg("job panicked, recovered to keep scheduler alive")
	}
}

// runArchive builds its Elasticsearch client per run so the runner starts
// even when the cluster is down at boot.
func runArchive(db *gorm.DB) error {
	es, err := infra.NewElasticClient()
	if err != nil {
		return err
	}

	archiver := archive.NewArchiver(
		repo.NewTelemetryRepo(db),
		repo.NewStationRepo(db),
		repo.NewInverterRepo(db),
		repo.NewCredentialRepo(db),
		repo.NewArchiveRepo(es),
	)
	return archiver.Run()
}

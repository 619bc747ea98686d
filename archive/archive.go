package archive

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/skyvolt/fleetmon/model"
	"github.com/skyvolt/fleetmon/pkg/logger"
	"github.com/skyvolt/fleetmon/repo"
)

// Archiver ships the previous day's data points to Elasticsearch as
// denormalized documents, one daily index per calendar day. Re-running a day
// re-indexes the same documents.
type Archiver struct {
	telemetryRepo repo.TelemetryRepo
	stationRepo   repo.StationRepo
	inverterRepo  repo.InverterRepo
	credRepo      repo.CredentialRepo
	archiveRepo   repo.ArchiveRepo
	logger        zerolog.Logger
}

func NewArchiver(
	telemetryRepo repo.TelemetryRepo,
	stationRepo repo.StationRepo,
	inverterRepo repo.InverterRepo,
	credRepo repo.CredentialRepo,
	archiveRepo repo.ArchiveRepo,
) *Archiver {
	return &Archiver{
		telemetryRepo: telemetryRepo,
		stationRepo:   stationRepo,
		inverterRepo:  inverterRepo,
		credRepo:      credRepo,
		archiveRepo:   archiveRepo,
		logger:        zerolog.New(logger.NewWriter("archiver.log")).With().Timestamp().Caller().Logger(),
	}
}

func (a *Archiver) Run() error {
	return a.ArchiveDay(time.Now().UTC().AddDate(0, 0, -1))
}

func (a *Archiver) ArchiveDay(day time.Time) error {
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	ids, err := a.telemetryRepo.InverterIDsWithDataOn(day)
	if err != nil {
		a.logger.Error().Err(err).Time("day", day).Msg("Archiver::ArchiveDay() - failed to list inverters")
		return err
	}

	stations := make(map[int64]*model.Station)
	brands := make(map[int64]string)

	docs := make([]model.TelemetryDocument, 0)
	for _, id := range ids {
		inverter, err := a.inverterRepo.FindOne(id)
		if err != nil {
			a.logger.Warn().Err(err).Int64("inverter_id", id).Msg("Archiver::ArchiveDay() - inverter lookup failed")
			continue
		}

		station, ok := stations[inverter.StationID]
		if !ok {
			station, err = a.stationRepo.FindOne(inverter.StationID)
			if err != nil {
				a.logger.Warn().Err(err).Int64("station_id", inverter.StationID).Msg("Archiver::ArchiveDay() - station lookup failed")
				continue
			}
			stations[inverter.StationID] = station
		}

		brandCode, ok := brands[station.CredentialID]
		if !ok {
			if credential, err := a.credRepo.FindOne(station.CredentialID); err == nil {
				brandCode = credential.BrandCode
			}
			brands[station.CredentialID] = brandCode
		}

		points, err := a.telemetryRepo.FindDay(id, day)
		if err != nil {
			a.logger.Warn().Err(err).Int64("inverter_id", id).Msg("Archiver::ArchiveDay() - datapoint fetch failed")
			continue
		}

		for _, point := range points {
			docs = append(docs, model.TelemetryDocument{
				Timestamp:         point.Timestamp,
				BrandCode:         brandCode,
				StationExternalID: station.ExternalID,
				StationName:       station.Name,
				InverterSerial:    inverter.SerialNumber,
				InverterStatus:    inverter.Status,
				PowerW:            point.PowerW,
				TodayEnergyKwh:    point.TodayEnergyKwh,
				TotalEnergyKwh:    point.TotalEnergyKwh,
				BatterySocPercent: point.BatterySocPercent,
				LoadPowerW:        point.LoadPowerW,
				GridImportPowerW:  point.GridImportPowerW,
				GridExportPowerW:  point.GridExportPowerW,
			})
		}
	}

	if len(docs) == 0 {
		return nil
	}

	index := repo.TelemetryIndexName(day)
	if err := a.archiveRepo.BulkIndex(index, docs); err != nil {
		a.logger.Error().Err(err).Str("index", index).Msg("Archiver::ArchiveDay() - bulk index failed")
		return err
	}

	a.logger.Info().Str("index", index).Int("documents", len(docs)).Msg("Archiver::ArchiveDay() - archive complete")
	return nil
}

package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/skyvolt/fleetmon/api"
	"github.com/skyvolt/fleetmon/infra"
	"github.com/skyvolt/fleetmon/model"
	"github.com/skyvolt/fleetmon/pkg/logger"
	"github.com/skyvolt/fleetmon/repo"
	"github.com/skyvolt/fleetmon/setting"
	"github.com/sourcegraph/conc"
)

const (
	syncLeaseKeyFormat = "fleetmon:sync:lease:%d"
	leaseOpTimeout     = 5 * time.Second

	// backfillTriggerGap is the minimum gap since the last successful
	// sync before history backfill kicks in.
	backfillTriggerGap = 30 * time.Minute
)

// Synchronizer drives one full fleet sync: per credential it claims a lease,
// ensures a token, walks stations and inverters, and ingests realtime
// telemetry. A failing inverter never fails its credential.
type Synchronizer struct {
	credRepo      repo.CredentialRepo
	stationRepo   repo.StationRepo
	inverterRepo  repo.InverterRepo
	telemetryRepo repo.TelemetryRepo
	tokens        *TokenManager
	rdb           *redis.Client
	publisher     *infra.SnapshotPublisher
	logger        zerolog.Logger
}

func NewSynchronizer(
	credRepo repo.CredentialRepo,
	stationRepo repo.StationRepo,
	inverterRepo repo.InverterRepo,
	telemetryRepo repo.TelemetryRepo,
	rdb *redis.Client,
	publisher *infra.SnapshotPublisher,
) *Synchronizer {
	return &Synchronizer{
		credRepo:      credRepo,
		stationRepo:   stationRepo,
		inverterRepo:  inverterRepo,
		telemetryRepo: telemetryRepo,
		tokens:        NewTokenManager(credRepo),
		rdb:           rdb,
		publisher:     publisher,
		logger:        zerolog.New(logger.NewWriter("synchronizer.log")).With().Timestamp().Caller().Logger(),
	}
}

// Run syncs every active credential concurrently and returns the first
// panic-level failure. Ordinary credential errors are persisted on the
// credential row instead of propagating.
func (s *Synchronizer) Run() error {
	now := time.Now()

	credentials, err := s.credRepo.FindAllActive()
	if err != nil {
		s.logger.Error().Err(err).Msg("Synchronizer::Run() - failed to list active credentials")
		return err
	}

	s.logger.Info().Int("count", len(credentials)).Msg("Synchronizer::Run() - starting sync cycle")

	wg := conc.NewWaitGroup()
	for i := range credentials {
		credential := credentials[i]
		wg.Go(func() {
			if err := s.SyncCredential(&credential, now); err != nil {
				s.logger.Error().Err(err).Int64("credential_id", credential.ID).Msg("Synchronizer::Run() - credential sync failed")
			}
		})
	}

	if r := wg.WaitAndRecover(); r != nil {
		s.logger.Error().Err(r.AsError()).Msg("Synchronizer::Run() - recovered from panic")
		return r.AsError()
	}

	return nil
}

// SyncCredential runs one credential end to end. It is safe to call
// concurrently for different credentials; concurrent calls for the same
// credential lose the lease and return without work.
func (s *Synchronizer) SyncCredential(credential *model.Credential, now time.Time) error {
	claimed, err := s.claimLease(credential.ID, now)
	if err != nil {
		return err
	}
	if !claimed {
		s.logger.Warn().Int64("credential_id", credential.ID).Msg("Synchronizer::SyncCredential() - lease held elsewhere, skipping")
		return nil
	}
	defer s.releaseLease(credential.ID)

	adapter, err := api.NewAdapter(credential)
	if err != nil {
		_ = s.credRepo.FailSync(credential.ID, err.Error(), time.Now())
		return err
	}

	if err := s.tokens.EnsureToken(credential, adapter, now); err != nil {
		_ = s.credRepo.FailSync(credential.ID, err.Error(), time.Now())
		return err
	}

	stations, err := adapter.ListStations()
	if err != nil {
		_ = s.credRepo.FailSync(credential.ID, err.Error(), time.Now())
		return err
	}

	s.logger.Info().Int64("credential_id", credential.ID).Int("stations", len(stations)).Msg("Synchronizer::SyncCredential() - got station list")

	for _, payload := range stations {
		if err := s.syncStation(credential, adapter, payload, now); err != nil {
			s.logger.Error().Err(err).
				Int64("credential_id", credential.ID).
				Str("station", payload.ExternalID).
				Msg("Synchronizer::SyncCredential() - station sync failed")
		}
	}

	return s.credRepo.CompleteSync(credential.ID, time.Now())
}

func (s *Synchronizer) syncStation(credential *model.Credential, adapter api.BrandAdapter, payload api.StationPayload, now time.Time) error {
	station := &model.Station{
		CredentialID:    credential.ID,
		ExternalID:      payload.ExternalID,
		Name:            payload.Name,
		Address:         payload.Address,
		Latitude:        payload.Latitude,
		Longitude:       payload.Longitude,
		RatedCapacityKw: payload.RatedCapacityKw,
		Metadata:        payload.Metadata,
	}
	if err := s.stationRepo.Upsert(station); err != nil {
		return err
	}

	devicePayloads, err := adapter.ListInverters(payload.ExternalID)
	if err != nil {
		return err
	}

	inverters := make([]*model.Inverter, len(devicePayloads))
	for i, device := range devicePayloads {
		inverter := &model.Inverter{
			StationID:    station.ID,
			ExternalID:   device.ExternalID,
			SerialNumber: device.SerialNumber,
			Model:        device.Model,
			Firmware:     device.Firmware,
			RatedPowerW:  device.RatedPowerW,
			Metadata:     device.Metadata,
		}
		if err := s.inverterRepo.Upsert(inverter); err != nil {
			s.logger.Error().Err(err).Str("inverter", device.ExternalID).Msg("Synchronizer::syncStation() - inverter upsert failed")
			continue
		}
		inverters[i] = inverter
	}

	// Each worker writes only its own index, so no locking is needed.
	statuses := make([]string, len(inverters))
	dataTimes := make([]*time.Time, len(inverters))

	wp := workerpool.New(setting.SyncInverterWorkers)
	for i := range inverters {
		i := i
		inverter := inverters[i]
		if inverter == nil {
			continue
		}

		wp.Submit(func() {
			status, lastData, err := s.ingestInverter(credential, adapter, station, inverter, now)
			if err != nil {
				s.logger.Error().Err(err).
					Str("inverter", inverter.ExternalID).
					Msg("Synchronizer::syncStation() - inverter ingestion failed")
				statuses[i] = inverter.Status
				dataTimes[i] = inverter.LastDataTime
				return
			}

			statuses[i] = status
			dataTimes[i] = lastData
		})
	}
	wp.StopWait()

	observed := make([]string, 0, len(statuses))
	var latest *time.Time
	for i, status := range statuses {
		if status != "" {
			observed = append(observed, status)
		}
		if dataTimes[i] != nil && (latest == nil || dataTimes[i].After(*latest)) {
			latest = dataTimes[i]
		}
	}

	return s.stationRepo.UpdateStatus(station.ID, model.DeriveStationStatus(observed), latest)
}

func (s *Synchronizer) ingestInverter(credential *model.Credential, adapter api.BrandAdapter, station *model.Station, inverter *model.Inverter, now time.Time) (string, *time.Time, error) {
	reading, err := adapter.GetRealtime(inverter.ExternalID)
	if err != nil {
		return "", nil, err
	}
	if reading == nil {
		// Vendor has no current sample. Keep the stored snapshot as is.
		return inverter.Status, inverter.LastDataTime, nil
	}

	decoded := model.DecodeReading(reading.Fields)

	status := model.StatusUnknown
	if decoded.Status != nil {
		status = model.CanonicalStatus(*decoded.Status)
	}

	collectedAt := now
	if reading.CollectedAt != nil {
		collectedAt = *reading.CollectedAt
	}

	applySnapshot(inverter, decoded)
	inverter.Status = status
	inverter.LastDataTime = &collectedAt

	if err := s.inverterRepo.Save(inverter); err != nil {
		return "", nil, err
	}

	point := buildDataPoint(inverter.ID, collectedAt, decoded, reading.Fields)
	if err := s.telemetryRepo.UpsertDataPoint(point); err != nil {
		return "", nil, err
	}

	if s.publisher != nil {
		s.publisher.Publish(station.ExternalID, inverter)
	}

	s.backfillHistory(credential, adapter, inverter, now)

	return status, &collectedAt, nil
}

// backfillHistory fills the telemetry gap left by missed sync cycles, bounded
// by HistoryBackfillMax. Failures only log; backfill is best effort.
func (s *Synchronizer) backfillHistory(credential *model.Credential, adapter api.BrandAdapter, inverter *model.Inverter, now time.Time) {
	if credential.LastSyncAt == nil {
		return
	}

	gap := now.Sub(*credential.LastSyncAt)
	if gap <= backfillTriggerGap {
		return
	}

	start := *credential.LastSyncAt
	if gap > setting.HistoryBackfillMax {
		start = now.Add(-setting.HistoryBackfillMax)
	}

	s.logger.Info().
		Str("inverter", inverter.ExternalID).
		Time("start", start).
		Msg("Synchronizer::backfillHistory() - backfilling missed telemetry")

	points, err := adapter.GetHistory(inverter.ExternalID, start, now)
	if err != nil {
		s.logger.Warn().Err(err).Str("inverter", inverter.ExternalID).Msg("Synchronizer::backfillHistory() - history fetch failed")
		return
	}

	for _, hp := range points {
		decoded := model.DecodeReading(hp.Fields)
		point := buildDataPoint(inverter.ID, hp.Timestamp, decoded, hp.Fields)
		if err := s.telemetryRepo.UpsertDataPoint(point); err != nil {
			s.logger.Warn().Err(err).Str("inverter", inverter.ExternalID).Msg("Synchronizer::backfillHistory() - datapoint upsert failed")
		}
	}
}

func (s *Synchronizer) claimLease(credentialID int64, now time.Time) (bool, error) {
	if s.rdb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), leaseOpTimeout)
		defer cancel()

		ok, err := s.rdb.SetNX(ctx, fmt.Sprintf(syncLeaseKeyFormat, credentialID), now.Unix(), setting.SyncLeaseTTL).Result()
		if err != nil {
			s.logger.Warn().Err(err).Msg("Synchronizer::claimLease() - redis unavailable, using row guard only")
		} else if !ok {
			return false, nil
		}
	}

	return s.credRepo.ClaimSync(credentialID, now)
}

func (s *Synchronizer) releaseLease(credentialID int64) {
	if s.rdb == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), leaseOpTimeout)
	defer cancel()

	_ = s.rdb.Del(ctx, fmt.Sprintf(syncLeaseKeyFormat, credentialID)).Err()
}

func applySnapshot(inverter *model.Inverter, reading *model.Reading) {
	inverter.CurrentPowerW = reading.PowerW
	inverter.TodayEnergyKwh = reading.TodayEnergyKwh
	inverter.TotalEnergyKwh = reading.TotalEnergyKwh
	inverter.GridVoltage = reading.GridVoltage
	inverter.GridCurrent = reading.GridCurrent
	inverter.GridFrequency = reading.GridFrequency
	inverter.PV1Voltage = reading.PV1Voltage
	inverter.PV1Current = reading.PV1Current
	inverter.PV1PowerW = reading.PV1PowerW
	inverter.PV2Voltage = reading.PV2Voltage
	inverter.PV2Current = reading.PV2Current
	inverter.PV2PowerW = reading.PV2PowerW
	inverter.BatteryVoltage = reading.BatteryVoltage
	inverter.BatteryCurrent = reading.BatteryCurrent
	inverter.BatteryPowerW = reading.BatteryPowerW
	inverter.BatterySocPercent = reading.BatterySocPercent
	inverter.BatteryTemperature = reading.BatteryTemperature
	inverter.LoadPowerW = reading.LoadPowerW
	inverter.InverterTemperature = reading.InverterTemperature
	inverter.GridImportPowerW = reading.GridImportPowerW
	inverter.GridExportPowerW = reading.GridExportPowerW
}

func buildDataPoint(inverterID int64, at time.Time, reading *model.Reading, raw model.FieldMap) *model.DataPoint {
	return &model.DataPoint{
		InverterID:        inverterID,
		Timestamp:         at.UTC().Truncate(time.Minute),
		PowerW:            reading.PowerW,
		TodayEnergyKwh:    reading.TodayEnergyKwh,
		TotalEnergyKwh:    reading.TotalEnergyKwh,
		GridVoltage:       reading.GridVoltage,
		BatteryPowerW:     reading.BatteryPowerW,
		BatterySocPercent: reading.BatterySocPercent,
		LoadPowerW:        reading.LoadPowerW,
		GridImportPowerW:  reading.GridImportPowerW,
		GridExportPowerW:  reading.GridExportPowerW,
		Raw:               model.JSONMap(raw),
	}
}

package aggregate

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/skyvolt/fleetmon/config"
	"github.com/skyvolt/fleetmon/model"
	"github.com/skyvolt/fleetmon/pkg/logger"
	"github.com/skyvolt/fleetmon/repo"
	"github.com/skyvolt/fleetmon/setting"
	"go.openly.dev/pointy"
)

// maxSampleGap caps the interval credited to one sample when integrating
// power into energy, so a telemetry outage does not inflate the result.
const maxSampleGap = 15 * time.Minute

// Aggregator rolls minute telemetry up into per-inverter daily stats.
// Re-running a day recomputes and overwrites the existing rows.
type Aggregator struct {
	telemetryRepo repo.TelemetryRepo
	thresholdW    float64
	logger        zerolog.Logger
}

func NewAggregator(telemetryRepo repo.TelemetryRepo) *Aggregator {
	thresholdW := config.GetConfig().Alert.ActivePowerThresholdW
	if thresholdW <= 0 {
		thresholdW = setting.ActivePowerThresholdW
	}

	return &Aggregator{
		telemetryRepo: telemetryRepo,
		thresholdW:    thresholdW,
		logger:        zerolog.New(logger.NewWriter("aggregator.log")).With().Timestamp().Caller().Logger(),
	}
}

// Run aggregates the previous day.
func (a *Aggregator) Run() error {
	return a.AggregateDay(time.Now().UTC().AddDate(0, 0, -1))
}

// AggregateDay computes a DailyStat for every inverter that produced data on
// the given day. One failing inverter does not stop the rest.
func (a *Aggregator) AggregateDay(day time.Time) error {
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	ids, err := a.telemetryRepo.InverterIDsWithDataOn(day)
	if err != nil {
		a.logger.Error().Err(err).Time("day", day).Msg("Aggregator::AggregateDay() - failed to list inverters")
		return err
	}

	a.logger.Info().Time("day", day).Int("inverters", len(ids)).Msg("Aggregator::AggregateDay() - starting rollup")

	for _, id := range ids {
		if err := a.aggregateInverter(id, day); err != nil {
			a.logger.Error().Err(err).Int64("inverter_id", id).Msg("Aggregator::AggregateDay() - inverter rollup failed")
		}
	}

	return nil
}

func (a *Aggregator) aggregateInverter(inverterID int64, day time.Time) error {
	points, err := a.telemetryRepo.FindDay(inverterID, day)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return nil
	}

	stat := a.compute(inverterID, day, points)
	return a.telemetryRepo.UpsertDailyStat(stat)
}

func (a *Aggregator) compute(inverterID int64, day time.Time, points []model.DataPoint) *model.DailyStat {
	stat := &model.DailyStat{
		InverterID:  inverterID,
		Date:        day,
		SampleCount: len(points),
	}

	var activeSamples int
	for i, point := range points {
		power := pointy.Float64Value(point.PowerW, 0)
		if power > stat.PeakPowerW {
			stat.PeakPowerW = power
		}
		if power > a.thresholdW {
			activeSamples++
		}

		if daily := pointy.Float64Value(point.TodayEnergyKwh, 0); daily > stat.GenerationKwh {
			stat.GenerationKwh = daily
		}

		// The last sample of the day has no successor to span to, so it
		// contributes no integrated energy.
		if i+1 >= len(points) {
			break
		}

		gap := points[i+1].Timestamp.Sub(point.Timestamp)
		if gap > maxSampleGap {
			gap = maxSampleGap
		}
		hours := gap.Hours()

		stat.ConsumptionKwh += pointy.Float64Value(point.LoadPowerW, 0) * hours / 1000
		stat.GridImportKwh += pointy.Float64Value(point.GridImportPowerW, 0) * hours / 1000
		stat.GridExportKwh += pointy.Float64Value(point.GridExportPowerW, 0) * hours / 1000

		// Positive battery power is discharge, negative is charge.
		if battery := pointy.Float64Value(point.BatteryPowerW, 0); battery > 0 {
			stat.BatteryDischargeKwh += battery * hours / 1000
		} else {
			stat.BatteryChargeKwh += -battery * hours / 1000
		}
	}

	stat.GenerationHours = float64(activeSamples) / float64(len(points)) * 24

	if stat.GenerationKwh > 0 {
		stat.SelfConsumptionPct = clampPct((stat.GenerationKwh - stat.GridExportKwh) / stat.GenerationKwh * 100)
	}
	if stat.ConsumptionKwh > 0 {
		stat.SelfSufficiencyPct = clampPct((stat.ConsumptionKwh - stat.GridImportKwh) / stat.ConsumptionKwh * 100)
	}

	stat.SavingsEstimate = stat.GenerationKwh * setting.TariffPerKwh
	stat.CO2AvoidedKg = stat.GenerationKwh * setting.GridEmissionKgPerKwh

	return stat
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

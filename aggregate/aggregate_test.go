package aggregate

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/skyvolt/fleetmon/infra"
	"github.com/skyvolt/fleetmon/model"
	"github.com/skyvolt/fleetmon/repo"
	"github.com/skyvolt/fleetmon/setting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.openly.dev/pointy"
)

func newTestAggregator(t *testing.T) (*Aggregator, repo.TelemetryRepo) {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := infra.NewGormDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)

	telemetryRepo := repo.NewTelemetryRepo(db)
	return NewAggregator(telemetryRepo), telemetryRepo
}

func point(inverterID int64, at time.Time, powerW float64) *model.DataPoint {
	return &model.DataPoint{
		InverterID: inverterID,
		Timestamp:  at,
		PowerW:     pointy.Float64(powerW),
	}
}

func TestComputeGenerationAndPeak(t *testing.T) {
	aggregator, _ := newTestAggregator(t)
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	points := []model.DataPoint{
		{InverterID: 1, Timestamp: day.Add(10 * time.Hour), PowerW: pointy.Float64(50), TodayEnergyKwh: pointy.Float64(1.0)},
		{InverterID: 1, Timestamp: day.Add(10*time.Hour + 5*time.Minute), PowerW: pointy.Float64(1500), TodayEnergyKwh: pointy.Float64(2.0)},
		{InverterID: 1, Timestamp: day.Add(10*time.Hour + 10*time.Minute), PowerW: pointy.Float64(800), TodayEnergyKwh: pointy.Float64(2.5)},
	}

	stat := aggregator.compute(1, day, points)

	assert.Equal(t, 2.5, stat.GenerationKwh)
	assert.Equal(t, 1500.0, stat.PeakPowerW)
	assert.Equal(t, 3, stat.SampleCount)
	// Two of three samples sit above the active threshold.
	assert.InDelta(t, 16.0, stat.GenerationHours, 0.001)
	assert.InDelta(t, 2.5*setting.TariffPerKwh, stat.SavingsEstimate, 0.0001)
	assert.InDelta(t, 2.5*setting.GridEmissionKgPerKwh, stat.CO2AvoidedKg, 0.0001)
}

func TestComputeIntegratesFlows(t *testing.T) {
	aggregator, _ := newTestAggregator(t)
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	points := []model.DataPoint{
		{
			InverterID:       1,
			Timestamp:        day.Add(12 * time.Hour),
			LoadPowerW:       pointy.Float64(1000),
			GridImportPowerW: pointy.Float64(200),
			GridExportPowerW: pointy.Float64(300),
			BatteryPowerW:    pointy.Float64(600),
		},
		{
			InverterID:       1,
			Timestamp:        day.Add(12*time.Hour + 5*time.Minute),
			LoadPowerW:       pointy.Float64(1000),
			GridImportPowerW: pointy.Float64(200),
			GridExportPowerW: pointy.Float64(300),
			BatteryPowerW:    pointy.Float64(-400),
		},
		// The last sample has no successor and contributes nothing.
		{
			InverterID: 1,
			Timestamp:  day.Add(12*time.Hour + 10*time.Minute),
			LoadPowerW: pointy.Float64(9000),
		},
	}

	stat := aggregator.compute(1, day, points)

	fiveMinutes := 5.0 / 60.0
	assert.InDelta(t, 2*1000*fiveMinutes/1000, stat.ConsumptionKwh, 0.0001)
	assert.InDelta(t, 2*200*fiveMinutes/1000, stat.GridImportKwh, 0.0001)
	assert.InDelta(t, 2*300*fiveMinutes/1000, stat.GridExportKwh, 0.0001)
	assert.InDelta(t, 600*fiveMinutes/1000, stat.BatteryDischargeKwh, 0.0001)
	assert.InDelta(t, 400*fiveMinutes/1000, stat.BatteryChargeKwh, 0.0001)
}

func TestComputeCapsOutageGap(t *testing.T) {
	aggregator, _ := newTestAggregator(t)
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	points := []model.DataPoint{
		{InverterID: 1, Timestamp: day.Add(8 * time.Hour), LoadPowerW: pointy.Float64(1200)},
		{InverterID: 1, Timestamp: day.Add(10 * time.Hour), LoadPowerW: pointy.Float64(1200)},
	}

	stat := aggregator.compute(1, day, points)

	// The two hour outage is credited as at most maxSampleGap.
	assert.InDelta(t, 1200*0.25/1000, stat.ConsumptionKwh, 0.0001)
}

func TestComputeClampsPercentages(t *testing.T) {
	aggregator, _ := newTestAggregator(t)
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	points := []model.DataPoint{
		{
			InverterID:       1,
			Timestamp:        day.Add(12 * time.Hour),
			TodayEnergyKwh:   pointy.Float64(0.1),
			GridExportPowerW: pointy.Float64(50000),
			LoadPowerW:       pointy.Float64(100),
		},
		{
			InverterID:     1,
			Timestamp:      day.Add(12*time.Hour + 10*time.Minute),
			TodayEnergyKwh: pointy.Float64(0.1),
		},
	}

	stat := aggregator.compute(1, day, points)

	assert.Equal(t, 0.0, stat.SelfConsumptionPct)
	assert.Equal(t, 100.0, stat.SelfSufficiencyPct)
}

func TestAggregateDayRecomputes(t *testing.T) {
	aggregator, telemetryRepo := newTestAggregator(t)
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	first := point(1, day.Add(11*time.Hour), 900)
	first.TodayEnergyKwh = pointy.Float64(4.0)
	require.NoError(t, telemetryRepo.UpsertDataPoint(first))
	require.NoError(t, aggregator.AggregateDay(day))

	stats, err := telemetryRepo.FindDailyStats(1, day, day)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 4.0, stats[0].GenerationKwh)

	second := point(1, day.Add(13*time.Hour), 1100)
	second.TodayEnergyKwh = pointy.Float64(6.5)
	require.NoError(t, telemetryRepo.UpsertDataPoint(second))
	require.NoError(t, aggregator.AggregateDay(day))

	stats, err = telemetryRepo.FindDailyStats(1, day, day)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 6.5, stats[0].GenerationKwh)
	assert.Equal(t, 1100.0, stats[0].PeakPowerW)
	assert.Equal(t, 2, stats[0].SampleCount)
}

package repo

import (
	"time"

	"github.com/skyvolt/fleetmon/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TelemetryRepo interface {
	// UpsertDataPoint writes one minute bucket. A second write for the
	// same (inverter, minute) overwrites the first; duplicate-key
	// conflicts are the expected idempotent-replay path.
	UpsertDataPoint(point *model.DataPoint) error
	FindRange(inverterID int64, from, to time.Time) ([]model.DataPoint, error)
	FindDay(inverterID int64, day time.Time) ([]model.DataPoint, error)
	InverterIDsWithDataOn(day time.Time) ([]int64, error)

	UpsertDailyStat(stat *model.DailyStat) error
	FindDailyStats(inverterID int64, from, to time.Time) ([]model.DailyStat, error)
}

type telemetryRepo struct {
	db *gorm.DB
}

func NewTelemetryRepo(db *gorm.DB) TelemetryRepo {
	return &telemetryRepo{db: db}
}

func (r *telemetryRepo) UpsertDataPoint(point *model.DataPoint) error {
	tx := r.db.Session(&gorm.Session{})
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "inverter_id"}, {Name: "timestamp"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"power_w",
			"today_energy_kwh",
			"total_energy_kwh",
			"grid_voltage",
			"battery_power_w",
			"battery_soc_percent",
			"load_power_w",
			"grid_import_power_w",
			"grid_export_power_w",
			"raw",
		}),
	}).Create(point).Error
}

func (r *telemetryRepo) FindRange(inverterID int64, from, to time.Time) ([]model.DataPoint, error) {
	var points []model.DataPoint
	tx := r.db.Session(&gorm.Session{})
	err := tx.Where("inverter_id = ? AND timestamp >= ? AND timestamp < ?", inverterID, from, to).
		Order("timestamp asc").
		Find(&points).Error
	if err != nil {
		return nil, err
	}

	return points, nil
}

func (r *telemetryRepo) FindDay(inverterID int64, day time.Time) ([]model.DataPoint, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return r.FindRange(inverterID, start, start.Add(24*time.Hour))
}

func (r *telemetryRepo) InverterIDsWithDataOn(day time.Time) ([]int64, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	var ids []int64
	tx := r.db.Session(&gorm.Session{})
	err := tx.Model(&model.DataPoint{}).
		Where("timestamp >= ? AND timestamp < ?", start, end).
		Distinct("inverter_id").
		Pluck("inverter_id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *telemetryRepo) UpsertDailyStat(stat *model.DailyStat) error {
	tx := r.db.Session(&gorm.Session{})
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "inverter_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"generation_kwh",
			"consumption_kwh",
			"grid_import_kwh",
			"grid_export_kwh",
			"battery_charge_kwh",
			"battery_discharge_kwh",
			"peak_power_w",
			"generation_hours",
			"self_consumption_pct",
			"self_sufficiency_pct",
			"savings_estimate",
			"co2_avoided_kg",
			"sample_count",
			"updated_at",
		}),
	}).Create(stat).Error
}

func (r *telemetryRepo) FindDailyStats(inverterID int64, from, to time.Time) ([]model.DailyStat, error) {
	var stats []model.DailyStat
	tx := r.db.Session(&gorm.Session{})
	err := tx.Where("inverter_id = ? AND date >= ? AND date <= ?", inverterID, from, to).
		Order("date asc").
		Find(&stats).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}

package model

import "time"

// DailyStat is the per-inverter, per-day rollup of DataPoints. Recomputation
// for the same (inverter, date) overwrites the row.
type DailyStat struct {
	ID                  int64     `gorm:"column:id;primaryKey" json:"id"`
	InverterID          int64     `gorm:"column:inverter_id;uniqueIndex:idx_daily_stat_date" json:"inverter_id"`
	Date                time.Time `gorm:"column:date;uniqueIndex:idx_daily_stat_date" json:"date"`
	GenerationKwh       float64   `gorm:"column:generation_kwh" json:"generation_kwh"`
	ConsumptionKwh      float64   `gorm:"column:consumption_kwh" json:"consumption_kwh"`
	GridImportKwh       float64   `gorm:"column:grid_import_kwh" json:"grid_import_kwh"`
	GridExportKwh       float64   `gorm:"column:grid_export_kwh" json:"grid_export_kwh"`
	BatteryChargeKwh    float64   `gorm:"column:battery_charge_kwh" json:"battery_charge_kwh"`
	BatteryDischargeKwh float64   `gorm:"column:battery_discharge_kwh" json:"battery_discharge_kwh"`
	PeakPowerW          float64   `gorm:"column:peak_power_w" json:"peak_power_w"`
	GenerationHours     float64   `gorm:"column:generation_hours" json:"generation_hours"`
	SelfConsumptionPct  float64   `gorm:"column:self_consumption_pct" json:"self_consumption_pct"`
	SelfSufficiencyPct  float64   `gorm:"column:self_sufficiency_pct" json:"self_sufficiency_pct"`
	SavingsEstimate     float64   `gorm:"column:savings_estimate" json:"savings_estimate"`
	CO2AvoidedKg        float64   `gorm:"column:co2_avoided_kg" json:"co2_avoided_kg"`
	SampleCount         int       `gorm:"column:sample_count" json:"sample_count"`

	CreatedAt *time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (*DailyStat) TableName() string {
	return "tbl_daily_stats"
}

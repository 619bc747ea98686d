package model

import "time"

// DataPoint is one minute-resolution telemetry sample. The
// (inverter_id, timestamp) pair is the idempotency key: repeated ingestion
// within the same minute overwrites instead of duplicating.
type DataPoint struct {
	ID                int64     `gorm:"column:id;primaryKey" json:"id"`
	InverterID        int64     `gorm:"column:inverter_id;uniqueIndex:idx_datapoint_minute" json:"inverter_id"`
	Timestamp         time.Time `gorm:"column:timestamp;uniqueIndex:idx_datapoint_minute" json:"timestamp"`
	PowerW            *float64  `gorm:"column:power_w" json:"power_w"`
	TodayEnergyKwh    *float64  `gorm:"column:today_energy_kwh" json:"today_energy_kwh"`
	TotalEnergyKwh    *float64  `gorm:"column:total_energy_kwh" json:"total_energy_kwh"`
	GridVoltage       *float64  `gorm:"column:grid_voltage" json:"grid_voltage"`
	BatteryPowerW     *float64  `gorm:"column:battery_power_w" json:"battery_power_w"`
	BatterySocPercent *float64  `gorm:"column:battery_soc_percent" json:"battery_soc_percent"`
	LoadPowerW        *float64  `gorm:"column:load_power_w" json:"load_power_w"`
	GridImportPowerW  *float64  `gorm:"column:grid_import_power_w" json:"grid_import_power_w"`
	GridExportPowerW  *float64  `gorm:"column:grid_export_power_w" json:"grid_export_power_w"`

	// Raw keeps the full normalized vendor payload for audit and replay.
	Raw JSONMap `gorm:"column:raw;type:text" json:"raw"`

	CreatedAt *time.Time `gorm:"column:created_at" json:"created_at"`
}

func (*DataPoint) TableName() string {
	return "tbl_data_points"
}

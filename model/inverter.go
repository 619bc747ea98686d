package model

import (
	"strings"
	"time"
)

// Inverter is the unit of telemetry. The electrical fields form a live
// snapshot overwritten on every successful ingestion cycle; they are not
// historical.
type Inverter struct {
	ID           int64      `gorm:"column:id;primaryKey" json:"id"`
	StationID    int64      `gorm:"column:station_id;uniqueIndex:idx_inverter_external" json:"station_id"`
	ExternalID   string     `gorm:"column:external_id;uniqueIndex:idx_inverter_external" json:"external_id"`
	SerialNumber string     `gorm:"column:serial_number" json:"serial_number"`
	Model        string     `gorm:"column:model" json:"model"`
	Firmware     string     `gorm:"column:firmware" json:"firmware"`
	RatedPowerW  *float64   `gorm:"column:rated_power_w" json:"rated_power_w"`
	Status       string     `gorm:"column:status" json:"status"`
	LastDataTime *time.Time `gorm:"column:last_data_time" json:"last_data_time"`
	Metadata     JSONMap    `gorm:"column:metadata;type:text" json:"metadata"`

	// Snapshot fields, overwritten on each ingestion.
	CurrentPowerW       *float64 `gorm:"column:current_power_w" json:"current_power_w"`
	TodayEnergyKwh      *float64 `gorm:"column:today_energy_kwh" json:"today_energy_kwh"`
	TotalEnergyKwh      *float64 `gorm:"column:total_energy_kwh" json:"total_energy_kwh"`
	GridVoltage         *float64 `gorm:"column:grid_voltage" json:"grid_voltage"`
	GridCurrent         *float64 `gorm:"column:grid_current" json:"grid_current"`
	GridFrequency       *float64 `gorm:"column:grid_frequency" json:"grid_frequency"`
	PV1Voltage          *float64 `gorm:"column:pv1_voltage" json:"pv1_voltage"`
	PV1Current          *float64 `gorm:"column:pv1_current" json:"pv1_current"`
	PV1PowerW           *float64 `gorm:"column:pv1_power_w" json:"pv1_power_w"`
	PV2Voltage          *float64 `gorm:"column:pv2_voltage" json:"pv2_voltage"`
	PV2Current          *float64 `gorm:"column:pv2_current" json:"pv2_current"`
	PV2PowerW           *float64 `gorm:"column:pv2_power_w" json:"pv2_power_w"`
	BatteryVoltage      *float64 `gorm:"column:battery_voltage" json:"battery_voltage"`
	BatteryCurrent      *float64 `gorm:"column:battery_current" json:"battery_current"`
	BatteryPowerW       *float64 `gorm:"column:battery_power_w" json:"battery_power_w"`
	BatterySocPercent   *float64 `gorm:"column:battery_soc_percent" json:"battery_soc_percent"`
	BatteryTemperature  *float64 `gorm:"column:battery_temperature" json:"battery_temperature"`
	LoadPowerW          *float64 `gorm:"column:load_power_w" json:"load_power_w"`
	InverterTemperature *float64 `gorm:"column:inverter_temperature" json:"inverter_temperature"`
	GridImportPowerW    *float64 `gorm:"column:grid_import_power_w" json:"grid_import_power_w"`
	GridExportPowerW    *float64 `gorm:"column:grid_export_power_w" json:"grid_export_power_w"`

	CreatedAt *time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (*Inverter) TableName() string {
	return "tbl_inverters"
}

// CanonicalStatus maps brand-specific status strings onto the fixed status
// vocabulary. Unrecognized values degrade to unknown, never to an error.
func CanonicalStatus(vendorStatus string) string {
	switch strings.ToLower(strings.TrimSpace(vendorStatus)) {
	case "normal", "running", "online", "on-grid", "ongrid", "generating", "1", "on":
		return StatusOnline
	case "offline", "disconnect", "disconnected", "off", "0", "-1":
		return StatusOffline
	case "standby", "stand by", "waiting", "idle":
		return StatusStandby
	case "warning", "alarm", "low_performance", "2":
		return StatusWarning
	case "fault", "error", "failure", "faulted", "3":
		return StatusFault
	default:
		return StatusUnknown
	}
}

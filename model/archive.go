package model

import "time"

const TelemetryIndex = "fleetmon-telemetry"

// TelemetryDocument is the denormalized form of a DataPoint shipped to
// Elasticsearch by the archive job.
type TelemetryDocument struct {
	Timestamp         time.Time `json:"@timestamp"`
	BrandCode         string    `json:"brand_code"`
	StationExternalID string    `json:"station_external_id"`
	StationName       string    `json:"station_name"`
	InverterSerial    string    `json:"inverter_serial"`
	InverterStatus    string    `json:"inverter_status"`
	PowerW            *float64  `json:"power_w"`
	TodayEnergyKwh    *float64  `json:"today_energy_kwh"`
	TotalEnergyKwh    *float64  `json:"total_energy_kwh"`
	BatterySocPercent *float64  `json:"battery_soc_percent"`
	LoadPowerW        *float64  `json:"load_power_w"`
	GridImportPowerW  *float64  `json:"grid_import_power_w"`
	GridExportPowerW  *float64  `json:"grid_export_power_w"`
}

package model

import (
	"github.com/mitchellh/mapstructure"
)

// FieldMap is the flat canonical payload every adapter normalizes into.
// Keys are canonical field names; callers never see vendor field names.
type FieldMap map[string]any

// Reading is the typed view of a canonical realtime payload. Every field is
// optional; a key missing from the FieldMap stays nil.
type Reading struct {
	Status              *string  `mapstructure:"status"`
	PowerW              *float64 `mapstructure:"power_w"`
	TodayEnergyKwh      *float64 `mapstructure:"today_energy_kwh"`
	TotalEnergyKwh      *float64 `mapstructure:"total_energy_kwh"`
	GridVoltage         *float64 `mapstructure:"grid_voltage"`
	GridCurrent         *float64 `mapstructure:"grid_current"`
	GridFrequency       *float64 `mapstructure:"grid_frequency"`
	PV1Voltage          *float64 `mapstructure:"pv1_voltage"`
	PV1Current          *float64 `mapstructure:"pv1_current"`
	PV1PowerW           *float64 `mapstructure:"pv1_power"`
	PV2Voltage          *float64 `mapstructure:"pv2_voltage"`
	PV2Current          *float64 `mapstructure:"pv2_current"`
	PV2PowerW           *float64 `mapstructure:"pv2_power"`
	BatteryVoltage      *float64 `mapstructure:"battery_voltage"`
	BatteryCurrent      *float64 `mapstructure:"battery_current"`
	BatteryPowerW       *float64 `mapstructure:"battery_power"`
	BatterySocPercent   *float64 `mapstructure:"battery_soc"`
	BatteryTemperature  *float64 `mapstructure:"battery_temperature"`
	LoadPowerW          *float64 `mapstructure:"load_power"`
	InverterTemperature *float64 `mapstructure:"inverter_temperature"`
	GridImportPowerW    *float64 `mapstructure:"grid_import_power"`
	GridExportPowerW    *float64 `mapstructure:"grid_export_power"`
}

// DecodeReading converts a canonical FieldMap into a typed Reading. Fields
// are decoded one key at a time so a single unparseable value degrades to
// nil instead of failing the whole payload.
func DecodeReading(fields FieldMap) *Reading {
	reading := &Reading{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           reading,
	})
	if err != nil {
		return reading
	}

	for key, value := range fields {
		if value == nil {
			continue
		}

		_ = decoder.Decode(FieldMap{key: value})
	}

	return reading
}

package model

import "time"

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
	StatusStandby = "standby"
	StatusWarning = "warning"
	StatusFault   = "fault"
	StatusUnknown = "unknown"
)

// Station is one physical installation site under a credential. Upserted by
// the synchronizer; status is derived from its inverters on every cycle.
type Station struct {
	ID              int64      `gorm:"column:id;primaryKey" json:"id"`
	CredentialID    int64      `gorm:"column:credential_id;uniqueIndex:idx_station_external" json:"credential_id"`
	ExternalID      string     `gorm:"column:external_id;uniqueIndex:idx_station_external" json:"external_id"`
	Name            string     `gorm:"column:name" json:"name"`
	Address         string     `gorm:"column:address" json:"address"`
	Latitude        *float64   `gorm:"column:latitude" json:"latitude"`
	Longitude       *float64   `gorm:"column:longitude" json:"longitude"`
	RatedCapacityKw *float64   `gorm:"column:rated_capacity_kw" json:"rated_capacity_kw"`
	Status          string     `gorm:"column:status" json:"status"`
	LastDataTime    *time.Time `gorm:"column:last_data_time" json:"last_data_time"`
	Metadata        JSONMap    `gorm:"column:metadata;type:text" json:"metadata"`
	CreatedAt       *time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       *time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (*Station) TableName() string {
	return "tbl_stations"
}

// DeriveStationStatus folds inverter statuses into one station status.
// Fault dominates, then warning, then offline; a station is online only
// when at least one inverter is online and none are degraded.
func DeriveStationStatus(inverterStatuses []string) string {
	if len(inverterStatuses) == 0 {
		return StatusUnknown
	}

	derived := StatusUnknown
	for _, status := range inverterStatuses {
		switch status {
		case StatusFault:
			return StatusFault
		case StatusWarning:
			derived = StatusWarning
		case StatusOffline:
			if derived != StatusWarning {
				derived = StatusOffline
			}
		case StatusOnline, StatusStandby:
			if derived == StatusUnknown {
				derived = StatusOnline
			}
		}
	}

	return derived
}

package model

import "time"

const (
	AlertTypeOffline    = "offline"
	AlertTypeLowBattery = "low_battery"
	AlertTypeFault      = "fault"
)

const (
	AlertSeverityInfo    = "info"
	AlertSeverityWarning = "warning"
	AlertSeverityError   = "error"
)

// Alert is one operational condition raised by the alert engine. At most one
// active unresolved alert may exist per (entity, type); resolved alerts never
// block recreation.
type Alert struct {
	ID          int64  `gorm:"column:id;primaryKey" json:"id"`
	StationID   *int64 `gorm:"column:station_id;index" json:"station_id"`
	InverterID  *int64 `gorm:"column:inverter_id;index" json:"inverter_id"`
	Type        string `gorm:"column:type" json:"type"`
	Severity    string `gorm:"column:severity" json:"severity"`
	Title       string `gorm:"column:title" json:"title"`
	Description string `gorm:"column:description" json:"description"`
	IsActive    bool   `gorm:"column:is_active;index" json:"is_active"`

	Acknowledged   bool       `gorm:"column:acknowledged" json:"acknowledged"`
	AcknowledgedAt *time.Time `gorm:"column:acknowledged_at" json:"acknowledged_at"`
	AcknowledgedBy string     `gorm:"column:acknowledged_by" json:"acknowledged_by"`

	Resolved        bool       `gorm:"column:resolved" json:"resolved"`
	ResolvedAt      *time.Time `gorm:"column:resolved_at" json:"resolved_at"`
	ResolutionNotes string     `gorm:"column:resolution_notes" json:"resolution_notes"`

	NotificationSent   bool       `gorm:"column:notification_sent" json:"notification_sent"`
	NotificationSentAt *time.Time `gorm:"column:notification_sent_at" json:"notification_sent_at"`

	OccurredAt time.Time  `gorm:"column:occurred_at" json:"occurred_at"`
	CreatedAt  *time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  *time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (*Alert) TableName() string {
	return "tbl_alerts"
}

// SeverityFor returns the severity used when the engine raises an alert of
// the given type.
func SeverityFor(alertType string) string {
	switch alertType {
	case AlertTypeFault:
		return AlertSeverityError
	case AlertTypeOffline, AlertTypeLowBattery:
		return AlertSeverityWarning
	default:
		return AlertSeverityInfo
	}
}

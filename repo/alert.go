package repo

import (
	"errors"
	"time"

	"github.com/skyvolt/fleetmon/model"
	"gorm.io/gorm"
)

var ErrAlertNotFound = errors.New("alert not found")

// AlertFilter narrows FindAll. Zero values mean no constraint.
type AlertFilter struct {
	StationID  *int64
	InverterID *int64
	Type       string
	Severity   string
	ActiveOnly bool
}

type AlertRepo interface {
	// FindActiveForInverter returns the active unresolved alert of the
	// given type, or nil when none exists. The engine checks this before
	// creating so duplicates are never inserted.
	FindActiveForInverter(inverterID int64, alertType string) (*model.Alert, error)
	FindActiveForStation(stationID int64, alertType string) (*model.Alert, error)
	FindActive() ([]model.Alert, error)
	FindAll(filter *AlertFilter) ([]model.Alert, error)
	FindOne(id int64) (*model.Alert, error)
	Create(alert *model.Alert) error
	Acknowledge(id int64, by string, now time.Time) error
	Resolve(id int64, notes string, now time.Time) error
	FindUnsentActive() ([]model.Alert, error)
	MarkNotified(id int64, now time.Time) error
}

type alertRepo struct {
	db *gorm.DB
}

func NewAlertRepo(db *gorm.DB) AlertRepo {
	return &alertRepo{db: db}
}

func (r *alertRepo) FindActiveForInverter(inverterID int64, alertType string) (*model.Alert, error) {
	var alert model.Alert
	tx := r.db.Session(&gorm.Session{})
	err := tx.Where("inverter_id = ? AND type = ? AND is_active = ? AND resolved = ?",
		inverterID, alertType, true, false).
		First(&alert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &alert, nil
}

func (r *alertRepo) FindActiveForStation(stationID int64, alertType string) (*model.Alert, error) {
	var alert model.Alert
	tx := r.db.Session(&gorm.Session{})
	err := tx.Where("station_id = ? AND inverter_id IS NULL AND type = ? AND is_active = ? AND resolved = ?",
		stationID, alertType, true, false).
		First(&alert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &alert, nil
}

func (r *alertRepo) FindActive() ([]model.Alert, error) {
	var alerts []model.Alert
	tx := r.db.Session(&gorm.Session{})
	err := tx.Where("is_active = ? AND resolved = ?", true, false).
		Order("occurred_at desc").
		Find(&alerts).Error
	if err != nil {
		return nil, err
	}

	return alerts, nil
}

func (r *alertRepo) FindAll(filter *AlertFilter) ([]model.Alert, error) {
	tx := r.db.Session(&gorm.Session{}).Model(&model.Alert{})
	if filter != nil {
		if filter.StationID != nil {
			tx = tx.Where("station_id = ?", *filter.StationID)
		}
		if filter.InverterID != nil {
			tx = tx.Where("inverter_id = ?", *filter.InverterID)
		}
		if filter.Type != "" {
			tx = tx.Where("type = ?", filter.Type)
		}
		if filter.Severity != "" {
			tx = tx.Where("severity = ?", filter.Severity)
		}
		if filter.ActiveOnly {
			tx = tx.Where("is_active = ? AND resolved = ?", true, false)
		}
	}

	var alerts []model.Alert
	if err := tx.Order("occurred_at desc").Find(&alerts).Error; err != nil {
		return nil, err
	}

	return alerts, nil
}

func (r *alertRepo) FindOne(id int64) (*model.Alert, error) {
	var alert model.Alert
	tx := r.db.Session(&gorm.Session{})
	err := tx.First(&alert, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAlertNotFound
	}
	if err != nil {
		return nil, err
	}

	return &alert, nil
}

func (r *alertRepo) Create(alert *model.Alert) error {
	if alert.Severity == "" {
		alert.Severity = model.SeverityFor(alert.Type)
	}
	alert.IsActive = true

	tx := r.db.Session(&gorm.Session{})
	return tx.Create(alert).Error
}

func (r *alertRepo) Acknowledge(id int64, by string, now time.Time) error {
	tx := r.db.Session(&gorm.Session{})
	result := tx.Model(&model.Alert{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"acknowledged":    true,
			"acknowledged_at": now,
			"acknowledged_by": by,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAlertNotFound
	}

	return nil
}

func (r *alertRepo) Resolve(id int64, notes string, now time.Time) error {
	tx := r.db.Session(&gorm.Session{})
	result := tx.Model(&model.Alert{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"resolved":         true,
			"resolved_at":      now,
			"resolution_notes": notes,
			"is_active":        false,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAlertNotFound
	}

	return nil
}

func (r *alertRepo) FindUnsentActive() ([]model.Alert, error) {
	var alerts []model.Alert
	tx := r.db.Session(&gorm.Session{})
	err := tx.Where("is_active = ? AND resolved = ? AND notification_sent = ?", true, false, false).
		Order("occurred_at asc").
		Find(&alerts).Error
	if err != nil {
		return nil, err
	}

	return alerts, nil
}

func (r *alertRepo) MarkNotified(id int64, now time.Time) error {
	tx := r.db.Session(&gorm.Session{})
	return tx.Model(&model.Alert{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"notification_sent":    true,
			"notification_sent_at": now,
		}).Error
}

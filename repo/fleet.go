package repo

import (
	"errors"
	"time"

	"github.com/skyvolt/fleetmon/model"
	"gorm.io/gorm"
)

type StationRepo interface {
	// Upsert creates or overwrites the station keyed by
	// (credential_id, external_id) and backfills station.ID.
	Upsert(station *model.Station) error
	FindByCredential(credentialID int64) ([]model.Station, error)
	FindOne(id int64) (*model.Station, error)
	FindAll() ([]model.Station, error)
	UpdateStatus(id int64, status string, lastDataTime *time.Time) error
}

type stationRepo struct {
	db *gorm.DB
}

func NewStationRepo(db *gorm.DB) StationRepo {
	return &stationRepo{db: db}
}

func (r *stationRepo) Upsert(station *model.Station) error {
	tx := r.db.Session(&gorm.Session{})

	var existing model.Station
	err := tx.Where("credential_id = ? AND external_id = ?", station.CredentialID, station.ExternalID).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(station).Error
	}
	if err != nil {
		return err
	}

	station.ID = existing.ID
	station.Status = existing.Status
	station.LastDataTime = existing.LastDataTime
	station.CreatedAt = existing.CreatedAt
	return tx.Save(station).Error
}

func (r *stationRepo) FindByCredential(credentialID int64) ([]model.Station, error) {
	var stations []model.Station
	tx := r.db.Session(&gorm.Session{})
	if err := tx.Where("credential_id = ?", credentialID).Find(&stations).Error; err != nil {
		return nil, err
	}

	return stations, nil
}

func (r *stationRepo) FindOne(id int64) (*model.Station, error) {
	var station model.Station
	tx := r.db.Session(&gorm.Session{})
	if err := tx.Where("id = ?", id).First(&station).Error; err != nil {
		return nil, err
	}

	return &station, nil
}

func (r *stationRepo) FindAll() ([]model.Station, error) {
	var stations []model.Station
	tx := r.db.Session(&gorm.Session{})
	if err := tx.Find(&stations).Error; err != nil {
		return nil, err
	}

	return stations, nil
}

func (r *stationRepo) UpdateStatus(id int64, status string, lastDataTime *time.Time) error {
	updates := map[string]any{"status": status}
	if lastDataTime != nil {
		updates["last_data_time"] = *lastDataTime
	}

	tx := r.db.Session(&gorm.Session{})
	return tx.Model(&model.Station{}).Where("id = ?", id).Updates(updates).Error
}

type InverterRepo interface {
	// Upsert creates or overwrites identity fields keyed by
	// (station_id, external_id), preserving the live snapshot, and
	// backfills inverter.ID.
	Upsert(inverter *model.Inverter) error
	Save(inverter *model.Inverter) error
	FindByStation(stationID int64) ([]model.Inverter, error)
	FindOne(id int64) (*model.Inverter, error)
	FindAll() ([]model.Inverter, error)
}

type inverterRepo struct {
	db *gorm.DB
}

func NewInverterRepo(db *gorm.DB) InverterRepo {
	return &inverterRepo{db: db}
}

func (r *inverterRepo) Upsert(inverter *model.Inverter) error {
	tx := r.db.Session(&gorm.Session{})

	var existing model.Inverter
	err := tx.Where("station_id = ? AND external_id = ?", inverter.StationID, inverter.ExternalID).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(inverter).Error
	}
	if err != nil {
		return err
	}

	// Identity fields come from the vendor; everything else keeps the
	// state the last ingestion wrote.
	existing.SerialNumber = inverter.SerialNumber
	existing.Model = inverter.Model
	existing.Firmware = inverter.Firmware
	existing.RatedPowerW = inverter.RatedPowerW
	existing.Metadata = inverter.Metadata
	if err := tx.Save(&existing).Error; err != nil {
		return err
	}

	*inverter = existing
	return nil
}

func (r *inverterRepo) Save(inverter *model.Inverter) error {
	tx := r.db.Session(&gorm.Session{})
	return tx.Save(inverter).Error
}

func (r *inverterRepo) FindByStation(stationID int64) ([]model.Inverter, error) {
	var inverters []model.Inverter
	tx := r.db.Session(&gorm.Session{})
	if err := tx.Where("station_id = ?", stationID).Find(&inverters).Error; err != nil {
		return nil, err
	}

	return inverters, nil
}

func (r *inverterRepo) FindOne(id int64) (*model.Inverter, error) {
	var inverter model.Inverter
	tx := r.db.Session(&gorm.Session{})
	if err := tx.Where("id = ?", id).First(&inverter).Error; err != nil {
		return nil, err
	}

	return &inverter, nil
}

func (r *inverterRepo) FindAll() ([]model.Inverter, error) {
	var inverters []model.Inverter
	tx := r.db.Session(&gorm.Session{})
	if err := tx.Find(&inverters).Error; err != nil {
		return nil, err
	}

	return inverters, nil
}

package infra

import (
	"github.com/skyvolt/fleetmon/config"
	"github.com/skyvolt/fleetmon/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewGormDB(paths ...string) (*gorm.DB, error) {
	path := config.GetConfig().Database.Path
	if len(paths) > 0 {
		path = paths[0]
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Brand{},
		&model.Credential{},
		&model.Station{},
		&model.Inverter{},
		&model.DataPoint{},
		&model.DailyStat{},
		&model.Alert{},
	)
}

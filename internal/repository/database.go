package repository

import (
	"github.com/YasiruRavidith/Chat-Room/internal/config"
	"github.com/YasiruRavidith/Chat-Room/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMember{},
		&models.Message{},
		&models.MessageStatus{},
	); err != nil {
		return nil, err
	}

	return db, nil
}

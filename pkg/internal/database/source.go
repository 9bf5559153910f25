package database

import (
	"github.com/spf13/viper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var C *gorm.DB

// NewGorm opens the client-local store. Everything the client persists
// (session credentials, the write outbox) lives in one sqlite file.
func NewGorm() error {
	dsn := viper.GetString("storage.path")
	if len(dsn) == 0 {
		dsn = "survey-client.db"
	}

	var err error
	C, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})

	return err
}

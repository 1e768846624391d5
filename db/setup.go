package db

import (
	"fmt"

	"github.com/taskpilot-dev/taskpilot/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// ConnectDatabase opens the GORM handle for the configured adapter.
// Supported adapters are "postgres" and "mysql".
func ConnectDatabase(adapter, dsn string) error {
	var err error

	switch adapter {
	case "postgres", "":
		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	case "mysql":
		DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
	default:
		return fmt.Errorf("db: unsupported adapter %q", adapter)
	}

	return err
}

func MigrateDatabase() error {
	models := []interface{}{
		&models.User{},
		&models.Task{},
		&models.ChatMessage{},
	}

	migrator := DB.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := DB.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}

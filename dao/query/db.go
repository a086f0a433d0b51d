package query

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hackdash/config"
	"hackdash/logutils"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitDB opens the database selected by cfg.Database.Driver
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dbConfig := cfg.Database

	var dialector gorm.Dialector
	switch dbConfig.Driver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
			dbConfig.Host, dbConfig.User, dbConfig.Password, dbConfig.DBName,
			dbConfig.Port, dbConfig.SSLMode, dbConfig.TimeZone)
		dialector = postgres.Open(dsn)
	case "sqlite":
		if dir := filepath.Dir(dbConfig.SQLitePath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		dialector = sqlite.Open(fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on", dbConfig.SQLitePath))
	default:
		return nil, fmt.Errorf("unknown database driver %q", dbConfig.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if dbConfig.Driver == "sqlite" {
		// one writer at a time, otherwise SQLITE_BUSY under load
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
		sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	logutils.Log.Infof("%s init success!", dbConfig.Driver)
	return db, nil
}

// OpenMemory opens a private in-memory SQLite database and migrates it.
func OpenMemory() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// every new connection would see a fresh empty database
	sqlDB.SetMaxOpenConns(1)
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"thundergames/backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

const sqlitePrefix = "sqlite:"

// Dialector picks the gorm driver for a DSN. Postgres URLs and key/value DSNs go to
// the postgres driver, "sqlite:<path>" and ":memory:" to sqlite.
func Dialector(dsn string) gorm.Dialector {
	switch {
	case dsn == ":memory:":
		return sqlite.Open(sqliteDSN(dsn))
	case strings.HasPrefix(dsn, sqlitePrefix):
		return sqlite.Open(sqliteDSN(strings.TrimPrefix(dsn, sqlitePrefix)))
	default:
		return postgres.Open(dsn)
	}
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}

// Open connects to the database and runs migrations.
func Open(dsn string, log *zap.Logger) (*gorm.DB, error) {
	if log == nil {
		log = zap.NewNop()
	}

	// Configure GORM logger
	customLogger := gormlogger.New(
		zap.NewStdLog(log),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond, // Slow SQL threshold
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(Dialector(dsn), &gorm.Config{
		Logger:         customLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if db.Dialector.Name() == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql db: %w", err)
		}
		// One connection: sqlite serialises writers anyway and ":memory:" is per-connection.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the catalog tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Folder{}, &models.Game{}); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

// Ping checks that the database answers.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Connect initializes the global database connection and runs migrations.
func Connect(dsn string, log *zap.Logger) {
	var err error
	DB, err = Open(dsn, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection established and migrated.")
}

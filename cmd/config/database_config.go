package config

import (
	"fmt"
	"strings"
	"time"

	"foodgram/internal/logging"
	"foodgram/internal/utils"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ConnectDB opens the database selected by DB_DRIVER. DB_DSN, when set, is
// used verbatim instead of the DSN assembled from the DB_* keys.
func ConnectDB() (*gorm.DB, error) {
	driver := strings.ToLower(utils.GetConfig("DB_DRIVER"))

	dialector, err := dialectorFor(driver, utils.GetConfig("DB_DSN"))
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormLogLevel()),
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	logging.Info().Str("driver", driver).Msg("database connected")
	return db, nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "", "postgres":
		if dsn == "" {
			dsn = fmt.Sprintf(
				"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
				utils.GetConfig("DB_HOST"),
				utils.GetConfig("DB_USER"),
				utils.GetConfig("DB_PASSWORD"),
				utils.GetConfig("DB_NAME"),
				utils.GetConfig("DB_PORT"),
			)
		}
		return postgres.Open(dsn), nil
	case "mysql":
		if dsn == "" {
			dsn = fmt.Sprintf(
				"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
				utils.GetConfig("DB_USER"),
				utils.GetConfig("DB_PASSWORD"),
				utils.GetConfig("DB_HOST"),
				utils.GetConfig("DB_PORT"),
				utils.GetConfig("DB_NAME"),
			)
		}
		return mysql.Open(dsn), nil
	case "sqlite":
		if dsn == "" {
			dsn = utils.GetConfig("DB_NAME") + ".db"
		}
		return sqlite.Open(withForeignKeys(dsn)), nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_pragma=foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

func gormLogLevel() gormlogger.LogLevel {
	if strings.EqualFold(utils.GetConfig("LOG_LEVEL"), "debug") {
		return gormlogger.Info
	}
	return gormlogger.Warn
}

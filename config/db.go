package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"hotel-booking/models"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// defaultRooms seeds an empty catalog.
var defaultRooms = []models.Room{
	{Slug: "double", Name: "Double Room", Position: 0, Beds: 2, TotalRooms: 4, ExtraBeds: 1, MinBookingBeds: 1, Price: 95},
	{Slug: "family", Name: "Family Room", Position: 1, Beds: 4, TotalRooms: 1, ExtraBeds: 2, MinBookingBeds: 1, Price: 160},
	{Slug: "dormitory", Name: "Dormitory", Position: 2, Beds: 1, TotalRooms: 8, ExtraBeds: 0, MinBookingBeds: 1, Price: 35},
	{Slug: "suite", Name: "Garden Suite", Position: 3, Beds: 2, TotalRooms: 1, ExtraBeds: 0, MinBookingBeds: 2, Price: 220},
}

func SeedDatabase(db *gorm.DB, l *zap.Logger) error {
	var roomCount int64
	if err := db.Model(&models.Room{}).Count(&roomCount).Error; err != nil {
		return fmt.Errorf("count rooms: %w", err)
	}
	if roomCount == 0 {
		rooms := make([]models.Room, len(defaultRooms))
		copy(rooms, defaultRooms)
		if err := db.Create(&rooms).Error; err != nil {
			return fmt.Errorf("seed rooms: %w", err)
		}
		l.Info("room catalog seeded", zap.Int("rooms", len(rooms)))
	}

	var settingsCount int64
	if err := db.Model(&models.HotelSetting{}).Count(&settingsCount).Error; err != nil {
		return fmt.Errorf("count hotel settings: %w", err)
	}
	if settingsCount == 0 {
		hotel := models.HotelSetting{
			Name:       "Hotel",
			AdminEmail: envOrDefault("ADMIN_EMAIL", ""),
		}
		if err := db.Create(&hotel).Error; err != nil {
			return fmt.Errorf("seed hotel settings: %w", err)
		}
		l.Info("hotel settings seeded")
	}
	return nil
}

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	// booking dates are stored as UTC calendar dates
	if q.Get("loc") == "" {
		q.Set("loc", "UTC")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func resolveMySQLDSN() (string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}

	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := envOrDefault("DB_USER", "root")
	pass := envOrDefault("DB_PASS", "")
	host := envOrDefault("DB_HOST", "127.0.0.1")
	port := envOrDefault("DB_PORT", "3306")
	dbName := envOrDefault("DB_NAME", "hotel_db")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		user, pass, host, port, dbName,
	), nil
}

// Migrate creates or updates the schema in parent -> child order.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.HotelSetting{},
		&models.Room{},
		&models.Booking{},
	)
}

func ConnectDatabase(l *zap.Logger) error {
	dsn, err := resolveMySQLDSN()
	if err != nil {
		return err
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: newLogger, TranslateError: true})
	if err != nil {
		return err
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		l.Warn("cannot get raw sql.DB", zap.Error(err))
	}

	DB = db

	if err := Migrate(DB); err != nil {
		return err
	}

	return SeedDatabase(DB, l)
}

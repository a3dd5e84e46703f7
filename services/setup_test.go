package services

import (
	"testing"
	"time"

	"hotel-booking/availability"
	"hotel-booking/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.HotelSetting{}, &models.Room{}, &models.Booking{}))
	return db
}

func seedRoom(t *testing.T, db *gorm.DB, room models.Room) models.Room {
	t.Helper()
	if room.TotalRooms == 0 {
		room.TotalRooms = 1
	}
	if room.MinBookingBeds == 0 {
		room.MinBookingBeds = 1
	}
	if room.Name == "" {
		room.Name = room.Slug
	}
	require.NoError(t, db.Create(&room).Error)
	return room
}

func seedBooking(t *testing.T, db *gorm.DB, roomID uint, in, out string, beds int, status models.BookingStatus) models.Booking {
	t.Helper()
	b := models.Booking{
		ReferenceCode: newReferenceCode(),
		RoomID:        roomID,
		Status:        status,
		CheckInDate:   day(t, in),
		CheckOutDate:  day(t, out),
		Beds:          beds,
		GuestName:     "Seeded Guest",
		GuestEmail:    "seeded@example.com",
	}
	b.Nights = availability.Nights(b.CheckInDate, b.CheckOutDate)
	require.NoError(t, db.Create(&b).Error)
	return b
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := availability.ParseDate(s)
	require.NoError(t, err)
	return d
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

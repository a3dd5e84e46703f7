package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"hotel-booking/availability"
	"hotel-booking/models"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxWriteAttempts = 3
	mysqlDeadlock    = 1213
	mysqlLockWait    = 1205
	notifyTimeout    = 30 * time.Second
)

type CreateBookingInput struct {
	RoomID             uint
	CheckIn            time.Time
	CheckOut           time.Time
	Beds               int
	ExtraBedsConfirmed bool

	GuestName  string
	GuestEmail string
	GuestPhone string
	Notes      string
	Details    map[string]interface{}
}

func (in CreateBookingInput) request() availability.Request {
	return availability.Request{
		RoomID:             in.RoomID,
		CheckIn:            availability.NormalizeDate(in.CheckIn),
		CheckOut:           availability.NormalizeDate(in.CheckOut),
		Beds:               in.Beds,
		ExtraBedsConfirmed: in.ExtraBedsConfirmed,
	}
}

func (in CreateBookingInput) validateGuest() error {
	if strings.TrimSpace(in.GuestName) == "" {
		return fmt.Errorf("%w: guest name is required", ErrInvalidGuestDetails)
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(in.GuestEmail)); err != nil {
		return fmt.Errorf("%w: provide a valid email", ErrInvalidGuestDetails)
	}
	return nil
}

type BookingFilter struct {
	RoomID uint
	Status models.BookingStatus
}

// BookingService owns the booking write path. Capacity is re-checked inside
// the write transaction with the room row locked, so two concurrent requests
// cannot both take the last beds.
type BookingService struct {
	DB           *gorm.DB
	Availability *AvailabilityService
	Notifier     BookingNotifier
	Projection   OccupancyProjection
	l            *zap.Logger
}

func NewBookingService(db *gorm.DB, avail *AvailabilityService, notifier BookingNotifier, projection OccupancyProjection, l *zap.Logger) *BookingService {
	if projection == nil {
		projection = NoopProjection{}
	}
	return &BookingService{DB: db, Availability: avail, Notifier: notifier, Projection: projection, l: l}
}

// CreateBooking checks availability, then writes the booking as pending.
// ErrRoomUnavailable means the stay did not fit when checked;
// ErrBookingWriteConflict means it fit but the beds were gone by write time.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (models.Booking, error) {
	req := in.request()
	if err := req.Validate(); err != nil {
		return models.Booking{}, err
	}
	if err := in.validateGuest(); err != nil {
		return models.Booking{}, err
	}

	room, bookings, err := s.Availability.snapshot(ctx, in.RoomID)
	if err != nil {
		return models.Booking{}, err
	}
	if req.Beds < room.MinBookingBeds {
		return models.Booking{}, fmt.Errorf("%w: %s needs at least %d beds", ErrBelowMinimumBeds, room.Name, room.MinBookingBeds)
	}

	capacity := room.Capacity()
	res, err := availability.Check(capacity, bookings, req)
	if err != nil {
		return models.Booking{}, err
	}
	// A whole-unit room is taken by any overlapping booking, whatever beds remain.
	if capacity.WholeUnit() && availability.Overlaps(bookings, req.CheckIn, req.CheckOut) {
		res.Available = false
	}
	if !res.Available {
		return models.Booking{}, &UnavailableError{Result: res}
	}

	var booking models.Booking
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		booking, err = s.commit(ctx, in, req)
		if err == nil || !retryable(err) {
			break
		}
		s.l.Warn("booking write collided, retrying", zap.Int("attempt", attempt), zap.Uint("room_id", in.RoomID), zap.Error(err))
	}
	if err != nil {
		return models.Booking{}, err
	}

	booking.Room = room
	s.afterWrite(booking)
	return booking, nil
}

// commit re-validates capacity and inserts the booking in one transaction.
func (s *BookingService) commit(ctx context.Context, in CreateBookingInput, req availability.Request) (models.Booking, error) {
	var booking models.Booking

	details, err := json.Marshal(in.Details)
	if err != nil {
		return booking, fmt.Errorf("%w: details: %v", ErrInvalidGuestDetails, err)
	}
	if in.Details == nil {
		details = nil
	}

	ctx, cancel := s.Availability.withTimeout(ctx)
	defer cancel()

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&room, req.RoomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: id %d", ErrRoomNotFound, req.RoomID)
			}
			return checkFailed(fmt.Errorf("lock room %d: %w", req.RoomID, err))
		}

		list, err := loadActiveBookings(ctx, tx, req.RoomID)
		if err != nil {
			return err
		}

		res, err := availability.Check(room.Capacity(), models.Occupancies(list), req)
		if err != nil {
			return err
		}
		if !res.Available {
			return fmt.Errorf("%w: %d beds free, %d requested", ErrBookingWriteConflict, res.AvailableCount, req.Beds)
		}

		booking = models.Booking{
			ReferenceCode: newReferenceCode(),
			RoomID:        req.RoomID,
			Status:        models.StatusPending,
			CheckInDate:   req.CheckIn,
			CheckOutDate:  req.CheckOut,
			Nights:        availability.Nights(req.CheckIn, req.CheckOut),
			Beds:          req.Beds,
			ExtraBedsUsed: req.Beds > res.AvailableRegularBeds,
			GuestName:     strings.TrimSpace(in.GuestName),
			GuestEmail:    strings.TrimSpace(in.GuestEmail),
			GuestPhone:    strings.TrimSpace(in.GuestPhone),
			Notes:         strings.TrimSpace(in.Notes),
			Details:       datatypes.JSON(details),
		}
		if err := tx.Create(&booking).Error; err != nil {
			return fmt.Errorf("create booking: %w", err)
		}
		return nil
	})
	return booking, err
}

func newReferenceCode() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "BK-" + strings.ToUpper(id[:12])
}

func retryable(err error) bool {
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDeadlock || myErr.Number == mysqlLockWait
	}
	return false
}

// afterWrite fans out the side effects of a booking write. Neither can fail the booking.
func (s *BookingService) afterWrite(booking models.Booking) {
	refreshAsync(s.Projection, booking.RoomID, s.l)

	if s.Notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.Notifier.BookingCreated(ctx, booking); err != nil {
			s.l.Error("booking notification failed",
				zap.String("reference", booking.ReferenceCode),
				zap.Error(err),
			)
		}
	}()
}

// UpdateStatus moves a booking along its lifecycle. Cancelled and completed
// are terminal.
func (s *BookingService) UpdateStatus(ctx context.Context, id uint, raw string) (models.Booking, error) {
	target, ok := models.ParseBookingStatus(raw)
	if !ok {
		return models.Booking{}, fmt.Errorf("%w: unknown status %q", ErrInvalidStatusTransition, raw)
	}

	var booking models.Booking
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: id %d", ErrBookingNotFound, id)
			}
			return err
		}
		if !booking.Status.CanTransitionTo(target) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, booking.Status, target)
		}
		if err := tx.Model(&booking).Update("status", target).Error; err != nil {
			return fmt.Errorf("update booking %d status: %w", id, err)
		}
		booking.Status = target
		return nil
	})
	if err != nil {
		return models.Booking{}, err
	}

	s.l.Info("booking status changed",
		zap.String("reference", booking.ReferenceCode),
		zap.String("status", string(target)),
	)
	refreshAsync(s.Projection, booking.RoomID, s.l)
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id uint) (models.Booking, error) {
	var booking models.Booking
	if err := s.DB.WithContext(ctx).Preload("Room").First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return booking, fmt.Errorf("%w: id %d", ErrBookingNotFound, id)
		}
		return booking, fmt.Errorf("failed to retrieve booking: %w", err)
	}
	return booking, nil
}

func (s *BookingService) ListBookings(ctx context.Context, filter BookingFilter) ([]models.Booking, error) {
	q := s.DB.WithContext(ctx).Preload("Room").Order("check_in_date ASC").Order("id ASC")
	if filter.RoomID != 0 {
		q = q.Where("room_id = ?", filter.RoomID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	list := []models.Booking{}
	if err := q.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve bookings: %w", err)
	}
	return list, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotel-booking/availability"
	"hotel-booking/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxCalendarDays = 400

// RoomAvailability pairs a catalog room with its verdict.
type RoomAvailability struct {
	Room   models.Room         `json:"room"`
	Result availability.Result `json:"availability"`
}

// AvailabilityService reads the room catalog and bookings and runs the
// availability engine over them. It never writes.
type AvailabilityService struct {
	DB         *gorm.DB
	Timeout    time.Duration
	Projection OccupancyProjection
	l          *zap.Logger
}

func NewAvailabilityService(db *gorm.DB, timeout time.Duration, projection OccupancyProjection, l *zap.Logger) *AvailabilityService {
	if projection == nil {
		projection = NoopProjection{}
	}
	return &AvailabilityService{DB: db, Timeout: timeout, Projection: projection, l: l}
}

func (s *AvailabilityService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

func loadRoom(ctx context.Context, db *gorm.DB, roomID uint) (models.Room, error) {
	var room models.Room
	if err := db.WithContext(ctx).First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return room, fmt.Errorf("%w: id %d", ErrRoomNotFound, roomID)
		}
		return room, checkFailed(fmt.Errorf("load room %d: %w", roomID, err))
	}
	return room, nil
}

// loadActiveBookings returns every booking of the given rooms that still holds beds.
func loadActiveBookings(ctx context.Context, db *gorm.DB, roomIDs ...uint) ([]models.Booking, error) {
	var list []models.Booking
	if len(roomIDs) == 0 {
		return list, nil
	}
	err := db.WithContext(ctx).
		Where("room_id IN ? AND status NOT IN ?", roomIDs, models.InactiveStatuses()).
		Find(&list).Error
	if err != nil {
		return nil, checkFailed(fmt.Errorf("load bookings: %w", err))
	}
	return list, nil
}

// snapshot fetches the room descriptor fresh from the catalog together with its active bookings.
func (s *AvailabilityService) snapshot(ctx context.Context, roomID uint) (models.Room, []availability.Booking, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	room, err := loadRoom(ctx, s.DB, roomID)
	if err != nil {
		return room, nil, err
	}
	list, err := loadActiveBookings(ctx, s.DB, roomID)
	if err != nil {
		return room, nil, err
	}
	return room, models.Occupancies(list), nil
}

// CheckRoomAvailability validates the request before any I/O, then checks it
// against the room's current bookings. Capacity always comes from the catalog.
func (s *AvailabilityService) CheckRoomAvailability(ctx context.Context, req availability.Request) (RoomAvailability, error) {
	if err := req.Validate(); err != nil {
		return RoomAvailability{}, err
	}

	room, bookings, err := s.snapshot(ctx, req.RoomID)
	if err != nil {
		return RoomAvailability{Room: room}, err
	}

	res, err := availability.Check(room.Capacity(), bookings, req)
	if err != nil {
		return RoomAvailability{Room: room}, err
	}
	return RoomAvailability{Room: room, Result: res}, nil
}

// GetAvailableRooms runs the check for every room in catalog order and keeps
// the ones that can hold the request.
func (s *AvailabilityService) GetAvailableRooms(ctx context.Context, req availability.Request) ([]RoomAvailability, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var rooms []models.Room
	if err := s.DB.WithContext(ctx).Order("position ASC").Order("id ASC").Find(&rooms).Error; err != nil {
		return nil, checkFailed(fmt.Errorf("load rooms: %w", err))
	}

	ids := make([]uint, 0, len(rooms))
	byID := make(map[uint]models.Room, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.ID)
		byID[r.ID] = r
	}

	list, err := loadActiveBookings(ctx, s.DB, ids...)
	if err != nil {
		return nil, err
	}
	perRoom := make(map[uint][]availability.Booking, len(rooms))
	for _, b := range list {
		perRoom[b.RoomID] = append(perRoom[b.RoomID], b.Occupancy())
	}

	inventories := make([]availability.RoomInventory, 0, len(rooms))
	for _, r := range rooms {
		inventories = append(inventories, availability.RoomInventory{
			RoomID:   r.ID,
			Position: r.Position,
			Capacity: r.Capacity(),
			Bookings: perRoom[r.ID],
		})
	}

	found, err := availability.Search(inventories, req)
	if err != nil {
		return nil, err
	}

	out := make([]RoomAvailability, 0, len(found))
	for _, f := range found {
		out = append(out, RoomAvailability{Room: byID[f.RoomID], Result: f.Result})
	}
	return out, nil
}

// HasOverlap is the interval pre-check: any active booking intersecting the
// stay. It is not an availability verdict for rooms with more than one unit.
func (s *AvailabilityService) HasOverlap(ctx context.Context, roomID uint, checkIn, checkOut time.Time) (bool, error) {
	if !availability.NormalizeDate(checkIn).Before(availability.NormalizeDate(checkOut)) {
		return false, fmt.Errorf("%w: check-in must be before check-out", availability.ErrInvalidDateRange)
	}

	_, bookings, err := s.snapshot(ctx, roomID)
	if err != nil {
		return false, err
	}
	return availability.Overlaps(bookings, checkIn, checkOut), nil
}

// Calendar returns per-day occupancy for [from, to). It reads the occupancy
// projection when that covers the window and falls back to the store.
func (s *AvailabilityService) Calendar(ctx context.Context, roomID uint, from, to time.Time) ([]availability.Day, error) {
	from, to = availability.NormalizeDate(from), availability.NormalizeDate(to)
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: from must be before to", availability.ErrInvalidDateRange)
	}
	if availability.Nights(from, to) > maxCalendarDays {
		return nil, fmt.Errorf("%w: window longer than %d days", availability.ErrInvalidDateRange, maxCalendarDays)
	}

	cached, ok, err := s.Projection.Lookup(ctx, roomID, from, to)
	if err != nil {
		s.l.Warn("occupancy projection lookup failed", zap.Uint("room_id", roomID), zap.Error(err))
	}
	if ok {
		ctx, cancel := s.withTimeout(ctx)
		defer cancel()
		room, err := loadRoom(ctx, s.DB, roomID)
		if err != nil {
			return nil, err
		}
		days := make([]availability.Day, 0, len(cached))
		for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
			booked := cached[d.Format(availability.DateLayout)]
			days = append(days, availability.Day{Date: d, Booked: booked, Remaining: room.Capacity().Total() - booked})
		}
		return days, nil
	}

	room, bookings, err := s.snapshot(ctx, roomID)
	if err != nil {
		return nil, err
	}
	refreshAsync(s.Projection, roomID, s.l)
	return availability.Calendar(room.Capacity(), bookings, from, to), nil
}

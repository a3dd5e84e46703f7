package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"hotel-booking/models"

	mysqldriver "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const mysqlDuplicateEntry = 1062

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// RoomInput is the writable part of a catalog room.
type RoomInput struct {
	Slug           string  `json:"slug"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"`
	Position       int     `json:"position"`
	Beds           int     `json:"beds"`
	TotalRooms     int     `json:"totalRooms"`
	ExtraBeds      int     `json:"extraBeds"`
	MinBookingBeds int     `json:"minBookingBeds"`
}

func (in RoomInput) apply(room *models.Room) {
	room.Slug = strings.ToLower(strings.TrimSpace(in.Slug))
	room.Name = strings.TrimSpace(in.Name)
	room.Description = strings.TrimSpace(in.Description)
	room.Price = in.Price
	room.Position = in.Position
	room.Beds = in.Beds
	room.TotalRooms = in.TotalRooms
	room.ExtraBeds = in.ExtraBeds
	room.MinBookingBeds = in.MinBookingBeds
	if room.TotalRooms == 0 {
		room.TotalRooms = 1
	}
	if room.MinBookingBeds == 0 {
		room.MinBookingBeds = 1
	}
}

func validateRoom(room models.Room) error {
	if !slugPattern.MatchString(room.Slug) {
		return fmt.Errorf("%w: slug must be lowercase letters, digits and dashes", ErrInvalidRoom)
	}
	if room.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRoom)
	}
	if room.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidRoom)
	}
	if room.Beds < 0 || room.TotalRooms < 1 {
		return fmt.Errorf("%w: beds must not be negative and total rooms must be at least 1", ErrInvalidRoom)
	}
	if err := room.Capacity().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRoom, err)
	}
	return nil
}

func isDuplicateKey(err error) bool {
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// RoomService manages the room catalog. Capacity edits take effect on the
// next availability check since nothing caches room descriptors.
type RoomService struct {
	DB         *gorm.DB
	Projection OccupancyProjection
	l          *zap.Logger
}

func NewRoomService(db *gorm.DB, projection OccupancyProjection, l *zap.Logger) *RoomService {
	if projection == nil {
		projection = NoopProjection{}
	}
	return &RoomService{DB: db, Projection: projection, l: l}
}

func (s *RoomService) slugTaken(ctx context.Context, slug string, exceptID uint) (bool, error) {
	var count int64
	q := s.DB.WithContext(ctx).Model(&models.Room{}).Where("slug = ?", slug)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *RoomService) Create(ctx context.Context, in RoomInput) (models.Room, error) {
	var room models.Room
	in.apply(&room)
	if err := validateRoom(room); err != nil {
		return models.Room{}, err
	}

	taken, err := s.slugTaken(ctx, room.Slug, 0)
	if err != nil {
		return models.Room{}, fmt.Errorf("check room slug: %w", err)
	}
	if taken {
		return models.Room{}, fmt.Errorf("%w: %s", ErrDuplicateRoom, room.Slug)
	}

	if err := s.DB.WithContext(ctx).Create(&room).Error; err != nil {
		if isDuplicateKey(err) {
			return models.Room{}, fmt.Errorf("%w: %s", ErrDuplicateRoom, room.Slug)
		}
		return models.Room{}, fmt.Errorf("create room: %w", err)
	}
	s.l.Info("room created", zap.Uint("room_id", room.ID), zap.String("slug", room.Slug))
	return room, nil
}

func (s *RoomService) List(ctx context.Context) ([]models.Room, error) {
	rooms := []models.Room{}
	if err := s.DB.WithContext(ctx).Order("position ASC").Order("id ASC").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

func (s *RoomService) Get(ctx context.Context, id uint) (models.Room, error) {
	var room models.Room
	if err := s.DB.WithContext(ctx).First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return room, fmt.Errorf("%w: id %d", ErrRoomNotFound, id)
		}
		return room, fmt.Errorf("get room %d: %w", id, err)
	}
	return room, nil
}

func (s *RoomService) GetBySlug(ctx context.Context, slug string) (models.Room, error) {
	var room models.Room
	if err := s.DB.WithContext(ctx).Where("slug = ?", strings.ToLower(strings.TrimSpace(slug))).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return room, fmt.Errorf("%w: slug %q", ErrRoomNotFound, slug)
		}
		return room, fmt.Errorf("get room %q: %w", slug, err)
	}
	return room, nil
}

// Update replaces the room's writable fields. Shrinking capacity below what
// is already booked is allowed; later checks just report less room.
func (s *RoomService) Update(ctx context.Context, id uint, in RoomInput) (models.Room, error) {
	room, err := s.Get(ctx, id)
	if err != nil {
		return room, err
	}
	in.apply(&room)
	if err := validateRoom(room); err != nil {
		return models.Room{}, err
	}

	taken, err := s.slugTaken(ctx, room.Slug, room.ID)
	if err != nil {
		return models.Room{}, fmt.Errorf("check room slug: %w", err)
	}
	if taken {
		return models.Room{}, fmt.Errorf("%w: %s", ErrDuplicateRoom, room.Slug)
	}

	if err := s.DB.WithContext(ctx).Save(&room).Error; err != nil {
		if isDuplicateKey(err) {
			return models.Room{}, fmt.Errorf("%w: %s", ErrDuplicateRoom, room.Slug)
		}
		return models.Room{}, fmt.Errorf("update room %d: %w", id, err)
	}
	s.l.Info("room updated", zap.Uint("room_id", room.ID), zap.Int("capacity", room.Capacity().Total()))
	refreshAsync(s.Projection, room.ID, s.l)
	return room, nil
}

// Delete soft-deletes a room that no longer has active bookings.
func (s *RoomService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	var active int64
	err := s.DB.WithContext(ctx).Model(&models.Booking{}).
		Where("room_id = ? AND status NOT IN ?", id, models.InactiveStatuses()).
		Count(&active).Error
	if err != nil {
		return fmt.Errorf("count bookings for room %d: %w", id, err)
	}
	if active > 0 {
		return fmt.Errorf("%w: %d", ErrRoomHasActiveBookings, active)
	}

	if err := s.DB.WithContext(ctx).Delete(&models.Room{}, id).Error; err != nil {
		return fmt.Errorf("delete room %d: %w", id, err)
	}
	s.l.Info("room deleted", zap.Uint("room_id", id))
	return nil
}

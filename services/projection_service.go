package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"hotel-booking/availability"
	"hotel-booking/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	projectionKeyPrefix = "occupancy:room:"
	projectionFromField = "_from"
	projectionToField   = "_to"
	projectionTimeout   = 10 * time.Second
)

// OccupancyProjection is a read-side copy of per-day booked beds. The booking
// store stays the only source of truth; nothing here feeds write decisions.
type OccupancyProjection interface {
	Refresh(ctx context.Context, roomID uint) error
	Lookup(ctx context.Context, roomID uint, from, to time.Time) (map[string]int, bool, error)
}

type NoopProjection struct{}

func (NoopProjection) Refresh(context.Context, uint) error { return nil }

func (NoopProjection) Lookup(context.Context, uint, time.Time, time.Time) (map[string]int, bool, error) {
	return nil, false, nil
}

// RedisProjection keeps one hash per room: date -> booked beds for every
// non-empty day in [_from, _to).
type RedisProjection struct {
	Client  *redis.Client
	DB      *gorm.DB
	Horizon int
	Now     func() time.Time

	mu    sync.Mutex
	rooms map[uint]*sync.Mutex
}

func NewRedisProjection(client *redis.Client, db *gorm.DB, horizonDays int) *RedisProjection {
	return &RedisProjection{Client: client, DB: db, Horizon: horizonDays, Now: time.Now}
}

// roomLock returns the mutex that orders refreshes of one room.
func (p *RedisProjection) roomLock(roomID uint) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rooms == nil {
		p.rooms = make(map[uint]*sync.Mutex)
	}
	m, ok := p.rooms[roomID]
	if !ok {
		m = &sync.Mutex{}
		p.rooms[roomID] = m
	}
	return m
}

func projectionKey(roomID uint) string {
	return projectionKeyPrefix + strconv.FormatUint(uint64(roomID), 10)
}

// Refresh recomputes the room's occupancy from the store and swaps the hash
// in a single MULTI/EXEC, so running it twice gives the same result.
// Refreshes of the same room run one at a time, from the store read through
// the hash write, so a refresh that read older bookings can never land last.
func (p *RedisProjection) Refresh(ctx context.Context, roomID uint) error {
	lock := p.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := loadRoom(ctx, p.DB, roomID)
	if err != nil {
		return err
	}
	list, err := loadActiveBookings(ctx, p.DB, roomID)
	if err != nil {
		return err
	}

	from := availability.NormalizeDate(p.Now())
	to := from.AddDate(0, 0, p.Horizon)
	days := availability.Calendar(room.Capacity(), models.Occupancies(list), from, to)

	values := map[string]interface{}{
		projectionFromField: from.Format(availability.DateLayout),
		projectionToField:   to.Format(availability.DateLayout),
	}
	for _, d := range days {
		if d.Booked > 0 {
			values[d.Date.Format(availability.DateLayout)] = d.Booked
		}
	}

	key := projectionKey(roomID)
	_, err = p.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, values)
		return nil
	})
	if err != nil {
		return fmt.Errorf("write occupancy projection for room %d: %w", roomID, err)
	}
	return nil
}

// Lookup answers from the projection only when it covers the whole window.
func (p *RedisProjection) Lookup(ctx context.Context, roomID uint, from, to time.Time) (map[string]int, bool, error) {
	raw, err := p.Client.HGetAll(ctx, projectionKey(roomID)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("read occupancy projection for room %d: %w", roomID, err)
	}
	if len(raw) == 0 {
		return nil, false, nil
	}

	coveredFrom, err := availability.ParseDate(raw[projectionFromField])
	if err != nil {
		return nil, false, nil
	}
	coveredTo, err := availability.ParseDate(raw[projectionToField])
	if err != nil {
		return nil, false, nil
	}
	from, to = availability.NormalizeDate(from), availability.NormalizeDate(to)
	if from.Before(coveredFrom) || to.After(coveredTo) {
		return nil, false, nil
	}

	out := make(map[string]int)
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		field := d.Format(availability.DateLayout)
		v, ok := raw[field]
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, false, fmt.Errorf("corrupt occupancy value %q for room %d on %s", v, roomID, field)
		}
		out[field] = n
	}
	return out, true, nil
}

// refreshAsync never blocks the caller; failures are only logged.
func refreshAsync(p OccupancyProjection, roomID uint, l *zap.Logger) {
	if _, noop := p.(NoopProjection); noop {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), projectionTimeout)
		defer cancel()
		if err := p.Refresh(ctx, roomID); err != nil {
			l.Warn("occupancy projection refresh failed", zap.Uint("room_id", roomID), zap.Error(err))
		}
	}()
}

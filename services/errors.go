package services

import (
	"errors"
	"fmt"

	"hotel-booking/availability"
)

var (
	ErrRoomNotFound            = errors.New("room not found")
	ErrBookingNotFound         = errors.New("booking not found")
	ErrAvailabilityCheckFailed = errors.New("availability check failed")
	ErrRoomUnavailable         = errors.New("room unavailable for the requested stay")
	ErrBookingWriteConflict    = errors.New("capacity was taken while the booking was being written")
	ErrBelowMinimumBeds        = errors.New("fewer beds than the room's minimum booking")
	ErrInvalidStatusTransition = errors.New("invalid booking status transition")
	ErrInvalidGuestDetails     = errors.New("invalid guest details")
	ErrInvalidRoom             = errors.New("invalid room")
	ErrDuplicateRoom           = errors.New("room slug already exists")
	ErrRoomHasActiveBookings   = errors.New("room has active bookings")
	ErrUnknownWidgetRoom       = errors.New("room has no booking widget mapping")
	ErrInvalidSettings         = errors.New("invalid hotel settings")
)

// UnavailableError carries the verdict that rejected a booking so callers can
// tell the guest whether confirming extra beds would help.
type UnavailableError struct {
	Result availability.Result
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %d beds free, %d regular", ErrRoomUnavailable, e.Result.AvailableCount, e.Result.AvailableRegularBeds)
}

func (e *UnavailableError) Unwrap() error {
	return ErrRoomUnavailable
}

func checkFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrAvailabilityCheckFailed, err)
}

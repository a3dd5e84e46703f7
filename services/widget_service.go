package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hotel-booking/availability"
)

// WidgetParams initialises the third-party booking widget embedded on room pages.
type WidgetParams struct {
	CheckInDate  string `json:"checkInDate"`
	CheckOutDate string `json:"checkOutDate"`
	RoomTypeID   string `json:"roomTypeId"`
}

// WidgetService maps catalog rooms onto the widget vendor's room types.
// The table is maintained by hand by the operator.
type WidgetService struct {
	Rooms     *RoomService
	RoomTypes map[string]string
}

func NewWidgetService(rooms *RoomService, roomTypes map[string]string) *WidgetService {
	if roomTypes == nil {
		roomTypes = map[string]string{}
	}
	return &WidgetService{Rooms: rooms, RoomTypes: roomTypes}
}

// Params resolves the vendor room type for slug. Dates default to tonight
// for one night when omitted.
func (s *WidgetService) Params(ctx context.Context, slug string, checkIn, checkOut time.Time) (WidgetParams, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	typeID, ok := s.RoomTypes[slug]
	if !ok || typeID == "" {
		return WidgetParams{}, fmt.Errorf("%w: %q", ErrUnknownWidgetRoom, slug)
	}
	if _, err := s.Rooms.GetBySlug(ctx, slug); err != nil {
		return WidgetParams{}, err
	}

	if checkIn.IsZero() {
		checkIn = time.Now()
	}
	checkIn = availability.NormalizeDate(checkIn)
	if checkOut.IsZero() {
		checkOut = checkIn.AddDate(0, 0, 1)
	}
	checkOut = availability.NormalizeDate(checkOut)
	if !checkIn.Before(checkOut) {
		return WidgetParams{}, fmt.Errorf("%w: check-in must be before check-out", availability.ErrInvalidDateRange)
	}

	return WidgetParams{
		CheckInDate:  checkIn.Format(availability.DateLayout),
		CheckOutDate: checkOut.Format(availability.DateLayout),
		RoomTypeID:   typeID,
	}, nil
}

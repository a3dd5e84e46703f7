// Package availability decides whether a stay fits in a room's bed inventory.
//
// Everything here is pure: callers fetch the room descriptor and its bookings
// from the store and hand them in on every call.
package availability

import (
	"fmt"
	"sort"
	"time"
)

// Capacity is a room's bed inventory.
type Capacity struct {
	RegularBeds    int `json:"regularBeds"`
	ExtraBeds      int `json:"extraBeds"`
	MinBookingBeds int `json:"minBookingBeds"`
}

func (c Capacity) Total() int {
	return c.RegularBeds + c.ExtraBeds
}

// WholeUnit reports whether any single booking takes the entire room, which
// is the only case where an interval overlap alone means "full".
func (c Capacity) WholeUnit() bool {
	return c.MinBookingBeds >= c.Total()
}

func (c Capacity) Validate() error {
	if c.RegularBeds < 0 || c.ExtraBeds < 0 {
		return fmt.Errorf("%w: bed counts must not be negative", ErrInvalidBedCount)
	}
	if c.MinBookingBeds < 1 {
		return fmt.Errorf("%w: minimum booking beds must be at least 1", ErrInvalidBedCount)
	}
	if c.MinBookingBeds > c.Total() {
		return fmt.Errorf("%w: minimum booking beds %d exceeds capacity %d", ErrInvalidBedCount, c.MinBookingBeds, c.Total())
	}
	return nil
}

// Booking is the engine's view of a stored booking. CheckOut is exclusive.
type Booking struct {
	RoomID   uint
	Active   bool
	CheckIn  time.Time
	CheckOut time.Time
	Beds     int
}

func (b Booking) occupies(day time.Time) bool {
	return !day.Before(NormalizeDate(b.CheckIn)) && day.Before(NormalizeDate(b.CheckOut))
}

type Request struct {
	RoomID             uint
	CheckIn            time.Time
	CheckOut           time.Time
	Beds               int
	ExtraBedsConfirmed bool
}

func (r Request) Validate() error {
	if r.CheckIn.IsZero() || r.CheckOut.IsZero() {
		return fmt.Errorf("%w: check-in and check-out are required", ErrInvalidDateRange)
	}
	if !NormalizeDate(r.CheckIn).Before(NormalizeDate(r.CheckOut)) {
		return fmt.Errorf("%w: check-in must be before check-out", ErrInvalidDateRange)
	}
	if r.Beds < 1 {
		return fmt.Errorf("%w: at least one bed must be requested", ErrInvalidBedCount)
	}
	return nil
}

// Day is the occupancy of a single calendar day.
type Day struct {
	Date      time.Time `json:"date"`
	Booked    int       `json:"booked"`
	Remaining int       `json:"remaining"`
}

type Result struct {
	Available            bool  `json:"available"`
	AvailableCount       int   `json:"availableCount"`
	AvailableRegularBeds int   `json:"availableRegularBeds"`
	AvailableExtraBeds   int   `json:"availableExtraBeds"`
	NeedsExtraBeds       bool  `json:"needsExtraBeds"`
	Days                 []Day `json:"days,omitempty"`
}

// Check runs the day-by-day capacity walk for one room. The busiest day of
// the stay decides: a stay must fit on every night it spans.
func Check(capacity Capacity, bookings []Booking, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	active := activeOnly(bookings)
	days := Calendar(capacity, active, req.CheckIn, req.CheckOut)

	peak := 0
	for _, d := range days {
		if d.Booked > peak {
			peak = d.Booked
		}
	}

	res := decide(capacity, peak, req.Beds, req.ExtraBedsConfirmed)
	res.Days = days
	return res, nil
}

// decide turns the peak occupancy into a verdict. Regular beds are consumed
// first; the extra-bed share is always availableCount minus the regular share.
func decide(capacity Capacity, peak, beds int, confirmed bool) Result {
	availableCount := capacity.Total() - peak
	availableRegular := max(0, capacity.RegularBeds-peak)
	availableExtra := max(0, availableCount-availableRegular)

	needsExtra := beds > availableRegular && availableRegular+availableExtra >= beds

	available := false
	switch {
	case availableRegular >= beds:
		available = true
	case needsExtra && confirmed && availableCount >= beds:
		available = true
	}

	return Result{
		Available:            available,
		AvailableCount:       availableCount,
		AvailableRegularBeds: availableRegular,
		AvailableExtraBeds:   availableExtra,
		NeedsExtraBeds:       needsExtra,
	}
}

// Calendar reports booked and remaining beds for every day in [from, to).
// Inactive bookings are ignored.
func Calendar(capacity Capacity, bookings []Booking, from, to time.Time) []Day {
	from, to = NormalizeDate(from), NormalizeDate(to)
	active := activeOnly(bookings)

	var days []Day
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		booked := 0
		for _, b := range active {
			if b.occupies(d) {
				booked += b.Beds
			}
		}
		days = append(days, Day{Date: d, Booked: booked, Remaining: capacity.Total() - booked})
	}
	return days
}

// Overlaps is the cheap interval pre-check: does any active booking intersect
// [checkIn, checkOut)? It ignores remaining capacity, so a true answer only
// means "full" for whole-unit rooms. Check stays authoritative.
func Overlaps(bookings []Booking, checkIn, checkOut time.Time) bool {
	in, out := NormalizeDate(checkIn), NormalizeDate(checkOut)
	for _, b := range activeOnly(bookings) {
		if in.Before(NormalizeDate(b.CheckOut)) && NormalizeDate(b.CheckIn).Before(out) {
			return true
		}
	}
	return false
}

type RoomInventory struct {
	RoomID   uint
	Position int
	Capacity Capacity
	Bookings []Booking
}

type RoomResult struct {
	RoomID uint   `json:"roomId"`
	Result Result `json:"result"`
}

// Search checks every room independently and keeps those with enough total
// capacity for the stay whose minimum booking size the request meets.
// Results follow catalog position.
func Search(rooms []RoomInventory, req Request) ([]RoomResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ordered := make([]RoomInventory, len(rooms))
	copy(ordered, rooms)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	out := []RoomResult{}
	for _, room := range ordered {
		roomReq := req
		roomReq.RoomID = room.RoomID

		res, err := Check(room.Capacity, room.Bookings, roomReq)
		if err != nil {
			return nil, err
		}
		if res.AvailableCount < req.Beds || req.Beds < room.Capacity.MinBookingBeds {
			continue
		}
		out = append(out, RoomResult{RoomID: room.RoomID, Result: res})
	}
	return out, nil
}

func activeOnly(bookings []Booking) []Booking {
	out := make([]Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Active {
			out = append(out, b)
		}
	}
	return out
}

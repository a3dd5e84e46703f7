package models

import (
	"strings"
	"time"

	"hotel-booking/availability"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// ParseBookingStatus is case-insensitive; ok is false for unknown values.
func ParseBookingStatus(raw string) (BookingStatus, bool) {
	s := BookingStatus(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := validTransitions[s]
	return s, ok
}

// Active bookings hold beds.
func (s BookingStatus) Active() bool {
	return s != StatusCancelled && s != StatusCompleted
}

func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// InactiveStatuses is used to filter active bookings in queries.
func InactiveStatuses() []string {
	return []string{string(StatusCancelled), string(StatusCompleted)}
}

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ReferenceCode string        `gorm:"column:reference_code;size:64;uniqueIndex" json:"referenceCode"`
	RoomID        uint          `gorm:"column:room_id;index" json:"roomId"`
	Status        BookingStatus `gorm:"column:status;size:32;index" json:"status"`

	// CheckOutDate is exclusive: the guest leaves that morning.
	CheckInDate  time.Time `gorm:"column:check_in_date;type:date" json:"checkInDate"`
	CheckOutDate time.Time `gorm:"column:check_out_date;type:date" json:"checkOutDate"`
	Nights       int       `gorm:"column:nights" json:"nights"`

	Beds          int  `gorm:"column:beds" json:"beds"`
	ExtraBedsUsed bool `gorm:"column:extra_beds_used;default:false" json:"extraBedsUsed"`

	GuestName  string `gorm:"column:guest_name;size:255" json:"guestName"`
	GuestEmail string `gorm:"column:guest_email;size:255" json:"guestEmail"`
	GuestPhone string `gorm:"column:guest_phone;size:64" json:"guestPhone,omitempty"`
	Notes      string `gorm:"column:notes;type:text" json:"notes,omitempty"`

	// Free-form extras from the booking form (arrival time, dietary notes...).
	Details datatypes.JSON `gorm:"column:details" json:"details,omitempty"`

	Room Room `gorm:"foreignKey:RoomID;references:ID" json:"room,omitempty"`
}

func (b Booking) Occupancy() availability.Booking {
	return availability.Booking{
		RoomID:   b.RoomID,
		Active:   b.Status.Active(),
		CheckIn:  b.CheckInDate,
		CheckOut: b.CheckOutDate,
		Beds:     b.Beds,
	}
}

func Occupancies(list []Booking) []availability.Booking {
	out := make([]availability.Booking, 0, len(list))
	for _, b := range list {
		out = append(out, b.Occupancy())
	}
	return out
}

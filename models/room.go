package models

import (
	"hotel-booking/availability"

	"gorm.io/gorm"
)

// Room is a catalog entry and its capacity descriptor.
type Room struct {
	gorm.Model

	Slug        string  `json:"slug" gorm:"column:slug;uniqueIndex;type:varchar(100)"`
	Name        string  `json:"name" gorm:"type:varchar(255)"`
	Description string  `json:"description" gorm:"type:text"`
	Price       float64 `json:"price"`

	// Position is the display order in the catalog.
	Position int `json:"position" gorm:"column:position;default:0;index"`

	// Beds per unit; regular capacity is Beds * TotalRooms.
	Beds           int `json:"beds" gorm:"column:beds"`
	TotalRooms     int `json:"totalRooms" gorm:"column:total_rooms;default:1"`
	ExtraBeds      int `json:"extraBeds" gorm:"column:extra_beds;default:0"`
	MinBookingBeds int `json:"minBookingBeds" gorm:"column:min_booking_beds;default:1"`
}

func (r Room) RegularBeds() int {
	return r.Beds * r.TotalRooms
}

func (r Room) Capacity() availability.Capacity {
	return availability.Capacity{
		RegularBeds:    r.RegularBeds(),
		ExtraBeds:      r.ExtraBeds,
		MinBookingBeds: r.MinBookingBeds,
	}
}

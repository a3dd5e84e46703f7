package controllers

import (
	"net/http"
	"time"

	"hotel-booking/availability"
	"hotel-booking/services"
	"hotel-booking/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AvailabilityController struct {
	Availability *services.AvailabilityService
	Widget       *services.WidgetService
	l            *zap.Logger
}

func NewAvailabilityController(avail *services.AvailabilityService, widget *services.WidgetService, l *zap.Logger) *AvailabilityController {
	return &AvailabilityController{Availability: avail, Widget: widget, l: l}
}

// SearchRooms handles GET /api/availability.
func (ac *AvailabilityController) SearchRooms(c *gin.Context) {
	req, err := stayQuery(c)
	if err != nil {
		respondServiceError(c, ac.l, err)
		return
	}

	rooms, err := ac.Availability.GetAvailableRooms(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, ac.l, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"rooms": rooms, "count": len(rooms)})
}

// CheckRoom handles GET /api/rooms/:id/availability.
func (ac *AvailabilityController) CheckRoom(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	req, err := stayQuery(c)
	if err != nil {
		respondServiceError(c, ac.l, err)
		return
	}
	req.RoomID = id

	got, err := ac.Availability.CheckRoomAvailability(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, ac.l, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, got)
}

// RoomCalendar handles GET /api/rooms/:id/calendar?from&to.
func (ac *AvailabilityController) RoomCalendar(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	from, err := availability.ParseDate(c.Query("from"))
	if err != nil {
		respondServiceError(c, ac.l, err)
		return
	}
	to, err := availability.ParseDate(c.Query("to"))
	if err != nil {
		respondServiceError(c, ac.l, err)
		return
	}

	days, err := ac.Availability.Calendar(c.Request.Context(), id, from, to)
	if err != nil {
		respondServiceError(c, ac.l, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"roomId": id, "days": days})
}

// BookingWidget handles GET /api/booking-widget?room&checkIn&checkOut.
// Both dates are optional.
func (ac *AvailabilityController) BookingWidget(c *gin.Context) {
	var checkIn, checkOut time.Time
	var err error
	if raw := c.Query("checkIn"); raw != "" {
		if checkIn, err = availability.ParseDate(raw); err != nil {
			respondServiceError(c, ac.l, err)
			return
		}
	}
	if raw := c.Query("checkOut"); raw != "" {
		if checkOut, err = availability.ParseDate(raw); err != nil {
			respondServiceError(c, ac.l, err)
			return
		}
	}

	params, err := ac.Widget.Params(c.Request.Context(), c.Query("room"), checkIn, checkOut)
	if err != nil {
		respondServiceError(c, ac.l, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, params)
}

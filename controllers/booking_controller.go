package controllers

import (
	"net/http"
	"strconv"

	"hotel-booking/availability"
	"hotel-booking/models"
	"hotel-booking/services"
	"hotel-booking/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CreateBookingRequest struct {
	RoomID             uint                   `json:"roomId" binding:"required"`
	CheckIn            string                 `json:"checkIn" binding:"required"`
	CheckOut           string                 `json:"checkOut" binding:"required"`
	Beds               int                    `json:"beds" binding:"required"`
	ExtraBedsConfirmed bool                   `json:"extraBedsConfirmed"`
	GuestName          string                 `json:"guestName" binding:"required"`
	GuestEmail         string                 `json:"guestEmail" binding:"required"`
	GuestPhone         string                 `json:"guestPhone"`
	Notes              string                 `json:"notes"`
	Details            map[string]interface{} `json:"details"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type BookingController struct {
	BookingSvc *services.BookingService
	l          *zap.Logger
}

func NewBookingController(svc *services.BookingService, l *zap.Logger) *BookingController {
	return &BookingController{BookingSvc: svc, l: l}
}

// CreateBooking handles POST /api/bookings.
func (bc *BookingController) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	checkIn, err := availability.ParseDate(req.CheckIn)
	if err != nil {
		respondServiceError(c, bc.l, err)
		return
	}
	checkOut, err := availability.ParseDate(req.CheckOut)
	if err != nil {
		respondServiceError(c, bc.l, err)
		return
	}

	booking, err := bc.BookingSvc.CreateBooking(c.Request.Context(), services.CreateBookingInput{
		RoomID:             req.RoomID,
		CheckIn:            checkIn,
		CheckOut:           checkOut,
		Beds:               req.Beds,
		ExtraBedsConfirmed: req.ExtraBedsConfirmed,
		GuestName:          req.GuestName,
		GuestEmail:         req.GuestEmail,
		GuestPhone:         req.GuestPhone,
		Notes:              req.Notes,
		Details:            req.Details,
	})
	if err != nil {
		respondServiceError(c, bc.l, err)
		return
	}

	bc.l.Info("booking created",
		zap.String("reference", booking.ReferenceCode),
		zap.Uint("room_id", booking.RoomID),
		zap.Int("beds", booking.Beds),
		zap.Bool("extra_beds", booking.ExtraBedsUsed),
	)
	utils.JSONSuccess(c, http.StatusCreated, booking)
}

// GetBookings handles GET /api/bookings?roomId&status.
func (bc *BookingController) GetBookings(c *gin.Context) {
	var filter services.BookingFilter

	if raw := c.Query("roomId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			badRequest(c, "invalid roomId")
			return
		}
		filter.RoomID = uint(id)
	}
	if raw := c.Query("status"); raw != "" {
		status, ok := models.ParseBookingStatus(raw)
		if !ok {
			badRequest(c, "invalid status")
			return
		}
		filter.Status = status
	}

	list, err := bc.BookingSvc.ListBookings(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, bc.l, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// GetBookingDetails handles GET /api/bookings/:id.
func (bc *BookingController) GetBookingDetails(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	booking, err := bc.BookingSvc.GetBooking(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, bc.l, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// UpdateBookingStatus handles PATCH /api/bookings/:id/status.
func (bc *BookingController) UpdateBookingStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	booking, err := bc.BookingSvc.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondServiceError(c, bc.l, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

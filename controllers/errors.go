package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"hotel-booking/availability"
	"hotel-booking/services"
	"hotel-booking/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errInvalidRequest = errors.New("invalid request")

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// Order matters: the first match wins.
var errorMappings = []errorMapping{
	{errInvalidRequest, http.StatusBadRequest, "error.invalidRequest", ""},
	{services.ErrInvalidRoom, http.StatusBadRequest, "error.invalidRoom", ""},
	{availability.ErrInvalidDateRange, http.StatusBadRequest, "error.invalidDateRange", ""},
	{availability.ErrInvalidBedCount, http.StatusBadRequest, "error.invalidBedCount", ""},
	{services.ErrBelowMinimumBeds, http.StatusBadRequest, "error.belowMinimumBeds", ""},
	{services.ErrInvalidGuestDetails, http.StatusBadRequest, "error.invalidGuestDetails", ""},
	{services.ErrInvalidSettings, http.StatusBadRequest, "error.invalidSettings", ""},
	{services.ErrRoomNotFound, http.StatusNotFound, "error.roomNotFound", "Room not found"},
	{services.ErrBookingNotFound, http.StatusNotFound, "error.bookingNotFound", "Booking not found"},
	{services.ErrUnknownWidgetRoom, http.StatusNotFound, "error.unknownWidgetRoom", "This room cannot be booked online"},
	{services.ErrBookingWriteConflict, http.StatusConflict, "error.bookingConflict", "Someone else just booked these beds, please check availability again"},
	{services.ErrDuplicateRoom, http.StatusConflict, "error.duplicateRoom", ""},
	{services.ErrRoomHasActiveBookings, http.StatusConflict, "error.roomHasActiveBookings", ""},
	{services.ErrInvalidStatusTransition, http.StatusUnprocessableEntity, "error.invalidStatusTransition", ""},
	{services.ErrAvailabilityCheckFailed, http.StatusServiceUnavailable, "error.availabilityCheckFailed", "Could not check availability right now, please try again"},
}

// respondServiceError writes the HTTP response for an error returned by a
// service. Unmapped errors are logged and reported as 500.
func respondServiceError(c *gin.Context, l *zap.Logger, err error) {
	var unavailable *services.UnavailableError
	if errors.As(err, &unavailable) {
		utils.JSONErrorWithDetails(c, http.StatusConflict, "error.roomUnavailable",
			"The room is not available for the requested stay", unavailable.Result)
		return
	}

	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		msg := m.message
		if msg == "" {
			msg = err.Error()
		}
		if m.status >= http.StatusInternalServerError {
			l.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		}
		utils.JSONError(c, m.status, m.code, msg)
		return
	}

	l.Error("unhandled service error", zap.String("path", c.FullPath()), zap.Error(err))
	utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Internal server error")
}

func badRequest(c *gin.Context, message string) {
	utils.JSONError(c, http.StatusBadRequest, "error.invalidRequest", message)
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// stayQuery reads checkIn, checkOut, beds and extraBedsConfirmed from the query string.
func stayQuery(c *gin.Context) (availability.Request, error) {
	var req availability.Request

	checkIn, err := availability.ParseDate(c.Query("checkIn"))
	if err != nil {
		return req, err
	}
	checkOut, err := availability.ParseDate(c.Query("checkOut"))
	if err != nil {
		return req, err
	}

	beds, err := strconv.Atoi(strings.TrimSpace(c.DefaultQuery("beds", "1")))
	if err != nil {
		return req, fmt.Errorf("%w: beds must be a number", availability.ErrInvalidBedCount)
	}

	confirmed := false
	if raw := strings.TrimSpace(c.Query("extraBedsConfirmed")); raw != "" {
		confirmed, err = strconv.ParseBool(raw)
		if err != nil {
			return req, fmt.Errorf("%w: extraBedsConfirmed must be true or false", errInvalidRequest)
		}
	}

	req.CheckIn = checkIn
	req.CheckOut = checkOut
	req.Beds = beds
	req.ExtraBedsConfirmed = confirmed
	return req, nil
}

package controllers

import (
	"net/http"

	"hotel-booking/services"
	"hotel-booking/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SettingsController struct {
	Settings *services.SettingsService
	l        *zap.Logger
}

func NewSettingsController(settings *services.SettingsService, l *zap.Logger) *SettingsController {
	return &SettingsController{Settings: settings, l: l}
}

func (sc *SettingsController) GetHotelSettings(c *gin.Context) {
	hotel, err := sc.Settings.Get(c.Request.Context())
	if err != nil {
		respondServiceError(c, sc.l, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"hotel": hotel})
}

func (sc *SettingsController) UpdateHotelSettings(c *gin.Context) {
	var payload services.HotelSettingsInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	hotel, err := sc.Settings.Update(c.Request.Context(), payload)
	if err != nil {
		respondServiceError(c, sc.l, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"hotel": hotel})
}

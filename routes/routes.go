package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hotel-booking/controllers"
	"hotel-booking/middleware"
)

type Controllers struct {
	Availability *controllers.AvailabilityController
	Bookings     *controllers.BookingController
	Rooms        *controllers.RoomController
	Settings     *controllers.SettingsController
}

// SetupRouter wires middleware and the route table.
func SetupRouter(ctl Controllers, origins []string, l *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(l), middleware.Recovery(l))

	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/availability", ctl.Availability.SearchRooms)
		api.GET("/booking-widget", ctl.Availability.BookingWidget)

		rooms := api.Group("/rooms")
		{
			rooms.GET("", ctl.Rooms.GetRooms)
			rooms.POST("", ctl.Rooms.CreateRoom)
			rooms.GET("/:id", ctl.Rooms.GetRoom)
			rooms.PUT("/:id", ctl.Rooms.UpdateRoom)
			rooms.DELETE("/:id", ctl.Rooms.DeleteRoom)
			rooms.GET("/:id/availability", ctl.Availability.CheckRoom)
			rooms.GET("/:id/calendar", ctl.Availability.RoomCalendar)
		}

		bookings := api.Group("/bookings")
		{
			bookings.GET("", ctl.Bookings.GetBookings)
			bookings.POST("", ctl.Bookings.CreateBooking)
			bookings.GET("/:id", ctl.Bookings.GetBookingDetails)
			bookings.PATCH("/:id/status", ctl.Bookings.UpdateBookingStatus)
		}

		settings := api.Group("/settings")
		{
			settings.GET("/hotel", ctl.Settings.GetHotelSettings)
			settings.PUT("/hotel", ctl.Settings.UpdateHotelSettings)
		}
	}

	return r
}

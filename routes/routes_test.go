package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"hotel-booking/controllers"
	"hotel-booking/models"
	"hotel-booking/services"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.HotelSetting{}, &models.Room{}, &models.Booking{}))

	l := zap.NewNop()
	avail := services.NewAvailabilityService(db, 0, nil, l)
	bookings := services.NewBookingService(db, avail, nil, nil, l)
	rooms := services.NewRoomService(db, nil, l)
	widget := services.NewWidgetService(rooms, map[string]string{"double": "77"})

	router := SetupRouter(Controllers{
		Availability: controllers.NewAvailabilityController(avail, widget, l),
		Bookings:     controllers.NewBookingController(bookings, l),
		Rooms:        controllers.NewRoomController(rooms, l),
		Settings:     controllers.NewSettingsController(services.NewSettingsService(db), l),
	}, []string{"*"}, l)

	return &testServer{router: router, db: db}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (s *testServer) seedRoom(t *testing.T, room models.Room) models.Room {
	t.Helper()
	if room.TotalRooms == 0 {
		room.TotalRooms = 1
	}
	if room.MinBookingBeds == 0 {
		room.MinBookingBeds = 1
	}
	require.NoError(t, s.db.Create(&room).Error)
	return room
}

func bookingBody(roomID uint, beds int) gin.H {
	return gin.H{
		"roomId":     roomID,
		"checkIn":    "2025-06-01",
		"checkOut":   "2025-06-03",
		"beds":       beds,
		"guestName":  "Ada Lovelace",
		"guestEmail": "ada@example.com",
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w, _ := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRoomAvailabilityEndpoint(t *testing.T) {
	s := newTestServer(t)
	room := s.seedRoom(t, models.Room{Slug: "family", Name: "Family", Beds: 4, ExtraBeds: 2})

	w, env := s.do(t, http.MethodGet, "/api/rooms/1/availability?checkIn=2025-06-01&checkOut=2025-06-03&beds=5", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got services.RoomAvailability
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, room.ID, got.Room.ID)
	assert.False(t, got.Result.Available)
	assert.True(t, got.Result.NeedsExtraBeds)
	assert.Equal(t, 6, got.Result.AvailableCount)

	w, env = s.do(t, http.MethodGet, "/api/rooms/1/availability?checkIn=2025-06-01&checkOut=2025-06-03&beds=5&extraBedsConfirmed=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.True(t, got.Result.Available)
}

func TestAvailabilityErrorsMapToStatusCodes(t *testing.T) {
	s := newTestServer(t)
	s.seedRoom(t, models.Room{Slug: "double", Beds: 2})

	cases := []struct {
		path   string
		status int
		code   string
	}{
		{"/api/rooms/1/availability?checkIn=2025-06-03&checkOut=2025-06-03&beds=1", http.StatusBadRequest, "error.invalidDateRange"},
		{"/api/rooms/1/availability?checkIn=2025-06-01&checkOut=2025-06-03&beds=0", http.StatusBadRequest, "error.invalidBedCount"},
		{"/api/rooms/1/availability?checkIn=2025-06-01&checkOut=2025-06-03&beds=x", http.StatusBadRequest, "error.invalidBedCount"},
		{"/api/rooms/1/availability?checkIn=yesterday&checkOut=2025-06-03", http.StatusBadRequest, "error.invalidDateRange"},
		{"/api/rooms/1/availability?checkIn=2025-06-01&checkOut=2025-06-03&extraBedsConfirmed=maybe", http.StatusBadRequest, "error.invalidRequest"},
		{"/api/rooms/42/availability?checkIn=2025-06-01&checkOut=2025-06-03", http.StatusNotFound, "error.roomNotFound"},
		{"/api/rooms/abc/availability?checkIn=2025-06-01&checkOut=2025-06-03", http.StatusBadRequest, "error.invalidRequest"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			w, env := s.do(t, http.MethodGet, tc.path, nil)
			assert.Equal(t, tc.status, w.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tc.code, env.Error.Code)
		})
	}
}

func TestAvailabilityCheckFailureIsServiceUnavailable(t *testing.T) {
	s := newTestServer(t)
	s.seedRoom(t, models.Room{Slug: "double", Beds: 2})
	sqlDB, err := s.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w, env := s.do(t, http.MethodGet, "/api/rooms/1/availability?checkIn=2025-06-01&checkOut=2025-06-03", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "error.availabilityCheckFailed", env.Error.Code)
}

func TestSearchEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.seedRoom(t, models.Room{Slug: "dorm", Position: 1, Beds: 1, TotalRooms: 6})
	s.seedRoom(t, models.Room{Slug: "double", Position: 0, Beds: 2})

	w, env := s.do(t, http.MethodGet, "/api/availability?checkIn=2025-06-01&checkOut=2025-06-02&beds=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Rooms []services.RoomAvailability `json:"rooms"`
		Count int                         `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Equal(t, 2, got.Count)
	assert.Equal(t, "double", got.Rooms[0].Room.Slug)
	assert.Equal(t, "dorm", got.Rooms[1].Room.Slug)
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	room := s.seedRoom(t, models.Room{Slug: "double", Beds: 2})

	w, env := s.do(t, http.MethodPost, "/api/bookings", bookingBody(room.ID, 2))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var booking models.Booking
	require.NoError(t, json.Unmarshal(env.Data, &booking))
	assert.Equal(t, models.StatusPending, booking.Status)

	w, env = s.do(t, http.MethodPost, "/api/bookings", bookingBody(room.ID, 1))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "error.roomUnavailable", env.Error.Code)
	var verdict struct {
		AvailableCount int `json:"availableCount"`
	}
	require.NoError(t, json.Unmarshal(env.Error.Details, &verdict))
	assert.Zero(t, verdict.AvailableCount)

	w, env = s.do(t, http.MethodPatch, "/api/bookings/1/status", gin.H{"status": "confirmed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = s.do(t, http.MethodPatch, "/api/bookings/1/status", gin.H{"status": "pending"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "error.invalidStatusTransition", env.Error.Code)

	w, env = s.do(t, http.MethodGet, "/api/bookings/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &booking))
	assert.Equal(t, models.StatusConfirmed, booking.Status)
	assert.Equal(t, "double", booking.Room.Slug)

	w, env = s.do(t, http.MethodGet, "/api/bookings?status=confirmed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Booking
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	w, env = s.do(t, http.MethodGet, "/api/bookings/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "error.bookingNotFound", env.Error.Code)
}

func TestCreateBookingValidation(t *testing.T) {
	s := newTestServer(t)
	room := s.seedRoom(t, models.Room{Slug: "suite", Beds: 2, MinBookingBeds: 2})

	w, env := s.do(t, http.MethodPost, "/api/bookings", gin.H{"roomId": room.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error.invalidRequest", env.Error.Code)

	w, env = s.do(t, http.MethodPost, "/api/bookings", bookingBody(room.ID, 1))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error.belowMinimumBeds", env.Error.Code)

	body := bookingBody(room.ID, 2)
	body["guestEmail"] = "nope"
	w, env = s.do(t, http.MethodPost, "/api/bookings", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error.invalidGuestDetails", env.Error.Code)
}

func TestRoomCRUD(t *testing.T) {
	s := newTestServer(t)

	room := gin.H{"slug": "loft", "name": "Loft", "beds": 2, "totalRooms": 1, "extraBeds": 1, "price": 120}
	w, env := s.do(t, http.MethodPost, "/api/rooms", room)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env = s.do(t, http.MethodPost, "/api/rooms", room)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "error.duplicateRoom", env.Error.Code)

	room["minBookingBeds"] = 9
	w, env = s.do(t, http.MethodPut, "/api/rooms/1", room)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error.invalidRoom", env.Error.Code)

	room["minBookingBeds"] = 3
	w, env = s.do(t, http.MethodPut, "/api/rooms/1", room)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Room
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, 3, updated.MinBookingBeds)

	w, _ = s.do(t, http.MethodGet, "/api/rooms", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodDelete, "/api/rooms/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/rooms/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "error.roomNotFound", env.Error.Code)
}

func TestCalendarWidgetAndSettingsEndpoints(t *testing.T) {
	s := newTestServer(t)
	room := s.seedRoom(t, models.Room{Slug: "double", Beds: 2})
	_, _ = s.do(t, http.MethodPost, "/api/bookings", bookingBody(room.ID, 1))

	w, env := s.do(t, http.MethodGet, "/api/rooms/1/calendar?from=2025-06-01&to=2025-06-04", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var cal struct {
		Days []struct {
			Booked    int `json:"booked"`
			Remaining int `json:"remaining"`
		} `json:"days"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cal))
	require.Len(t, cal.Days, 3)
	assert.Equal(t, 1, cal.Days[0].Booked)
	assert.Equal(t, 2, cal.Days[2].Remaining)

	w, env = s.do(t, http.MethodGet, "/api/booking-widget?room=double&checkIn=2025-06-01&checkOut=2025-06-02", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var params services.WidgetParams
	require.NoError(t, json.Unmarshal(env.Data, &params))
	assert.Equal(t, "77", params.RoomTypeID)

	w, env = s.do(t, http.MethodGet, "/api/booking-widget?room=suite", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "error.unknownWidgetRoom", env.Error.Code)

	w, _ = s.do(t, http.MethodPut, "/api/settings/hotel", gin.H{"name": "Seaside Inn", "adminEmail": "desk@seaside.example"})
	require.Equal(t, http.StatusOK, w.Code)
	w, env = s.do(t, http.MethodGet, "/api/settings/hotel", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "Seaside Inn")

	w, env = s.do(t, http.MethodPut, "/api/settings/hotel", gin.H{"name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error.invalidSettings", env.Error.Code)
}

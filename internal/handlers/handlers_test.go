package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/talangin/talangin/internal/cache"
	"github.com/talangin/talangin/internal/models"
	"github.com/talangin/talangin/internal/realtime"
	"github.com/talangin/talangin/internal/repo"
	"github.com/talangin/talangin/internal/service"
	"github.com/talangin/talangin/internal/session"
)

func InitTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Room{},
		&models.RoomParticipant{},
		&models.OrderItem{},
		&models.PaymentMethod{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

type testEnv struct {
	T        *testing.T
	E        *echo.Echo
	DB       *gorm.DB
	Repo     *repo.Repo
	Rooms    *RoomHandler
	Items    *ItemHandler
	Payments *PaymentHandler
	Profile  *ProfileHandler
	Auth     *AuthHandler
}

func newTestEnv(t *testing.T) *testEnv {
	db := InitTestDB(t)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	queryCache := cache.New(rdb, time.Minute)

	cipher, err := repo.NewCipher("test-encryption-key")
	require.NoError(t, err)
	rp := repo.New(db, cipher)

	roomService := &service.Rooms{Repo: rp, Cache: queryCache, Hub: realtime.NewHub()}
	userService := &service.Users{Repo: rp, Cache: queryCache}
	notifService := &service.Notifications{Repo: rp, Cache: queryCache}
	paymentService := &service.Payments{Repo: rp, Cache: queryCache}

	jwtSecret := []byte("jwt-secret")
	refreshSecret := []byte("refresh-secret")
	sessions := &session.Manager{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret}

	return &testEnv{
		T:        t,
		E:        echo.New(),
		DB:       db,
		Repo:     rp,
		Rooms:    &RoomHandler{Service: roomService},
		Items:    &ItemHandler{Service: roomService},
		Payments: &PaymentHandler{Service: paymentService},
		Profile:  &ProfileHandler{DB: db, Users: userService, Notifications: notifService},
		Auth: &AuthHandler{
			DB:            db,
			JWTSecret:     jwtSecret,
			RefreshSecret: refreshSecret,
			Sessions:      sessions,
		},
	}
}

// request builds an echo context for a handler call, acting as the given
// user. userID 0 means anonymous.
func (env *testEnv) request(method, target string, userID uint, body any) (echo.Context, *httptest.ResponseRecorder) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(env.T, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	if userID != 0 {
		c.Set("userID", userID)
	}
	return c, rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func requireHTTPError(t *testing.T, err error, code int) {
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError, got %v", err)
	require.Equal(t, code, he.Code)
}

func (env *testEnv) createRoom(userID uint, title string) models.Room {
	c, rec := env.request(http.MethodPost, "/api/v1/rooms", userID, map[string]string{
		"title":      title,
		"restaurant": "Warung Tegal",
		"platform":   "gofood",
	})
	require.NoError(env.T, env.Rooms.CreateRoom(c))
	require.Equal(env.T, http.StatusCreated, rec.Code)
	return decode[models.Room](env.T, rec)
}

func (env *testEnv) joinRoom(roomID string, userID uint) models.RoomParticipant {
	c, rec := env.request(http.MethodPost, "/api/v1/rooms/"+roomID+"/join", userID, nil)
	c.SetParamNames("id")
	c.SetParamValues(roomID)
	require.NoError(env.T, env.Rooms.JoinRoom(c))
	require.Equal(env.T, http.StatusOK, rec.Code)
	return decode[models.RoomParticipant](env.T, rec)
}

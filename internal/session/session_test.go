package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/talangin/talangin/internal/models"
)

var (
	testJWTSecret     = []byte("jwt-secret")
	testRefreshSecret = []byte("refresh-secret")
)

func InitTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.RefreshToken{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func newManager(t *testing.T) *Manager {
	return &Manager{
		DB:            InitTestDB(t),
		JWTSecret:     testJWTSecret,
		RefreshSecret: testRefreshSecret,
		Public:        map[string]bool{"/api/v1/login": true},
	}
}

func TestIssueAndValidate(t *testing.T) {
	m := newManager(t)

	access, refresh, err := IssueTokens(m.DB, 7, m.JWTSecret, m.RefreshSecret)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	claims, err := ValidateRefresh(refresh, m.RefreshSecret, m.DB)
	require.NoError(t, err)
	require.Equal(t, float64(7), claims["sub"])

	// An access token is not a refresh token.
	_, err = ValidateRefresh(access, m.RefreshSecret, m.DB)
	require.Error(t, err)
}

func TestRotateRevokesOldToken(t *testing.T) {
	m := newManager(t)

	_, refresh, err := IssueTokens(m.DB, 7, m.JWTSecret, m.RefreshSecret)
	require.NoError(t, err)

	newAccess, newRefresh, err := m.Rotate(refresh)
	require.NoError(t, err)
	require.NotEmpty(t, newAccess)
	require.NotEqual(t, refresh, newRefresh)

	// The consumed token cannot rotate again.
	_, _, err = m.Rotate(refresh)
	require.Error(t, err)

	// The fresh one can.
	_, _, err = m.Rotate(newRefresh)
	require.NoError(t, err)
}

func TestValidateRefreshRejectsUnknownToken(t *testing.T) {
	m := newManager(t)

	stray, err := SignRefreshToken(7, m.RefreshSecret)
	require.NoError(t, err)

	_, err = ValidateRefresh(stray, m.RefreshSecret, m.DB)
	require.Error(t, err)
}

func guardedEcho(m *Manager) (*echo.Echo, *int) {
	e := echo.New()
	e.Use(m.Guard)
	var seenUser int
	e.GET("/api/v1/rooms", func(c echo.Context) error {
		uid, err := CurrentUser(c)
		if err != nil {
			return err
		}
		seenUser = int(uid)
		return c.NoContent(http.StatusOK)
	})
	e.POST("/api/v1/login", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return e, &seenUser
}

func TestGuardAllowsPublicRoutes(t *testing.T) {
	m := newManager(t)
	e, _ := guardedEcho(m)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGuardBlocksAnonymous(t *testing.T) {
	m := newManager(t)
	e, _ := guardedEcho(m)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rooms", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), SignInRoute)
}

func TestGuardResolvesAccessCookie(t *testing.T) {
	m := newManager(t)
	e, seenUser := guardedEcho(m)

	access, err := SignAccessToken(42, m.JWTSecret)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rooms", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: access})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 42, *seenUser)
}

func TestGuardRejectsNonHMACAccessToken(t *testing.T) {
	m := newManager(t)
	e, _ := guardedEcho(m)

	claims := jwt.MapClaims{
		"sub": 42,
		"exp": time.Now().Add(time.Minute).Unix(),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rooms", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: unsigned})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGuardRotatesExpiredAccess(t *testing.T) {
	m := newManager(t)
	e, seenUser := guardedEcho(m)

	expiredClaims := jwt.MapClaims{
		"sub": 42,
		"exp": time.Now().Add(-time.Minute).Unix(),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expiredClaims).SignedString(m.JWTSecret)
	require.NoError(t, err)

	_, refresh, err := IssueTokens(m.DB, 42, m.JWTSecret, m.RefreshSecret)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rooms", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: expired})
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refresh})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 42, *seenUser)

	// New cookies were set and the old refresh token is burned.
	cookies := rec.Result().Cookies()
	names := map[string]bool{}
	for _, ck := range cookies {
		names[ck.Name] = true
	}
	require.True(t, names["accessToken"])
	require.True(t, names["refreshToken"])

	_, _, err = m.Rotate(refresh)
	require.Error(t, err)
}

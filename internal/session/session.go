// Package session resolves the caller's identity for each request. It is an
// explicit dependency passed to the router, not package-level state: the
// guard middleware resolves the access token (refreshing it when expired),
// stores the user id in the request context, and only then decides whether
// the route requires authentication.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/talangin/talangin/internal/errs"
	"github.com/talangin/talangin/internal/models"
)

const userContextKey = "userID"

// SignInRoute is where unauthenticated callers are pointed.
const SignInRoute = "/api/v1/login"

type Manager struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte

	// Public holds route paths reachable without a session.
	Public map[string]bool
}

// CurrentUser returns the resolved caller identity for this request.
func CurrentUser(c echo.Context) (uint, error) {
	v := c.Get(userContextKey)
	if v == nil {
		return 0, errs.ErrNotAuthenticated
	}
	id, ok := v.(uint)
	if !ok {
		return 0, errs.ErrNotAuthenticated
	}
	return id, nil
}

// Guard is the route gate: resolve the session if possible, then allow the
// request through when the route is public or a user is present.
func (m *Manager) Guard(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if userID, err := m.resolve(c); err == nil {
			c.Set(userContextKey, userID)
		}

		if m.Public[c.Path()] {
			return next(c)
		}
		if _, err := CurrentUser(c); err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, map[string]string{
				"error":    "authentication required",
				"redirect": SignInRoute,
			})
		}
		return next(c)
	}
}

// resolve reads the access cookie and, when it has expired, rotates the
// refresh token into a fresh pair before answering.
func (m *Manager) resolve(c echo.Context) (uint, error) {
	asCookie, err := c.Cookie("accessToken")
	if err == nil {
		token, err := m.parseAccess(asCookie.Value)
		if err == nil && token.Valid {
			return subject(token.Claims)
		}
		if !errors.Is(err, jwt.ErrTokenExpired) {
			return 0, fmt.Errorf("invalid access token: %w", err)
		}
	}

	rfCookie, err := c.Cookie("refreshToken")
	if err != nil {
		return 0, errs.ErrNotAuthenticated
	}
	newAccess, newRefresh, err := m.Rotate(rfCookie.Value)
	if err != nil {
		return 0, fmt.Errorf("cannot rotate token: %w", err)
	}

	c.SetCookie(NewCookie("accessToken", newAccess, time.Now().Add(AccessTTL)))
	c.SetCookie(NewCookie("refreshToken", newRefresh, time.Now().Add(RefreshTTL)))

	token, err := m.parseAccess(newAccess)
	if err != nil {
		return 0, err
	}
	return subject(token.Claims)
}

func (m *Manager) parseAccess(raw string) (*jwt.Token, error) {
	return jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.JWTSecret, nil
	})
}

// Rotate validates a refresh token, revokes it, and issues a new pair.
func (m *Manager) Rotate(rawToken string) (string, string, error) {
	claims, err := ValidateRefresh(rawToken, m.RefreshSecret, m.DB)
	if err != nil {
		return "", "", err
	}
	userID, err := subject(claims)
	if err != nil {
		return "", "", err
	}

	if err := m.Revoke(rawToken); err != nil {
		return "", "", err
	}

	return IssueTokens(m.DB, userID, m.JWTSecret, m.RefreshSecret)
}

// Revoke marks a stored refresh token as unusable.
func (m *Manager) Revoke(token string) error {
	if err := m.DB.Model(&models.RefreshToken{}).
		Where("token = ?", token).
		Update("revoked", true).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func NewCookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func subject(claims jwt.Claims) (uint, error) {
	mc, ok := claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("cannot parse claims")
	}
	sub, ok := mc["sub"].(float64)
	if !ok {
		return 0, fmt.Errorf("missing sub claim")
	}
	return uint(sub), nil
}

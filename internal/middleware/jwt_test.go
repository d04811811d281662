package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func signedToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func jwtTestApp() *fiber.App {
	app := fiber.New()
	app.Use(JWTProtected(testSecret))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":   c.Locals("user_id"),
			"user_role": c.Locals("user_role"),
		})
	})
	return app
}

func TestJWTProtectedBindsIdentity(t *testing.T) {
	app := jwtTestApp()

	token := signedToken(t, jwt.MapClaims{
		"sub":  "2f4c9a10-7b1d-4c5e-8f4e-0123456789ab",
		"role": "teacher",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJWTProtectedRejectsMissingHeader(t *testing.T) {
	app := jwtTestApp()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtectedRejectsWrongSecret(t *testing.T) {
	app := jwtTestApp()

	token := signedToken(t, jwt.MapClaims{
		"sub": "user-1", "role": "student",
		"exp": time.Now().Add(time.Hour).Unix(),
	}, "a-different-secret")

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtectedRejectsExpiredToken(t *testing.T) {
	app := jwtTestApp()

	token := signedToken(t, jwt.MapClaims{
		"sub": "user-1", "role": "student",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}, testSecret)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestExtractUserIDFromClaims(t *testing.T) {
	require.Equal(t, "abc", extractUserIDFromClaims(jwt.MapClaims{"sub": "abc"}))
	require.Equal(t, "def", extractUserIDFromClaims(jwt.MapClaims{"user_id": "def"}))
	require.Equal(t, "", extractUserIDFromClaims(jwt.MapClaims{"sub": 42}))
	require.Equal(t, "", extractUserIDFromClaims(jwt.MapClaims{}))
}

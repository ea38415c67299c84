package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/YasiruRavidith/Chat-Room/internal/models"
)

const testSecret = "test-secret"

// stubResolver resolves only the user IDs it was seeded with.
type stubResolver struct {
	known map[uint]bool
}

func (s *stubResolver) GetUserByID(userID uint) (*models.User, error) {
	if s.known[userID] {
		return &models.User{ID: userID, Username: "alice"}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func signToken(t *testing.T, secret string, userID uint) string {
	t.Helper()
	claims := Claims{
		UserID:   userID,
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}

func newAuthApp(users UserResolver) *fiber.App {
	app := fiber.New()
	app.Get("/protected", AuthRequired(testSecret, users), func(c *fiber.Ctx) error {
		userID, _ := c.Locals("userID").(uint)
		return c.JSON(fiber.Map{"user_id": userID})
	})
	return app
}

func TestAuthRequiredAcceptsKnownUser(t *testing.T) {
	app := newAuthApp(&stubResolver{known: map[uint]bool{1: true}})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, 1))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestAuthRequiredRejectsUnknownUser(t *testing.T) {
	app := newAuthApp(&stubResolver{known: map[uint]bool{}})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, 99999))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for a well-signed token whose subject does not resolve", resp.StatusCode)
	}
}

func TestAuthRequiredRejectsBadToken(t *testing.T) {
	app := newAuthApp(&stubResolver{known: map[uint]bool{1: true}})

	tests := []struct {
		name  string
		token string
	}{
		{"Wrong signing secret", signToken(t, "other-secret", 1)},
		{"Garbage token", "not-a-jwt"},
		{"Zero user id", signToken(t, testSecret, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != fiber.StatusUnauthorized {
				t.Errorf("status = %d, want 401", resp.StatusCode)
			}
		})
	}
}

func TestAuthRequiredMissingToken(t *testing.T) {
	app := newAuthApp(&stubResolver{known: map[uint]bool{1: true}})

	resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestAuthRequiredQueryToken(t *testing.T) {
	app := newAuthApp(&stubResolver{known: map[uint]bool{1: true}})

	req := httptest.NewRequest("GET", "/protected?token="+signToken(t, testSecret, 1), nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

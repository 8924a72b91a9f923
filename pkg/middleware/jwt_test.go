package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key-for-jwt-middleware"

func init() {
	gin.SetMode(gin.TestMode)
}

func generateTestToken(claims jwt.MapClaims, secret string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(secret))
	return tokenString
}

func setupTestRouter(config *JWTConfig) *gin.Engine {
	router := gin.New()
	router.Use(JWTMiddleware(config))
	router.GET("/protected", func(c *gin.Context) {
		userID, _ := GetUserID(c)
		email, _ := GetEmail(c)
		role, _ := GetRole(c)
		c.JSON(http.StatusOK, gin.H{
			"user_id":  userID,
			"email":    email,
			"role":     role,
			"is_admin": IsAdmin(c),
		})
	})
	router.GET("/skip", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "skipped"})
	})
	return router
}

func TestJWTMiddleware(t *testing.T) {
	config := &JWTConfig{
		Secret:    testSecret,
		Issuer:    "juvem",
		SkipPaths: []string{"/skip"},
	}

	t.Run("issued token", func(t *testing.T) {
		router := setupTestRouter(config)
		token, err := IssueToken(testSecret, "juvem", "user-123", "admin@example.com", RoleAdmin, time.Hour)
		if err != nil {
			t.Fatalf("IssueToken: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}
		var body map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["user_id"] != "user-123" || body["role"] != RoleAdmin || body["is_admin"] != true {
			t.Errorf("unexpected claims in context: %v", body)
		}
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing authorization header", "", http.StatusUnauthorized},
		{"invalid authorization header format", "InvalidFormat", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + generateTestToken(jwt.MapClaims{
			"user_id": "u", "iss": "juvem", "exp": time.Now().Add(time.Hour).Unix(),
		}, "other-secret"), http.StatusUnauthorized},
		{"expired token", "Bearer " + generateTestToken(jwt.MapClaims{
			"user_id": "u", "iss": "juvem", "exp": time.Now().Add(-time.Hour).Unix(),
		}, testSecret), http.StatusUnauthorized},
		{"wrong issuer", "Bearer " + generateTestToken(jwt.MapClaims{
			"user_id": "u", "iss": "elsewhere", "exp": time.Now().Add(time.Hour).Unix(),
		}, testSecret), http.StatusUnauthorized},
		{"missing user id", "Bearer " + generateTestToken(jwt.MapClaims{
			"iss": "juvem", "exp": time.Now().Add(time.Hour).Unix(),
		}, testSecret), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter(config)
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, w.Code)
			}
		})
	}

	t.Run("skip path", func(t *testing.T) {
		router := setupTestRouter(config)
		req := httptest.NewRequest(http.MethodGet, "/skip", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
		}
	})
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name string
		role string
		set  bool
		want int
	}{
		{"admin allowed", RoleAdmin, true, http.StatusOK},
		{"employee forbidden", RoleEmployee, true, http.StatusForbidden},
		{"unauthenticated", "", false, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(func(c *gin.Context) {
				if tt.set {
					c.Set(ContextKeyRole, tt.role)
				}
				c.Next()
			})
			router.Use(RequireRole(RoleAdmin))
			router.GET("/admin", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

			if w.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, w.Code)
			}
		})
	}
}

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amk92987/wos-optimizer/internal/shared/auth"
)

func authRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth("dev"))
	router.GET("/api/v1/profiles", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userId":  UserIDFromContext(c),
			"isGuest": c.GetBool("isGuest"),
		})
	})
	router.OPTIONS("/api/v1/profiles", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	router.GET("/api/v1/auth/google/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func identityFor(t *testing.T, router *gin.Engine, decorate func(*http.Request)) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/profiles", nil)
	if decorate != nil {
		decorate(req)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var body map[string]any
	if resp.Body.Len() > 0 {
		if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.Code, body
}

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	router := authRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/profiles", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestAuthRejectsMissingIdentity(t *testing.T) {
	router := authRouter()

	code, body := identityFor(t, router, nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
	errObj, _ := body["error"].(map[string]any)
	if errObj["code"] != "unauthorized" {
		t.Fatalf("expected error code unauthorized, got %v", errObj["code"])
	}
}

func TestAuthGuestHeader(t *testing.T) {
	router := authRouter()

	code, body := identityFor(t, router, func(req *http.Request) {
		req.Header.Set("X-Guest-Id", "abc-123")
	})
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["userId"] != "guest:abc-123" {
		t.Fatalf("expected guest:abc-123, got %v", body["userId"])
	}
	if body["isGuest"] != true {
		t.Fatalf("expected isGuest true")
	}
}

func TestAuthBearerToken(t *testing.T) {
	router := authRouter()

	now := time.Now()
	token, err := auth.SignJWT(auth.Claims{
		Sub:   "google:12345",
		Email: "chief@example.com",
		Iat:   now.Unix(),
		Exp:   now.Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	code, body := identityFor(t, router, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["userId"] != "google:12345" {
		t.Fatalf("expected google:12345, got %v", body["userId"])
	}
	if body["isGuest"] != false {
		t.Fatalf("expected isGuest false")
	}
}

func TestAuthRejectsBadToken(t *testing.T) {
	router := authRouter()

	code, _ := identityFor(t, router, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer not.a.jwt")
	})
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestAuthExemptsGoogleRoutes(t *testing.T) {
	router := authRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/login", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 without identity, got %d", resp.Code)
	}
}

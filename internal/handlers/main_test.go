package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kanmind-dev/kanmind/db"
	"github.com/kanmind-dev/kanmind/internal/auth"
	"github.com/kanmind-dev/kanmind/internal/router"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbCounter atomic.Int64

// setupServer wires a fresh in-memory database behind the real router.
func setupServer(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	if err := auth.InitJWTSecret(); err != nil {
		t.Fatalf("Failed to init JWT secret: %v", err)
	}

	// A named shared in-memory database lives as long as the pool holds
	// a connection, so every request in a test sees the same state.
	dsn := fmt.Sprintf("file:handlers%d?mode=memory&cache=shared", dbCounter.Add(1))

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})

	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	db.DB = gdb

	if err := db.MigrateDatabase(); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return router.NewRouter()
}

func doRequest(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader

	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
}

type authResponse struct {
	Token    string `json:"token"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	UserID   uint   `json:"user_id"`
}

// registerUser creates an account through the API and returns its token
// and user id.
func registerUser(t *testing.T, r *gin.Engine, fullname, email string) (string, uint) {
	t.Helper()

	w := doRequest(t, r, "POST", "/api/auth/registration", "", gin.H{
		"fullname":          fullname,
		"email":             email,
		"password":          "password123",
		"repeated_password": "password123",
	})

	if w.Code != 201 {
		t.Fatalf("Registration of %q failed with status %d: %s", email, w.Code, w.Body.String())
	}

	var resp authResponse
	decodeBody(t, w, &resp)

	if resp.Token == "" {
		t.Fatalf("Registration of %q returned no token", email)
	}

	return resp.Token, resp.UserID
}

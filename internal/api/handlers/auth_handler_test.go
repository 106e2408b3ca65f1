package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Adarsh-MG101/VerifyCert2/internal/api/middleware"
	"github.com/Adarsh-MG101/VerifyCert2/internal/config"
	"github.com/Adarsh-MG101/VerifyCert2/internal/database"
	"github.com/Adarsh-MG101/VerifyCert2/internal/services"
)

func newHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newAuthRouter(t *testing.T) (*gin.Engine, *services.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newHandlerTestDB(t)
	authService := services.NewAuthService(db, config.Config{JWTSecret: "test-secret"})
	handler := NewAuthHandler(authService, services.NewActivityService(db))

	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)

	protected := r.Group("/")
	protected.Use(middleware.Auth(authService))
	protected.GET("/auth/me", handler.Me)
	protected.POST("/auth/logout", handler.Logout)

	return r, authService
}

func postJSON(t *testing.T, r http.Handler, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req, _ := http.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_RegisterLoginMe(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := postJSON(t, r, "/auth/register", gin.H{
		"name":         "Jane",
		"email":        "jane@example.com",
		"password":     "s3cret!",
		"organization": "Acme University",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, r, "/auth/login", gin.H{
		"email":    "jane@example.com",
		"password": "s3cret!",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var loginResp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loginResp))
	require.NotEmpty(t, loginResp.Token)

	req, _ := http.NewRequest("GET", "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+loginResp.Token)
	me := httptest.NewRecorder()
	r.ServeHTTP(me, req)

	assert.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), "jane@example.com")
}

func TestAuthHandler_LoginWrongPassword(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := postJSON(t, r, "/auth/register", gin.H{
		"email":        "jane@example.com",
		"password":     "s3cret!",
		"organization": "Acme",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, r, "/auth/login", gin.H{
		"email":    "jane@example.com",
		"password": "nope",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_MeWithoutToken(t *testing.T) {
	r, _ := newAuthRouter(t)

	req, _ := http.NewRequest("GET", "/auth/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"flock/internal/config"
	"flock/internal/database"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Config{
		JWTSecret:      "test-secret-long-enough-for-validation!",
		Port:           "0",
		AllowedOrigins: "*",
		Env:            "test",
	}
	return NewServerWithDeps(cfg, db, rdb, nil)
}

// doJSON performs a request against the test app and decodes the JSON body.
func doJSON(t *testing.T, s *Server, method, url, token string, body any) (int, map[string]json.RawMessage) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	fields := map[string]json.RawMessage{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &fields), "body: %s", raw)
	}
	return resp.StatusCode, fields
}

// signup registers a user through the API and returns the token and user id.
func signup(t *testing.T, s *Server, username string) (string, uint) {
	t.Helper()

	status, fields := doJSON(t, s, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
		"name":     username,
	})
	require.Equal(t, http.StatusCreated, status)

	var token string
	require.NoError(t, json.Unmarshal(fields["token"], &token))

	var user struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(fields["user"], &user))
	return token, user.ID
}

func createPostViaAPI(t *testing.T, s *Server, token, content string) uint {
	t.Helper()

	status, fields := doJSON(t, s, http.MethodPost, "/api/posts", token, map[string]any{
		"content": content,
	})
	require.Equal(t, http.StatusCreated, status)

	var id uint
	require.NoError(t, json.Unmarshal(fields["id"], &id))
	return id
}

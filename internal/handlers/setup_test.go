package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/assignment-service/internal/cache"
	"github.com/SAP-F-2025/assignment-service/internal/events"
	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories/memory"
	"github.com/SAP-F-2025/assignment-service/internal/services"
	"github.com/SAP-F-2025/assignment-service/internal/storage"
	"github.com/SAP-F-2025/assignment-service/internal/utils"
	"github.com/SAP-F-2025/assignment-service/internal/validator"
)

// fakeTokens maps a bearer token to its claims.
type fakeTokens map[string]*casdoorsdk.Claims

func (f fakeTokens) ParseJwtToken(token string) (*casdoorsdk.Claims, error) {
	claims, ok := f[token]
	if !ok {
		return nil, errors.New("token is expired")
	}
	return claims, nil
}

type testServer struct {
	router    *gin.Engine
	repo      *memory.Repository
	publisher *events.MockEventPublisher
	files     *storage.MemoryStore
	tokens    fakeTokens
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	slogLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	logger := utils.NewSlogLogger(slogLogger)

	ts := &testServer{
		repo:      memory.New(),
		publisher: events.NewMockEventPublisher(slogLogger),
		files:     storage.NewMemoryStore("http://files.test"),
		tokens:    fakeTokens{},
	}

	serviceManager := services.NewDefaultServiceManager(services.Dependencies{
		Repo:      ts.repo,
		Cache:     cache.NewCacheManager(client),
		Publisher: ts.publisher,
		Files:     ts.files,
		Logger:    slogLogger,
		Validator: validator.New(),
	})
	require.NoError(t, serviceManager.Initialize(context.Background()))

	metrics := NewMetrics()
	ts.router = gin.New()
	SetupMiddleware(ts.router, logger, MiddlewareConfig{
		AllowedOrigins: []string{"http://app.test"},
		Metrics:        metrics,
	})
	NewHandlerManager(serviceManager, ts.tokens, logger, metrics).SetupRoutes(ts.router)
	return ts
}

// addUser stores a profile and issues the token "token-<id>" for it.
func (ts *testServer) addUser(t *testing.T, id string, role models.UserRole, verified bool) string {
	t.Helper()
	user := &models.User{ID: id, FullName: "User " + id, Email: id + "@example.com", Verified: verified}
	require.NoError(t, ts.repo.User().Create(context.Background(), user, role))
	return ts.issueToken(id, casdoorsdk.User{Id: id, Name: id, Email: user.Email})
}

func (ts *testServer) issueToken(id string, user casdoorsdk.User) string {
	token := "token-" + id
	ts.tokens[token] = &casdoorsdk.Claims{User: user}
	return token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

func jsonStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, w.Body.String())
	require.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

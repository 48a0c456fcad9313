package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/export"
	"shareit/internal/models"
	"shareit/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	ts     *httptest.Server
	store  *database.MemoryStore
	server *HTTPServer
}

type apiOption func(cfg *config.APIConfig, quota *config.QuotaConfig, svc *Services)

func newTestAPI(t *testing.T, opts ...apiOption) *testAPI {
	t.Helper()
	logger := zerolog.New(io.Discard)
	store := database.NewMemoryStore()

	bookings := service.NewBookingService(store, nil, config.BookingConfig{}, &logger)
	svc := Services{
		Bookings: bookings,
		Items:    service.NewItemService(store, &logger),
		Comments: service.NewCommentService(store, nil, &logger),
		Users:    service.NewUserService(store, &logger),
		Requests: service.NewRequestService(store, &logger),
		Exporter: export.NewBookingExporter(bookings, &logger),
		Health:   store,
	}
	cfg := config.APIConfig{
		Enabled: true,
		HTTP:    config.APIHTTPConfig{Enabled: true, Port: 0},
	}
	var quota config.QuotaConfig
	for _, opt := range opts {
		opt(&cfg, &quota, &svc)
	}

	server := NewHTTPServer(&cfg, quota, svc, &logger)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	return &testAPI{ts: ts, store: store, server: server}
}

// do sends a JSON request as user uid (0 means no identity header) and returns
// the status and raw body.
func (a *testAPI) do(t *testing.T, method, path string, uid int64, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, a.ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if uid != 0 {
		req.Header.Set(models.HeaderSharerUserID, strconv.FormatInt(uid, 10))
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func (a *testAPI) createUser(t *testing.T, name, email string) models.UserView {
	t.Helper()
	code, body := a.do(t, http.MethodPost, "/users", 0, map[string]string{"name": name, "email": email})
	require.Equal(t, http.StatusCreated, code, string(body))
	return decode[models.UserView](t, body)
}

func (a *testAPI) createItem(t *testing.T, ownerID int64, name string, available bool) models.ItemView {
	t.Helper()
	code, body := a.do(t, http.MethodPost, "/items", ownerID, map[string]any{
		"name": name, "description": name + " for rent", "available": available,
	})
	require.Equal(t, http.StatusCreated, code, string(body))
	return decode[models.ItemView](t, body)
}

func wireTime(t time.Time) string {
	return t.UTC().Format(models.WireTimeLayout)
}

type failingChecker struct{}

func (failingChecker) Ping(context.Context) error { return errors.New("database is locked") }

type errLimiter struct{}

func (errLimiter) Allow(context.Context, string, int, time.Duration) (bool, error) {
	return false, errors.New("redis: connection refused")
}

func (errLimiter) Ping(context.Context) error { return errors.New("redis: connection refused") }

package routes

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	database "blood_donation_backend/internals/databases"
	"blood_donation_backend/internals/databases/dbtest"
	"blood_donation_backend/internals/metrics"
)

func newApp(t *testing.T) (*fiber.App, dbtest.Env, *metrics.Recorder) {
	t.Helper()
	env := dbtest.Open(t)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	BaseRoutes(app, env.DB, reg)
	return app, env, m
}

func healthz(t *testing.T, app *fiber.App) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/healthz", nil))
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.StatusCode, body
}

func TestHealthzReportsDatabase(t *testing.T) {
	app, env, _ := newApp(t)

	code, body := healthz(t, app)
	if code != fiber.StatusOK || body["status"] != "OK" || body["database"] != "Connected" {
		t.Fatalf("healthy: code=%d body=%v", code, body)
	}

	database.Close(env.DB)
	code, body = healthz(t, app)
	if code != fiber.StatusServiceUnavailable || body["status"] != "DOWN" {
		t.Fatalf("closed db: code=%d body=%v", code, body)
	}
}

func TestMetricsServesRegistry(t *testing.T) {
	app, _, m := newApp(t)
	m.NotificationEmitted(3)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/metrics", nil))
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), "blood_donation_notifications_emitted_total 3") {
		t.Fatalf("metrics body lacks emitted counter:\n%s", raw)
	}
}

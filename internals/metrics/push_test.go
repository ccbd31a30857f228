package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestPushReplacesCommandGroup(t *testing.T) {
	var method, path, body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		method, path, body = r.Method, r.URL.Path, string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	r := New(reg)
	r.NotificationEmitted(2)
	r.Transition("Pending", "Approved")

	if err := Push(context.Background(), srv.URL, "blood_donation", "submit", reg); err != nil {
		t.Fatalf("push: %v", err)
	}
	if method != http.MethodPut {
		t.Fatalf("method = %s, want PUT", method)
	}
	if path != "/metrics/job/blood_donation/command/submit" {
		t.Fatalf("path = %s", path)
	}
	for _, name := range []string{"blood_donation_notifications_emitted_total", "blood_donation_blood_request_transitions_total"} {
		if !strings.Contains(body, name) {
			t.Fatalf("pushed body lacks %s", name)
		}
	}
}

func TestPushReportsGatewayErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no space left", http.StatusInternalServerError)
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	New(reg).NotificationEmitted(1)
	if err := Push(context.Background(), srv.URL, "blood_donation", "fulfill", reg); err == nil {
		t.Fatalf("expected error from a failing gateway")
	}
}

package metrics

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInventoryCollectorReportsSnapshot(t *testing.T) {
	calls := 0
	c := NewInventoryCollector(func(ctx context.Context) (Snapshot, error) {
		calls++
		if _, ok := ctx.Deadline(); !ok {
			t.Errorf("snapshot context has no deadline")
		}
		return Snapshot{
			Stock: []StockLevel{
				{BankID: 1, Group: "O-", Units: 7},
				{BankID: 2, Group: "A+", Units: 0},
			},
			Requests: map[string]int64{"Pending": 3, "Fulfilled": 1},
		}, nil
	}, time.Second)

	want := `
# HELP blood_donation_blood_requests Blood requests per status.
# TYPE blood_donation_blood_requests gauge
blood_donation_blood_requests{status="Fulfilled"} 1
blood_donation_blood_requests{status="Pending"} 3
# HELP blood_donation_stock_units_available Blood units on hand per bank and blood group.
# TYPE blood_donation_stock_units_available gauge
blood_donation_stock_units_available{bank_id="1",blood_group="O-"} 7
blood_donation_stock_units_available{bank_id="2",blood_group="A+"} 0
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(want)); err != nil {
		t.Fatalf("collect: %v", err)
	}
	if calls != 1 {
		t.Fatalf("snapshot calls = %d, want 1", calls)
	}
}

func TestInventoryCollectorFailsScrapeOnError(t *testing.T) {
	c := NewInventoryCollector(func(context.Context) (Snapshot, error) {
		return Snapshot{}, errors.New("database is down")
	}, 0)

	reg := prometheus.NewRegistry()
	reg.MustRegister(c)
	if _, err := reg.Gather(); err == nil || !strings.Contains(err.Error(), "database is down") {
		t.Fatalf("gather error = %v", err)
	}
}

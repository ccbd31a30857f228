package metrics

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StockLevel is one (bank, blood group) row as seen at scrape time.
type StockLevel struct {
	BankID uint
	Group  string
	Units  int
}

// Snapshot is the inventory read for one scrape.
type Snapshot struct {
	Stock    []StockLevel
	Requests map[string]int64 // by status
}

type SnapshotFunc func(ctx context.Context) (Snapshot, error)

type inventoryCollector struct {
	snapshot SnapshotFunc
	timeout  time.Duration
	stock    *prometheus.Desc
	requests *prometheus.Desc
}

// NewInventoryCollector reports stock units and request counts by reading fn
// on every scrape. A failed read makes the scrape fail rather than report
// stale numbers.
func NewInventoryCollector(fn SnapshotFunc, timeout time.Duration) prometheus.Collector {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &inventoryCollector{
		snapshot: fn,
		timeout:  timeout,
		stock: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "stock_units_available"),
			"Blood units on hand per bank and blood group.",
			[]string{"bank_id", "blood_group"}, nil,
		),
		requests: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "blood_requests"),
			"Blood requests per status.",
			[]string{"status"}, nil,
		),
	}
}

func (c *inventoryCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.stock
	ch <- c.requests
}

func (c *inventoryCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	snap, err := c.snapshot(ctx)
	if err != nil {
		log.Printf("[METRICS] inventory snapshot failed: %v", err)
		ch <- prometheus.NewInvalidMetric(c.stock, err)
		return
	}
	for _, s := range snap.Stock {
		ch <- prometheus.MustNewConstMetric(c.stock, prometheus.GaugeValue, float64(s.Units),
			strconv.FormatUint(uint64(s.BankID), 10), s.Group)
	}
	for status, n := range snap.Requests {
		ch <- prometheus.MustNewConstMetric(c.requests, prometheus.GaugeValue, float64(n), status)
	}
}

// Package probe implements the health indicators run by the health service.
package probe

import (
	"context"
	"fmt"
	"net/http"
	"runtime"

	"passin/internal/domain"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type databaseIndicator struct {
	name string
	db   Pinger
}

// NewDatabase returns an indicator that pings the store.
func NewDatabase(name string, db Pinger) domain.HealthIndicator {
	return &databaseIndicator{name: name, db: db}
}

func (d *databaseIndicator) Name() string { return d.name }

func (d *databaseIndicator) Check(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

type httpIndicator struct {
	name   string
	url    string
	client *http.Client
}

// NewHTTP returns an indicator that GETs url and expects a non-5xx answer.
func NewHTTP(name, url string, client *http.Client) domain.HealthIndicator {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpIndicator{name: name, url: url, client: client}
}

func (h *httpIndicator) Name() string { return h.name }

func (h *httpIndicator) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("ping %s: %w", h.url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("ping %s: status %d", h.url, resp.StatusCode)
	}
	return nil
}

type heapIndicator struct {
	name     string
	maxBytes uint64
	read     func() uint64
}

// NewHeap returns an indicator that fails when the Go heap in use exceeds maxBytes.
func NewHeap(name string, maxBytes uint64) domain.HealthIndicator {
	return &heapIndicator{name: name, maxBytes: maxBytes, read: heapInUse}
}

func heapInUse() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapInuse
}

func (h *heapIndicator) Name() string { return h.name }

func (h *heapIndicator) Check(context.Context) error {
	if used := h.read(); used > h.maxBytes {
		return fmt.Errorf("used heap exceeded the set threshold: %d > %d bytes", used, h.maxBytes)
	}
	return nil
}

type diskIndicator struct {
	name           string
	path           string
	minFreePercent float64
	stat           func(path string) (free, total uint64, err error)
}

// NewDisk returns an indicator that fails when free space on path drops below minFreePercent.
func NewDisk(name, path string, minFreePercent float64) domain.HealthIndicator {
	return &diskIndicator{name: name, path: path, minFreePercent: minFreePercent, stat: diskUsage}
}

func (d *diskIndicator) Name() string { return d.name }

func (d *diskIndicator) Check(context.Context) error {
	free, total, err := d.stat(d.path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", d.path, err)
	}
	if total == 0 {
		return fmt.Errorf("stat %s: filesystem reports zero size", d.path)
	}
	pct := float64(free) / float64(total) * 100
	if pct < d.minFreePercent {
		return fmt.Errorf("free storage below threshold: %.1f%% < %.1f%%", pct, d.minFreePercent)
	}
	return nil
}

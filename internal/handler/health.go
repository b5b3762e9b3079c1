package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/segyhp/lending-engine/pkg/response"
)

// DBPinger is satisfied by *sqlx.DB
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// CachePinger is satisfied by cache.Store
type CachePinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db      DBPinger
	cache   CachePinger
	timeout time.Duration
}

func NewHealthHandler(db DBPinger, cache CachePinger, timeout time.Duration) *HealthHandler {
	return &HealthHandler{
		db:      db,
		cache:   cache,
		timeout: timeout,
	}
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Health performs a basic health check
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	response.Success(w, status)
}

// Ready performs readiness check including database and redis connectivity
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	check := func(name string, ping func(context.Context) error) {
		g.Go(func() error {
			result := "ok"
			if err := ping(ctx); err != nil {
				result = "failed: " + err.Error()
			}

			mu.Lock()
			defer mu.Unlock()
			status.Checks[name] = result
			if result != "ok" {
				status.Status = "error"
			}
			return nil
		})
	}

	check("database", h.db.PingContext)
	check("redis", h.cache.Ping)
	_ = g.Wait()

	if status.Status == "error" {
		response.JSON(w, http.StatusServiceUnavailable, status)
		return
	}

	response.Success(w, status)
}

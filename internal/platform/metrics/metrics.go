// Package metrics provides observability for the simulation server.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers performance and epidemic metrics.
type Collector struct {
	// Tick metrics
	TickCount      int64
	TickLatencySum int64 // nanoseconds
	TickLatencyMax int64
	LastTickTime   time.Time

	// Epidemic metrics
	NewCases        int64
	Recoveries      int64
	Deaths          int64
	Vaccinations    int64
	CurrentInfected int64
	RunsStarted     int64
	RunsFinished    int64

	// History store metrics
	RowsPersisted  int64
	RowWriteLatSum int64
	RowWriteLatMax int64
	RowWriteErrors int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = NewCollector()

// NewCollector creates an empty collector. Servers use the global one from Get.
func NewCollector() *Collector {
	return &Collector{StartTime: time.Now()}
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

func storeMax(addr *int64, v int64) {
	for {
		cur := atomic.LoadInt64(addr)
		if v <= cur || atomic.CompareAndSwapInt64(addr, cur, v) {
			return
		}
	}
}

// RecordTick records a tick cycle completion.
func (c *Collector) RecordTick(latency time.Duration) {
	atomic.AddInt64(&c.TickCount, 1)
	atomic.AddInt64(&c.TickLatencySum, int64(latency))
	storeMax(&c.TickLatencyMax, int64(latency))

	c.mu.Lock()
	c.LastTickTime = time.Now()
	c.mu.Unlock()
}

// RecordEpidemic adds the transitions of one tick and sets the infected gauge.
func (c *Collector) RecordEpidemic(newCases, recoveries, deaths, vaccinations, infected int) {
	atomic.AddInt64(&c.NewCases, int64(newCases))
	atomic.AddInt64(&c.Recoveries, int64(recoveries))
	atomic.AddInt64(&c.Deaths, int64(deaths))
	atomic.AddInt64(&c.Vaccinations, int64(vaccinations))
	atomic.StoreInt64(&c.CurrentInfected, int64(infected))
}

// RecordRun records a run starting (started) or finishing (!started).
func (c *Collector) RecordRun(started bool) {
	if started {
		atomic.AddInt64(&c.RunsStarted, 1)
	} else {
		atomic.AddInt64(&c.RunsFinished, 1)
	}
}

// RecordRowWrite records a history row write to the database.
func (c *Collector) RecordRowWrite(latency time.Duration, err error) {
	if err != nil {
		atomic.AddInt64(&c.RowWriteErrors, 1)
		return
	}
	atomic.AddInt64(&c.RowsPersisted, 1)
	atomic.AddInt64(&c.RowWriteLatSum, int64(latency))
	storeMax(&c.RowWriteLatMax, int64(latency))
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	lastTick := c.LastTickTime
	c.mu.RUnlock()

	tickCount := atomic.LoadInt64(&c.TickCount)
	rows := atomic.LoadInt64(&c.RowsPersisted)

	// Calculate averages
	var tickAvg, rowAvg float64
	if tickCount > 0 {
		tickAvg = float64(atomic.LoadInt64(&c.TickLatencySum)) / float64(tickCount) / 1e6 // ms
	}
	if rows > 0 {
		rowAvg = float64(atomic.LoadInt64(&c.RowWriteLatSum)) / float64(rows) / 1e6
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"tick": map[string]interface{}{
			"count":          tickCount,
			"avg_latency_ms": tickAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.TickLatencyMax)) / 1e6,
			"last_tick":      lastTick.Format(time.RFC3339),
		},

		"epidemic": map[string]interface{}{
			"new_cases":        atomic.LoadInt64(&c.NewCases),
			"recoveries":       atomic.LoadInt64(&c.Recoveries),
			"deaths":           atomic.LoadInt64(&c.Deaths),
			"vaccinations":     atomic.LoadInt64(&c.Vaccinations),
			"current_infected": atomic.LoadInt64(&c.CurrentInfected),
			"runs_started":     atomic.LoadInt64(&c.RunsStarted),
			"runs_finished":    atomic.LoadInt64(&c.RunsFinished),
		},

		"history": map[string]interface{}{
			"rows_persisted":   rows,
			"avg_write_lat_ms": rowAvg,
			"max_write_lat_ms": float64(atomic.LoadInt64(&c.RowWriteLatMax)) / 1e6,
			"errors":           atomic.LoadInt64(&c.RowWriteErrors),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.HandlerFunc {
	return collector.Handler()
}

// PrometheusHandler returns the global metrics in Prometheus format.
func PrometheusHandler() http.HandlerFunc {
	return collector.PrometheusHandler()
}

// Handler serves c as JSON.
func (c *Collector) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		json.NewEncoder(w).Encode(c.Snapshot())
	}
}

// PrometheusHandler serves c in Prometheus text format.
func (c *Collector) PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		counter := func(name, help string, v int64) {
			fmt.Fprintf(w, "# HELP %s %s\n", name, help)
			fmt.Fprintf(w, "# TYPE %s counter\n", name)
			fmt.Fprintf(w, "%s %d\n\n", name, v)
		}

		// Tick metrics
		counter("epicurves_tick_count", "Total tick cycles", atomic.LoadInt64(&c.TickCount))

		fmt.Fprintf(w, "# HELP epicurves_tick_latency_max_ms Maximum tick latency\n")
		fmt.Fprintf(w, "# TYPE epicurves_tick_latency_max_ms gauge\n")
		fmt.Fprintf(w, "epicurves_tick_latency_max_ms %.2f\n\n", float64(atomic.LoadInt64(&c.TickLatencyMax))/1e6)

		// Epidemic metrics
		counter("epicurves_new_cases_total", "Total infections", atomic.LoadInt64(&c.NewCases))
		counter("epicurves_recoveries_total", "Total recoveries", atomic.LoadInt64(&c.Recoveries))
		counter("epicurves_deaths_total", "Total deaths", atomic.LoadInt64(&c.Deaths))
		counter("epicurves_vaccinations_total", "Total vaccinations administered", atomic.LoadInt64(&c.Vaccinations))

		fmt.Fprintf(w, "# HELP epicurves_infected Agents currently infected\n")
		fmt.Fprintf(w, "# TYPE epicurves_infected gauge\n")
		fmt.Fprintf(w, "epicurves_infected %d\n\n", atomic.LoadInt64(&c.CurrentInfected))

		// History store metrics
		counter("epicurves_rows_persisted", "Total history rows written", atomic.LoadInt64(&c.RowsPersisted))
		counter("epicurves_row_write_errors", "Total history row write errors", atomic.LoadInt64(&c.RowWriteErrors))

		// WebSocket metrics
		fmt.Fprintf(w, "# HELP epicurves_ws_connections Active WebSocket connections\n")
		fmt.Fprintf(w, "# TYPE epicurves_ws_connections gauge\n")
		fmt.Fprintf(w, "epicurves_ws_connections %d\n\n", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP epicurves_ws_messages_total Total WebSocket messages\n")
		fmt.Fprintf(w, "# TYPE epicurves_ws_messages_total counter\n")
		fmt.Fprintf(w, "epicurves_ws_messages_total{direction=\"in\"} %d\n", atomic.LoadInt64(&c.WSMessagesIn))
		fmt.Fprintf(w, "epicurves_ws_messages_total{direction=\"out\"} %d\n", atomic.LoadInt64(&c.WSMessagesOut))
	}
}

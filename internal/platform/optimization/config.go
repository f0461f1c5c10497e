// Package optimization provides buffer and pool tuning for the server.
package optimization

import (
	"runtime"
	"time"
)

// Config holds tuned parameters for the websocket hub and the history store.
type Config struct {
	// Channel buffer sizes
	BroadcastBuffer  int
	ClientSendBuffer int

	// Connection pools
	DBMaxOpenConns int
	DBMaxIdleConns int

	// Event streaming
	EventPollInterval time.Duration

	// Limits
	MaxClients int
	// HistoryLimit caps the snapshots the hub keeps for replay; 0 keeps all.
	// The engine history stays complete and is served by /api/history.
	HistoryLimit int
}

// DefaultConfig returns sensible defaults for production.
func DefaultConfig() *Config {
	return &Config{
		BroadcastBuffer:  256, // Snapshots queued for fan-out
		ClientSendBuffer: 64,  // Per WebSocket

		// SQLite has one writer; readers share the same handle
		DBMaxOpenConns: 1,
		DBMaxIdleConns: 1,

		EventPollInterval: 200 * time.Millisecond,

		MaxClients:   runtime.NumCPU() * 50,
		HistoryLimit: 10000,
	}
}

// LowResourceConfig returns minimal settings for development.
func LowResourceConfig() *Config {
	return &Config{
		BroadcastBuffer:   16,
		ClientSendBuffer:  8,
		DBMaxOpenConns:    1,
		DBMaxIdleConns:    1,
		EventPollInterval: time.Second,
		MaxClients:        20,
		HistoryLimit:      1000,
	}
}

// Recommendations provides suggestions based on observed metrics.
type Recommendations struct {
	IncreaseBroadcastBuffer bool
	IncreaseClientBuffer    bool
	SlowEventPolling        bool
	Notes                   []string
}

// Analyze examines a metrics snapshot and returns tuning recommendations.
func Analyze(metrics map[string]interface{}) *Recommendations {
	rec := &Recommendations{
		Notes: make([]string, 0),
	}

	// Check tick latency
	if tick, ok := metrics["tick"].(map[string]interface{}); ok {
		if maxLat, ok := tick["max_latency_ms"].(float64); ok && maxLat > 100 {
			rec.SlowEventPolling = true
			rec.Notes = append(rec.Notes, "Tick latency exceeds 100ms - poll the event log less often")
		}
	}

	// Check history write errors
	if history, ok := metrics["history"].(map[string]interface{}); ok {
		if errors, ok := history["errors"].(int64); ok && errors > 0 {
			rec.IncreaseBroadcastBuffer = true
			rec.Notes = append(rec.Notes, "History write errors detected - check the database file")
		}
	}

	// Check WebSocket backpressure
	if ws, ok := metrics["websocket"].(map[string]interface{}); ok {
		if errors, ok := ws["errors"].(int64); ok && errors > 0 {
			rec.IncreaseClientBuffer = true
			rec.Notes = append(rec.Notes, "WebSocket errors detected - increase client send buffer")
		}
	}

	return rec
}

// ApplyRecommendations modifies config based on recommendations.
func ApplyRecommendations(config *Config, rec *Recommendations) *Config {
	if rec.IncreaseBroadcastBuffer {
		config.BroadcastBuffer *= 2
	}
	if rec.IncreaseClientBuffer {
		config.ClientSendBuffer *= 2
	}
	if rec.SlowEventPolling {
		config.EventPollInterval *= 2
	}
	return config
}

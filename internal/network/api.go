// Package network exposes a running simulation over HTTP and WebSocket.
//
// The JSON API reads the engine between ticks through engine.Runner.View;
// the hub pushes every snapshot to connected viewers.
package network

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/MRamiBalles/epicurves/internal/domain/agent"
	"github.com/MRamiBalles/epicurves/internal/domain/scenario"
	"github.com/MRamiBalles/epicurves/internal/engine"
	"github.com/MRamiBalles/epicurves/internal/events"
	"github.com/MRamiBalles/epicurves/internal/infra/storage"
	"github.com/MRamiBalles/epicurves/internal/platform/logger"
	"github.com/MRamiBalles/epicurves/internal/platform/metrics"
	"github.com/MRamiBalles/epicurves/internal/topology"
)

// APIHandler provides the read-only simulation API.
type APIHandler struct {
	runner *engine.Runner
	repo   storage.HistoryRepository // nil disables /api/runs
	logger *logger.Logger
}

// NewAPIHandler creates a new API handler. repo may be nil.
func NewAPIHandler(r *engine.Runner, repo storage.HistoryRepository, log *logger.Logger) *APIHandler {
	return &APIHandler{
		runner: r,
		repo:   repo,
		logger: log,
	}
}

// StatusResponse describes the current state of the run.
type StatusResponse struct {
	Mode       scenario.Mode   `json:"mode"`
	Seed       uint64          `json:"seed"`
	Tick       int             `json:"tick"`
	Draws      uint64          `json:"draws"`
	Population int             `json:"population"`
	Done       bool            `json:"done"`
	Snapshot   engine.Snapshot `json:"snapshot"`
}

// GraphResponse is the static layout a renderer needs.
type GraphResponse struct {
	Mode          scenario.Mode   `json:"mode"`
	Width         int             `json:"width,omitempty"`
	Height        int             `json:"height,omitempty"`
	Edges         []topology.Edge `json:"edges,omitempty"`
	RecoveryZone  []agent.Cell    `json:"recovery_zone,omitempty"`
	InfectionZone []agent.Cell    `json:"infection_zone,omitempty"`
}

// AgentDetail is one agent with its risk profile.
type AgentDetail struct {
	engine.AgentView
	Risk agent.RiskProfile `json:"risk"`
}

// EventsResponse is the API response for the event log.
type EventsResponse struct {
	TotalEvents int               `json:"total_events"`
	GeneratedAt string            `json:"generated_at"`
	Events      []events.SimEvent `json:"events"`
}

// HandleStatus returns the latest snapshot and run metadata.
// GET /api/status
func (h *APIHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if !h.allowGet(w, r) {
		return
	}
	var resp StatusResponse
	h.runner.View(func(e *engine.Engine) {
		resp = StatusResponse{
			Mode:       e.Config().Mode,
			Seed:       e.Seed(),
			Tick:       e.Tick(),
			Draws:      e.Draws(),
			Population: e.Population(),
			Done:       e.Done(),
			Snapshot:   e.Snapshot(),
		}
	})
	h.writeJSON(w, resp)
}

// HandleConfig returns the configuration the engine was built with.
// GET /api/config
func (h *APIHandler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	if !h.allowGet(w, r) {
		return
	}
	var cfg scenario.Config
	h.runner.View(func(e *engine.Engine) { cfg = e.Config() })
	h.writeJSON(w, cfg)
}

// HandleHistory returns the tick table.
// GET /api/history?from=N
func (h *APIHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if !h.allowGet(w, r) {
		return
	}
	from, ok := h.intParam(w, r, "from", 0)
	if !ok {
		return
	}
	var rows []engine.Snapshot
	h.runner.View(func(e *engine.Engine) { rows = e.History().Since(from) })
	h.writeJSON(w, rows)
}

// HandleAgents returns every live agent, or one agent with its risk profile.
// GET /api/agents[?id=N]
func (h *APIHandler) HandleAgents(w http.ResponseWriter, r *http.Request) {
	if !h.allowGet(w, r) {
		return
	}
	if r.URL.Query().Get("id") == "" {
		var views []engine.AgentView
		h.runner.View(func(e *engine.Engine) { views = e.Agents() })
		h.writeJSON(w, views)
		return
	}

	id, ok := h.intParam(w, r, "id", 0)
	if !ok {
		return
	}
	var (
		detail AgentDetail
		found  bool
	)
	h.runner.View(func(e *engine.Engine) {
		detail.AgentView, found = e.Agent(agent.ID(id))
		if found {
			detail.Risk, _ = e.Risk(agent.ID(id))
		}
	})
	if !found {
		h.jsonError(w, "Agent not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, detail)
}

// HandleRecap returns an agent's record and timeline rebuilt from the event
// log. Dead agents are included.
// GET /api/agents/recap?id=N[&since=T]
func (h *APIHandler) HandleRecap(w http.ResponseWriter, r *http.Request) {
	if !h.allowGet(w, r) {
		return
	}
	log := h.eventLog()
	if log == nil {
		h.jsonError(w, "Event log disabled", http.StatusServiceUnavailable)
		return
	}
	if r.URL.Query().Get("id") == "" {
		h.jsonError(w, "Missing id", http.StatusBadRequest)
		return
	}
	id, ok := h.intParam(w, r, "id", 0)
	if !ok {
		return
	}
	since, ok := h.intParam(w, r, "since", 0)
	if !ok {
		return
	}

	var population int
	h.runner.View(func(e *engine.Engine) { population = e.Population() })
	if id >= population {
		h.jsonError(w, "Agent not found", http.StatusNotFound)
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"state":    events.RebuildAgentState(log, agent.ID(id)),
		"timeline": events.GenerateRecap(log, agent.ID(id), since),
	})
}

// HandleGraph returns the topology layout.
// GET /api/graph
func (h *APIHandler) HandleGraph(w http.ResponseWriter, r *http.Request) {
	if !h.allowGet(w, r) {
		return
	}
	var resp GraphResponse
	h.runner.View(func(e *engine.Engine) {
		cfg := e.Config()
		resp.Mode = cfg.Mode
		if cfg.Mode == scenario.ModeGrid {
			resp.Width, resp.Height = cfg.Grid.Width, cfg.Grid.Height
		}
		resp.Edges = e.Edges()
		resp.RecoveryZone, resp.InfectionZone = e.Zones()
	})
	h.writeJSON(w, resp)
}

// HandleEvents returns the event log, optionally filtered.
// GET /api/events?since=SEQ&tick=N&agent=ID&type=INFECTION
func (h *APIHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if !h.allowGet(w, r) {
		return
	}
	log := h.eventLog()
	if log == nil {
		h.jsonError(w, "Event log disabled", http.StatusServiceUnavailable)
		return
	}

	since, ok := h.intParam(w, r, "since", 0)
	if !ok {
		return
	}
	q := r.URL.Query()
	tickStr, agentStr, eventType := q.Get("tick"), q.Get("agent"), q.Get("type")
	tick, err := strconv.Atoi(tickStr)
	if tickStr != "" && err != nil {
		h.jsonError(w, "Invalid tick", http.StatusBadRequest)
		return
	}
	agentID, err := strconv.Atoi(agentStr)
	if agentStr != "" && err != nil {
		h.jsonError(w, "Invalid agent", http.StatusBadRequest)
		return
	}

	filtered := make([]events.SimEvent, 0)
	for _, e := range log.Since(since) {
		if tickStr != "" && e.Tick != tick {
			continue
		}
		if agentStr != "" && e.AgentID != agent.ID(agentID) && e.SourceID != agent.ID(agentID) {
			continue
		}
		if eventType != "" && string(e.Type) != eventType {
			continue
		}
		filtered = append(filtered, e)
	}

	h.writeJSON(w, EventsResponse{
		TotalEvents: len(filtered),
		GeneratedAt: time.Now().Format(time.RFC3339),
		Events:      filtered,
	})
}

// HandleEventStats returns event counts by type.
// GET /api/events/stats
func (h *APIHandler) HandleEventStats(w http.ResponseWriter, r *http.Request) {
	if !h.allowGet(w, r) {
		return
	}
	log := h.eventLog()
	if log == nil {
		h.jsonError(w, "Event log disabled", http.StatusServiceUnavailable)
		return
	}

	allEvents := log.Replay()
	stats := map[string]int{
		"total_events": len(allEvents),
	}
	for _, e := range allEvents {
		stats[string(e.Type)]++
	}

	h.writeJSON(w, map[string]interface{}{
		"generated_at": time.Now().Format(time.RFC3339),
		"stats":        stats,
	})
}

// HandleRuns lists persisted runs, or the rows of one run.
// GET /api/runs[?id=N&from=T]
func (h *APIHandler) HandleRuns(w http.ResponseWriter, r *http.Request) {
	if !h.allowGet(w, r) {
		return
	}
	if h.repo == nil {
		h.jsonError(w, "History store disabled", http.StatusServiceUnavailable)
		return
	}

	if r.URL.Query().Get("id") == "" {
		runs, err := h.repo.ListRuns(r.Context())
		if err != nil {
			h.logger.Error("Failed to list runs", "err", err)
			h.jsonError(w, "Failed to list runs", http.StatusInternalServerError)
			return
		}
		h.writeJSON(w, runs)
		return
	}

	id, ok := h.intParam(w, r, "id", 0)
	if !ok {
		return
	}
	from, ok := h.intParam(w, r, "from", 0)
	if !ok {
		return
	}
	run, err := h.repo.GetRun(r.Context(), int64(id))
	if err != nil {
		h.logger.Error("Failed to load run", "run", id, "err", err)
		h.jsonError(w, "Failed to load run", http.StatusInternalServerError)
		return
	}
	if run == nil {
		h.jsonError(w, "Run not found", http.StatusNotFound)
		return
	}
	rows, err := h.repo.GetRows(r.Context(), run.ID, from)
	if err != nil {
		h.logger.Error("Failed to load rows", "run", id, "err", err)
		h.jsonError(w, "Failed to load rows", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, map[string]interface{}{
		"run":  run,
		"rows": rows,
	})
}

// RegisterRoutes sets up the API, WebSocket and metrics routes.
func (h *APIHandler) RegisterRoutes(mux *http.ServeMux, hub *Hub) {
	mux.HandleFunc("/api/status", h.HandleStatus)
	mux.HandleFunc("/api/config", h.HandleConfig)
	mux.HandleFunc("/api/history", h.HandleHistory)
	mux.HandleFunc("/api/agents", h.HandleAgents)
	mux.HandleFunc("/api/agents/recap", h.HandleRecap)
	mux.HandleFunc("/api/graph", h.HandleGraph)
	mux.HandleFunc("/api/events", h.HandleEvents)
	mux.HandleFunc("/api/events/stats", h.HandleEventStats)
	mux.HandleFunc("/api/runs", h.HandleRuns)
	mux.HandleFunc("/metrics", metrics.Handler())
	mux.HandleFunc("/metrics/prometheus", metrics.PrometheusHandler())
	if hub != nil {
		mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
			ServeWS(hub, w, r)
		})
	}
}

func (h *APIHandler) eventLog() *events.EventLog {
	var log *events.EventLog
	h.runner.View(func(e *engine.Engine) { log = e.Events() })
	return log
}

func (h *APIHandler) allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		h.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// intParam parses a non-negative integer query parameter.
func (h *APIHandler) intParam(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		h.jsonError(w, "Invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return v, true
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "err", err)
	}
}

func (h *APIHandler) jsonError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

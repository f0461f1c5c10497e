package network

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/MRamiBalles/epicurves/internal/domain/scenario"
	"github.com/MRamiBalles/epicurves/internal/engine"
	"github.com/MRamiBalles/epicurves/internal/events"
	"github.com/MRamiBalles/epicurves/internal/infra/storage"
	"github.com/MRamiBalles/epicurves/internal/platform/logger"
	"github.com/MRamiBalles/epicurves/internal/platform/metrics"
)

// finishedRunner builds an engine, runs it for ticks and returns the runner.
func finishedRunner(t *testing.T, cfg scenario.Config, ticks int, sinks ...engine.TickSink) *engine.Runner {
	t.Helper()
	e, err := engine.New(cfg, engine.WithEventLog(events.NewEventLog()))
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	r := engine.NewRunner(e, logger.NewNop(), 0, ticks, sinks...)
	r.SetMetrics(metrics.NewCollector())
	if _, err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return r
}

func networkConfig() scenario.Config {
	cfg := scenario.DefaultNetwork()
	cfg.EarlyStop = false
	return cfg
}

func serve(t *testing.T, h *APIHandler) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	h.RegisterRoutes(mux, nil)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, want int, out interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != want {
		t.Fatalf("GET %s: expected status %d, got %d", url, want, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
}

func TestStatusAndHistory(t *testing.T) {
	srv := serve(t, NewAPIHandler(finishedRunner(t, networkConfig(), 8), nil, logger.NewNop()))

	var status StatusResponse
	getJSON(t, srv.URL+"/api/status", http.StatusOK, &status)
	if status.Tick != 8 || status.Snapshot.Tick != 8 || status.Population != 200 || status.Mode != scenario.ModeNetwork {
		t.Errorf("Unexpected status %+v", status)
	}
	if status.Snapshot.Total() != 200 {
		t.Errorf("Expected snapshot to account for 200 agents, got %d", status.Snapshot.Total())
	}

	var rows []engine.Snapshot
	getJSON(t, srv.URL+"/api/history?from=5", http.StatusOK, &rows)
	if len(rows) != 4 || rows[0].Tick != 5 || rows[3].Tick != 8 {
		t.Errorf("Expected ticks 5..8, got %d rows", len(rows))
	}

	getJSON(t, srv.URL+"/api/history?from=-1", http.StatusBadRequest, nil)
	getJSON(t, srv.URL+"/api/history?from=abc", http.StatusBadRequest, nil)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := serve(t, NewAPIHandler(finishedRunner(t, networkConfig(), 1), nil, logger.NewNop()))

	resp, err := http.Post(srv.URL+"/api/status", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", resp.StatusCode)
	}
}

func TestAgentsEndpoint(t *testing.T) {
	srv := serve(t, NewAPIHandler(finishedRunner(t, networkConfig(), 3), nil, logger.NewNop()))

	var views []struct {
		ID    int    `json:"id"`
		State string `json:"state"`
		X     int    `json:"x"`
		Node  int    `json:"node"`
	}
	getJSON(t, srv.URL+"/api/agents", http.StatusOK, &views)
	if len(views) != 200 {
		t.Fatalf("Expected 200 agents, got %d", len(views))
	}
	if views[0].X != -1 || views[0].Node < 0 {
		t.Errorf("Expected network coordinates, got %+v", views[0])
	}

	var detail struct {
		ID   int `json:"id"`
		Risk struct {
			Age float64 `json:"age"`
		} `json:"risk"`
	}
	getJSON(t, srv.URL+"/api/agents?id=7", http.StatusOK, &detail)
	if detail.ID != 7 || detail.Risk.Age < 1 {
		t.Errorf("Unexpected agent detail %+v", detail)
	}

	getJSON(t, srv.URL+"/api/agents?id=5000", http.StatusNotFound, nil)
}

func TestGraphEndpoint(t *testing.T) {
	srv := serve(t, NewAPIHandler(finishedRunner(t, networkConfig(), 1), nil, logger.NewNop()))
	var graph GraphResponse
	getJSON(t, srv.URL+"/api/graph", http.StatusOK, &graph)
	if graph.Mode != scenario.ModeNetwork || len(graph.Edges) == 0 || graph.RecoveryZone != nil {
		t.Errorf("Unexpected network layout: mode %s, %d edges", graph.Mode, len(graph.Edges))
	}

	gridCfg := scenario.DefaultGrid()
	gridCfg.EarlyStop = false
	srv = serve(t, NewAPIHandler(finishedRunner(t, gridCfg, 1), nil, logger.NewNop()))
	graph = GraphResponse{}
	getJSON(t, srv.URL+"/api/graph", http.StatusOK, &graph)
	if graph.Width != gridCfg.Grid.Width || graph.Height != gridCfg.Grid.Height || graph.Edges != nil {
		t.Errorf("Unexpected grid layout %+v", graph)
	}
	side := gridCfg.Grid.RecoverySize
	if len(graph.RecoveryZone) != side*side {
		t.Errorf("Expected %d recovery cells, got %d", side*side, len(graph.RecoveryZone))
	}
}

func TestEventsEndpointFilters(t *testing.T) {
	srv := serve(t, NewAPIHandler(finishedRunner(t, networkConfig(), 6), nil, logger.NewNop()))

	var all EventsResponse
	getJSON(t, srv.URL+"/api/events", http.StatusOK, &all)
	if all.TotalEvents == 0 || all.TotalEvents != len(all.Events) {
		t.Fatalf("Expected events, got %d", all.TotalEvents)
	}

	var ticks EventsResponse
	getJSON(t, srv.URL+"/api/events?type=TICK_COMPLETED", http.StatusOK, &ticks)
	if ticks.TotalEvents != 6 {
		t.Errorf("Expected 6 tick events, got %d", ticks.TotalEvents)
	}

	var third EventsResponse
	getJSON(t, srv.URL+"/api/events?tick=3&type=TICK_COMPLETED", http.StatusOK, &third)
	if third.TotalEvents != 1 || third.Events[0].Tick != 3 {
		t.Errorf("Expected the tick 3 event, got %+v", third.Events)
	}

	var tail EventsResponse
	getJSON(t, srv.URL+"/api/events?since=1", http.StatusOK, &tail)
	if tail.TotalEvents != all.TotalEvents-1 || tail.Events[0].Seq != 1 {
		t.Errorf("Expected events from seq 1, got %d", tail.TotalEvents)
	}

	var stats struct {
		Stats map[string]int `json:"stats"`
	}
	getJSON(t, srv.URL+"/api/events/stats", http.StatusOK, &stats)
	if stats.Stats["total_events"] != all.TotalEvents || stats.Stats["TICK_COMPLETED"] != 6 || stats.Stats["RUN_FINISHED"] != 1 {
		t.Errorf("Unexpected stats %v", stats.Stats)
	}

	getJSON(t, srv.URL+"/api/events?agent=x", http.StatusBadRequest, nil)
}

func TestRecapEndpoint(t *testing.T) {
	srv := serve(t, NewAPIHandler(finishedRunner(t, networkConfig(), 6), nil, logger.NewNop()))

	var seeds EventsResponse
	getJSON(t, srv.URL+"/api/events?type=SEED_INFECTION", http.StatusOK, &seeds)
	if seeds.TotalEvents == 0 {
		t.Fatal("Expected seed infections")
	}
	id := int(seeds.Events[0].AgentID)

	var recap struct {
		State struct {
			AgentID    int    `json:"agent_id"`
			State      string `json:"state"`
			Infections int    `json:"infections"`
		} `json:"state"`
		Timeline []struct {
			Tick      int    `json:"tick"`
			EventType string `json:"event_type"`
			Impact    string `json:"impact"`
		} `json:"timeline"`
	}
	getJSON(t, srv.URL+"/api/agents/recap?id="+strconv.Itoa(id), http.StatusOK, &recap)
	if recap.State.AgentID != id || recap.State.Infections < 1 {
		t.Errorf("Unexpected rebuilt state %+v", recap.State)
	}
	if len(recap.Timeline) == 0 || recap.Timeline[0].EventType != "SEED_INFECTION" || recap.Timeline[0].Impact != "NEGATIVE" {
		t.Errorf("Expected the timeline to open with the seed infection, got %+v", recap.Timeline)
	}

	getJSON(t, srv.URL+"/api/agents/recap", http.StatusBadRequest, nil)
	getJSON(t, srv.URL+"/api/agents/recap?id=5000", http.StatusNotFound, nil)
}

func TestRunsEndpoint(t *testing.T) {
	srv := serve(t, NewAPIHandler(finishedRunner(t, networkConfig(), 1), nil, logger.NewNop()))
	getJSON(t, srv.URL+"/api/runs", http.StatusServiceUnavailable, nil)

	db, err := storage.InitSQLite(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("InitSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := storage.NewSQLiteHistoryRepository(db)

	cfg := networkConfig()
	sink, err := storage.NewHistorySink(context.Background(), repo, cfg, metrics.NewCollector())
	if err != nil {
		t.Fatalf("NewHistorySink: %v", err)
	}
	srv = serve(t, NewAPIHandler(finishedRunner(t, cfg, 4, sink), repo, logger.NewNop()))

	var runs []storage.Run
	getJSON(t, srv.URL+"/api/runs", http.StatusOK, &runs)
	if len(runs) != 1 || runs[0].ID != sink.RunID() || runs[0].Ticks != 4 {
		t.Fatalf("Unexpected runs %+v", runs)
	}

	var detail struct {
		Run  storage.Run       `json:"run"`
		Rows []engine.Snapshot `json:"rows"`
	}
	getJSON(t, srv.URL+"/api/runs?id=1&from=2", http.StatusOK, &detail)
	if len(detail.Rows) != 3 || detail.Rows[0].Tick != 2 {
		t.Errorf("Expected rows 2..4, got %d", len(detail.Rows))
	}

	getJSON(t, srv.URL+"/api/runs?id=99", http.StatusNotFound, nil)
}

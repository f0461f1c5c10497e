package network

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/MRamiBalles/epicurves/internal/engine"
	"github.com/MRamiBalles/epicurves/internal/events"
	"github.com/MRamiBalles/epicurves/internal/platform/logger"
	"github.com/MRamiBalles/epicurves/internal/platform/metrics"
	"github.com/MRamiBalles/epicurves/internal/platform/optimization"
)

// Message types pushed to clients.
const (
	MessageSnapshot = "snapshot"
	MessageHistory  = "history"
	MessageEvents   = "events"
)

// Message is the envelope of everything the hub sends.
type Message struct {
	Type     string            `json:"type"`
	Snapshot *engine.Snapshot  `json:"snapshot,omitempty"`
	History  []engine.Snapshot `json:"history,omitempty"`
	Events   []events.SimEvent `json:"events,omitempty"`
}

type historyRequest struct {
	client   *Client
	fromTick int
}

// Hub maintains the set of active clients and broadcasts snapshots to them.
// It implements engine.TickSink and keeps every snapshot it has seen so new
// clients can catch up without touching the engine.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	requests   chan historyRequest
	done       chan struct{}
	mu         sync.Mutex
	logger     *logger.Logger
	metrics    *metrics.Collector
	opts       *optimization.Config

	// history duplicates the tail of the engine history so replay never
	// takes the engine lock. Bounded by opts.HistoryLimit.
	historyMu sync.RWMutex
	history   []engine.Snapshot
}

// NewHub initializes a new WebSocket Hub. A nil opts uses the defaults.
func NewHub(log *logger.Logger, opts *optimization.Config) *Hub {
	if opts == nil {
		opts = optimization.DefaultConfig()
	}
	return &Hub{
		broadcast:  make(chan []byte, opts.BroadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		requests:   make(chan historyRequest),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		logger:     log,
		metrics:    metrics.Get(),
		opts:       opts,
	}
}

// SetMetrics replaces the global metrics collector.
func (h *Hub) SetMetrics(c *metrics.Collector) {
	h.metrics = c
}

// Run starts the Hub's main loop to handle client connections and broadcasts.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket Hub shutting down.")
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				h.drop(client)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			if h.opts.MaxClients > 0 && len(h.clients) >= h.opts.MaxClients {
				close(client.send)
				h.mu.Unlock()
				h.logger.Warn("Rejected WebSocket client: hub full", "max", h.opts.MaxClients)
				continue
			}
			h.clients[client] = true
			h.metrics.RecordWSConnection(1)
			h.mu.Unlock()
			h.sendHistory(client, 0)
			h.logger.Info("New WebSocket client connected", "clients", h.ClientCount())
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.logger.Info("WebSocket client disconnected")
			}
			h.mu.Unlock()
		case req := <-h.requests:
			h.mu.Lock()
			_, ok := h.clients[req.client]
			h.mu.Unlock()
			if ok {
				h.sendHistory(req.client, req.fromTick)
			}
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					h.metrics.RecordWSError()
					h.drop(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop closes and forgets client. Callers hold h.mu.
func (h *Hub) drop(client *Client) {
	close(client.send)
	delete(h.clients, client)
	h.metrics.RecordWSConnection(-1)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// OnTick records snap for replay and queues it for every client.
func (h *Hub) OnTick(snap engine.Snapshot) error {
	h.historyMu.Lock()
	h.history = append(h.history, snap)
	if limit := h.opts.HistoryLimit; limit > 0 && len(h.history) > limit {
		h.history = slices.Delete(h.history, 0, len(h.history)-limit)
	}
	h.historyMu.Unlock()

	payload, err := json.Marshal(Message{Type: MessageSnapshot, Snapshot: &snap})
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot %d: %w", snap.Tick, err)
	}
	select {
	case h.broadcast <- payload:
		return nil
	default:
		h.metrics.RecordWSError()
		return fmt.Errorf("broadcast queue full, dropped snapshot %d", snap.Tick)
	}
}

// HistorySince returns the buffered snapshots with Tick >= fromTick.
func (h *Hub) HistorySince(fromTick int) []engine.Snapshot {
	h.historyMu.RLock()
	defer h.historyMu.RUnlock()
	out := make([]engine.Snapshot, 0, len(h.history))
	for _, s := range h.history {
		if s.Tick >= fromTick {
			out = append(out, s)
		}
	}
	return out
}

// sendHistory must only run on the hub goroutine, which owns client.send.
func (h *Hub) sendHistory(client *Client, fromTick int) {
	payload, err := json.Marshal(Message{Type: MessageHistory, History: h.HistorySince(fromTick)})
	if err != nil {
		h.logger.Error("Failed to serialize history", "err", err)
		return
	}
	select {
	case client.send <- payload:
	default:
		h.metrics.RecordWSError()
		h.logger.Warn("Client send buffer full, history skipped", "from_tick", fromTick)
	}
}

// BroadcastEvents serializes a batch of events and sends it to all connected clients.
func (h *Hub) BroadcastEvents(ctx context.Context, batch []events.SimEvent) {
	payload, err := json.Marshal(Message{Type: MessageEvents, Events: batch})
	if err != nil {
		h.logger.Error("Failed to serialize events for WebSocket broadcast", "err", err)
		return
	}
	select {
	case h.broadcast <- payload:
	case <-ctx.Done():
	}
}

// StartEventPoller spawns a goroutine to poll the EventLog and push new events to the Hub.
// This allows the Hub to run independently from the Runner while picking up the same events.
func (h *Hub) StartEventPoller(ctx context.Context, eventLog *events.EventLog) {
	go func() {
		pollInterval := time.NewTicker(h.opts.EventPollInterval)
		defer pollInterval.Stop()

		lastProcessed := 0

		for {
			select {
			case <-ctx.Done():
				return
			case <-pollInterval.C:
				batch := eventLog.Since(lastProcessed)
				if len(batch) == 0 {
					continue
				}
				lastProcessed += len(batch)
				h.BroadcastEvents(ctx, batch)
			}
		}
	}()
}

// Package main - epicurves-watch
// Tails the snapshot stream of a running server. With -clients > 1 it also
// works as a load generator: every extra client only counts messages.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MRamiBalles/epicurves/internal/network"
)

// Config for the watcher
type Config struct {
	ServerURL  string
	NumClients int
	FromTick   int
	Duration   time.Duration
}

// Stats tracks what all clients received
type Stats struct {
	MessagesReceived int64
	Snapshots        int64
	Events           int64
	Errors           int64
	LastTick         int64
}

func main() {
	serverURL := flag.String("url", "ws://localhost:8080/ws", "WebSocket server URL")
	numClients := flag.Int("clients", 1, "Number of concurrent viewers")
	fromTick := flag.Int("from", -1, "request history from this tick after connecting (-1 skips)")
	duration := flag.Duration("duration", 0, "stop after this long (0 runs until interrupted)")
	flag.Parse()

	config := Config{
		ServerURL:  *serverURL,
		NumClients: *numClients,
		FromTick:   *fromTick,
		Duration:   *duration,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if config.Duration > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, config.Duration)
		defer timeoutCancel()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupt received, stopping...")
		cancel()
	}()

	stats := &Stats{}
	var wg sync.WaitGroup
	for i := 0; i < config.NumClients; i++ {
		wg.Add(1)
		go func(clientID int) {
			defer wg.Done()
			runClient(ctx, clientID, config, stats)
		}(i)

		// Stagger client starts to avoid thundering herd
		time.Sleep(10 * time.Millisecond)
	}
	wg.Wait()

	printResults(stats, config)
}

func runClient(ctx context.Context, clientID int, config Config, stats *Stats) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, config.ServerURL, nil)
	if err != nil {
		log.Printf("Client %d: Connection failed: %v", clientID, err)
		atomic.AddInt64(&stats.Errors, 1)
		return
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		conn.Close()
	}()

	if config.FromTick >= 0 {
		req := network.ClientRequest{Type: network.MessageHistory, FromTick: config.FromTick}
		if err := conn.WriteJSON(req); err != nil {
			atomic.AddInt64(&stats.Errors, 1)
			return
		}
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("Client %d: read failed: %v", clientID, err)
				atomic.AddInt64(&stats.Errors, 1)
			}
			return
		}
		atomic.AddInt64(&stats.MessagesReceived, 1)

		var msg network.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			atomic.AddInt64(&stats.Errors, 1)
			continue
		}
		verbose := clientID == 0

		switch msg.Type {
		case network.MessageSnapshot:
			atomic.AddInt64(&stats.Snapshots, 1)
			atomic.StoreInt64(&stats.LastTick, int64(msg.Snapshot.Tick))
			if verbose {
				s := msg.Snapshot
				fmt.Printf("tick %5d  S=%-5d I=%-5d R=%-5d D=%-5d new=%-4d prevalence=%.4f\n",
					s.Tick, s.Susceptible, s.Infected, s.Recovered, s.Dead, s.NewCases, s.Prevalence)
			}
		case network.MessageHistory:
			if verbose && len(msg.History) > 0 {
				first, last := msg.History[0], msg.History[len(msg.History)-1]
				fmt.Printf("history: %d rows, ticks %d..%d, infected now %d\n",
					len(msg.History), first.Tick, last.Tick, last.Infected)
			}
		case network.MessageEvents:
			atomic.AddInt64(&stats.Events, int64(len(msg.Events)))
		}
	}
}

func printResults(stats *Stats, config Config) {
	fmt.Println("\n=========================================")
	fmt.Println("WATCH SUMMARY")
	fmt.Println("=========================================")
	fmt.Printf("Clients:           %d\n", config.NumClients)
	fmt.Printf("Messages Received: %d\n", atomic.LoadInt64(&stats.MessagesReceived))
	fmt.Printf("Snapshots:         %d\n", atomic.LoadInt64(&stats.Snapshots))
	fmt.Printf("Events:            %d\n", atomic.LoadInt64(&stats.Events))
	fmt.Printf("Errors:            %d\n", atomic.LoadInt64(&stats.Errors))
	fmt.Printf("Last Tick:         %d\n", atomic.LoadInt64(&stats.LastTick))
}

package engine

import (
	"context"
	"testing"
	"time"

	"github.com/MRamiBalles/epicurves/internal/domain/scenario"
	"github.com/MRamiBalles/epicurves/internal/platform/logger"
	"github.com/MRamiBalles/epicurves/internal/platform/metrics"
)

type recordingSink struct {
	ticks    []int
	finished *RunResult
}

func (s *recordingSink) OnTick(snap Snapshot) error {
	s.ticks = append(s.ticks, snap.Tick)
	return nil
}

func (s *recordingSink) OnFinish(res RunResult) error {
	s.finished = &res
	return nil
}

func TestRunnerPublishesEveryTick(t *testing.T) {
	cfg := scenario.DefaultNetwork()
	cfg.EarlyStop = false
	e := mustEngine(t, cfg)

	sink := &recordingSink{}
	r := NewRunner(e, logger.NewNop(), 0, 5, sink)
	c := metrics.NewCollector()
	r.SetMetrics(c)

	res, err := r.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if res.Ticks != 5 {
		t.Errorf("Expected 5 ticks, got %+v", res)
	}
	want := []int{0, 1, 2, 3, 4, 5}
	if len(sink.ticks) != len(want) {
		t.Fatalf("Expected ticks %v, got %v", want, sink.ticks)
	}
	for i := range want {
		if sink.ticks[i] != want[i] {
			t.Fatalf("Expected ticks %v, got %v", want, sink.ticks)
		}
	}
	if sink.finished == nil || sink.finished.Ticks != 5 {
		t.Errorf("Expected finish notification, got %+v", sink.finished)
	}
	if c.TickCount != 5 || c.RunsFinished != 1 {
		t.Errorf("Expected 5 ticks and 1 finished run in metrics, got %d and %d", c.TickCount, c.RunsFinished)
	}
}

func TestRunnerStopsEarly(t *testing.T) {
	// nobody is infected at start and there is no infection zone
	cfg := scenario.DefaultGrid()
	cfg.Grid.InfectiousSize = 0
	cfg.Grid.RecoverySize = 0
	e := mustEngine(t, cfg)

	sink := &recordingSink{}
	r := NewRunner(e, logger.NewNop(), 0, 100, sink)
	r.SetMetrics(metrics.NewCollector())
	res, _ := r.Start(context.Background())
	if !res.StoppedEarly || res.Ticks != 1 {
		t.Errorf("Expected early stop after 1 tick, got %+v", res)
	}
}

func TestRunnerStopAndView(t *testing.T) {
	cfg := scenario.DefaultNetwork()
	cfg.EarlyStop = false
	e := mustEngine(t, cfg)

	r := NewRunner(e, logger.NewNop(), time.Millisecond, 1_000_000)
	r.SetMetrics(metrics.NewCollector())

	done := make(chan RunResult)
	go func() {
		res, _ := r.Start(context.Background())
		done <- res
	}()

	deadline := time.After(2 * time.Second)
	for {
		var tick int
		r.View(func(e *Engine) { tick = e.Tick() })
		if tick >= 3 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("Runner did not advance")
		case <-time.After(time.Millisecond):
		}
	}
	r.Stop()
	r.Stop() // idempotent

	select {
	case res := <-done:
		if !res.Cancelled || res.Ticks < 3 {
			t.Errorf("Expected a stopped run of at least 3 ticks, got %+v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Runner did not stop")
	}
}

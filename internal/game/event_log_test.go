package game

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"bomb-arena/internal/config"
)

// TestEventLogEmitBeforeStart tests that a stopped log rejects events
func TestEventLogEmitBeforeStart(t *testing.T) {
	el := NewEventLog(config.EventLogConfig{})
	if el.Emit(NewEvent(EventTypeFrame, 1, 1, "loop", nil)) {
		t.Error("Emit before Start should return false")
	}
	if el.GetTotalCount() != 0 {
		t.Errorf("Expected no accepted events, got %d", el.GetTotalCount())
	}
}

// TestEventLogSinks tests round trips through each file format
func TestEventLogSinks(t *testing.T) {
	tests := []struct {
		name string
		file string
	}{
		{"plain", "events.jsonl"},
		{"snappy", "events.jsonl.sz"},
		{"zstd", "events.jsonl.zst"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			el := NewEventLog(config.EventLogConfig{Path: path, MaxEventsPerSec: 100000, MaxEventsPerSource: 100000})
			if err := el.Start(); err != nil {
				t.Fatalf("Start failed: %v", err)
			}

			for i := 0; i < 50; i++ {
				el.Emit(NewEvent(EventTypeBombPlaced, uint64(i), 2, "player", BombPayload{BombID: uint64(i), X: i, Y: 1, Range: 2}))
			}
			el.Stop()

			events, err := ReadEventLog(path)
			if err != nil {
				t.Fatalf("ReadEventLog failed: %v", err)
			}
			if len(events) != 50 {
				t.Fatalf("Expected 50 events, got %d", len(events))
			}
			for i, ev := range events {
				if ev.Sequence != uint64(i+1) || ev.Type != EventTypeBombPlaced || ev.Level != 2 {
					t.Fatalf("Event %d mismatch: %+v", i, ev)
				}
			}

			var payload BombPayload
			if err := json.Unmarshal(events[7].Payload, &payload); err != nil {
				t.Fatal(err)
			}
			if payload.X != 7 || payload.Range != 2 {
				t.Errorf("Unexpected payload: %+v", payload)
			}
		})
	}
}

// TestEventLogGlobalRateLimit tests the global token bucket
func TestEventLogGlobalRateLimit(t *testing.T) {
	el := NewEventLog(config.EventLogConfig{MaxEventsPerSec: 10, MaxEventsPerSource: 1000})
	if err := el.Start(); err != nil {
		t.Fatal(err)
	}
	defer el.Stop()

	accepted := 0
	for i := 0; i < 5; i++ {
		if el.Emit(NewEvent(EventTypeFrame, uint64(i), 1, "", nil)) {
			accepted++
		}
	}
	if accepted != 1 {
		t.Errorf("Expected 1 accepted within the burst, got %d", accepted)
	}
	if el.GetDroppedCount() != 4 {
		t.Errorf("Expected 4 dropped, got %d", el.GetDroppedCount())
	}
}

// TestEventLogPerSourceLimit tests that one source cannot starve another
func TestEventLogPerSourceLimit(t *testing.T) {
	el := NewEventLog(config.EventLogConfig{MaxEventsPerSec: 100000, MaxEventsPerSource: 10})
	if err := el.Start(); err != nil {
		t.Fatal(err)
	}
	defer el.Stop()

	for i := 0; i < 5; i++ {
		el.Emit(NewEvent(EventTypeFrame, 0, 1, "loop", nil))
	}
	if !el.Emit(NewEvent(EventTypeEnemyDied, 0, 1, "enemy", nil)) {
		t.Error("A quiet source should not be limited by a noisy one")
	}
	if got := el.GetTotalCount(); got != 2 {
		t.Errorf("Expected 2 accepted, got %d", got)
	}
}

// TestEventLogDropsOldest tests the rolling window when the writer lags
func TestEventLogDropsOldest(t *testing.T) {
	el := NewEventLog(config.EventLogConfig{MaxEventsPerSec: 1000000, MaxEventsPerSource: 1000000})
	el.running.Store(true)

	for i := 0; i < EventBufferSize+76; i++ {
		el.Emit(NewEvent(EventTypeFrame, uint64(i), 1, "", nil))
	}

	stats := el.GetStats()
	if stats.Dropped != 76 || stats.Pending != EventBufferSize {
		t.Errorf("Expected 76 dropped and a full buffer, got %+v", stats)
	}

	batch := el.collectBatch(nil)
	if len(batch) != BatchFlushSize {
		t.Fatalf("Expected a full batch, got %d", len(batch))
	}
	if batch[0].Sequence != 77 {
		t.Errorf("Expected the oldest surviving event first, got sequence %d", batch[0].Sequence)
	}
}

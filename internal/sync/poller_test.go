package sync

import (
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	p := New(nil, nil, 0, 0)

	if p.interval != 120*time.Second {
		t.Errorf("interval = %v, want 120s default", p.interval)
	}
	if p.limit != 50 {
		t.Errorf("limit = %d, want 50 default", p.limit)
	}
	if p.Status().State != SyncIdle {
		t.Errorf("initial state = %v, want SyncIdle", p.Status().State)
	}
}

func TestMarkSeen(t *testing.T) {
	p := New(nil, nil, time.Minute, 10)

	if p.markSeen(7) {
		t.Error("first sighting of a UID should not be seen")
	}
	if !p.markSeen(7) {
		t.Error("second sighting of a UID should be seen")
	}
	if p.markSeen(8) {
		t.Error("a different UID should not be seen")
	}
}

func TestSendResultNeverBlocks(t *testing.T) {
	p := New(nil, nil, time.Minute, 10)

	// Fill the buffered channel and then some; sendResult must drop
	// instead of blocking.
	for i := 0; i < 32; i++ {
		p.sendResult(Result{})
	}

	if got := len(p.resultCh); got != cap(p.resultCh) {
		t.Errorf("buffered %d results, want full buffer %d", got, cap(p.resultCh))
	}
}

func TestStopIsIdempotent(t *testing.T) {
	p := New(nil, nil, time.Minute, 10)

	// Stop before Start is a no-op.
	p.Stop()
	p.Stop()
}

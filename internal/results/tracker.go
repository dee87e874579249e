package results

import (
	"context"
	"sync"
	"sync/atomic"
)

type attempt struct {
	seq    uint64
	cancel context.CancelFunc
}

// tracker tags refresh attempts with a process-wide increasing sequence
// number and remembers the newest in-flight attempt per client.
type tracker struct {
	seq atomic.Uint64

	mu       sync.Mutex
	inflight map[string]attempt
}

func newTracker() *tracker {
	return &tracker{inflight: make(map[string]attempt)}
}

// begin registers a new attempt for client and cancels the one it supersedes.
// The returned cancel func must be called once the attempt is finished.
func (t *tracker) begin(ctx context.Context, client string) (context.Context, uint64, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	seq := t.seq.Add(1)

	t.mu.Lock()
	if prev, ok := t.inflight[client]; ok {
		prev.cancel()
	}
	t.inflight[client] = attempt{seq: seq, cancel: cancel}
	t.mu.Unlock()

	done := func() {
		t.mu.Lock()
		if a, ok := t.inflight[client]; ok && a.seq == seq {
			delete(t.inflight, client)
		}
		t.mu.Unlock()
		cancel()
	}
	return ctx, seq, done
}

// current reports whether seq is still the newest attempt for client.
func (t *tracker) current(client string, seq uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	a, ok := t.inflight[client]
	return ok && a.seq == seq
}


package batch

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmylchreest/notadecision/pkg/decision"
)

var errMissing = errors.New("missing")

type fakeDecider struct {
	delay    time.Duration
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	mu       sync.Mutex
	calls    []string
}

func (f *fakeDecider) Decision(ctx context.Context, id string) (*decision.Result, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, id)
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if id == "missing" {
		return nil, errMissing
	}
	return &decision.Result{Content: "<p>" + id + "</p>"}, nil
}

func collect(ch <-chan Result) []Result {
	var out []Result
	for r := range ch {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

func TestRunner_Run(t *testing.T) {
	d := &fakeDecider{}
	results := collect(New(d, DefaultConfig()).Run(context.Background(), []string{"a", "b", "missing", "c"}))

	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i, want := range []string{"a", "b", "missing", "c"} {
		if results[i].NotaID != want || results[i].Index != i {
			t.Errorf("result %d = %s/%d, want %s/%d", i, results[i].NotaID, results[i].Index, want, i)
		}
	}
	if !errors.Is(results[2].Error, errMissing) {
		t.Errorf("expected errMissing, got %v", results[2].Error)
	}
	if results[0].Result == nil || results[0].Result.Content != "<p>a</p>" {
		t.Errorf("unexpected result %+v", results[0].Result)
	}
}

func TestRunner_Deduplicates(t *testing.T) {
	d := &fakeDecider{}
	results := collect(New(d, DefaultConfig()).Run(context.Background(), []string{"a", " a ", "a/", "", "b"}))

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if len(d.calls) != 2 {
		t.Errorf("expected 2 decider calls, got %v", d.calls)
	}
}

func TestRunner_ConcurrencyLimit(t *testing.T) {
	d := &fakeDecider{delay: 20 * time.Millisecond}
	ids := []string{"1", "2", "3", "4", "5", "6", "7", "8"}
	results := collect(New(d, Config{Concurrency: 2}).Run(context.Background(), ids))

	if len(results) != len(ids) {
		t.Fatalf("expected %d results, got %d", len(ids), len(results))
	}
	if got := d.maxSeen.Load(); got > 2 {
		t.Errorf("max concurrent calls = %d, want <= 2", got)
	}
}

func TestRunner_Cancelled(t *testing.T) {
	d := &fakeDecider{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := collect(New(d, Config{Concurrency: 1, Delay: time.Second}).Run(ctx, []string{"a", "b", "c"}))
	for _, r := range results {
		if r.Error == nil {
			t.Errorf("%s: expected cancellation error", r.NotaID)
		}
	}
	if len(d.calls) != 0 {
		t.Errorf("decider called after cancellation: %v", d.calls)
	}
}

func TestNew_MinimumConcurrency(t *testing.T) {
	r := New(&fakeDecider{}, Config{Concurrency: 0})
	if r.config.Concurrency != 1 {
		t.Errorf("Concurrency = %d, want 1", r.config.Concurrency)
	}
}

func TestIDQueue(t *testing.T) {
	q := NewIDQueue()
	if !q.Add("a") {
		t.Error("first add should succeed")
	}
	if q.Add("a") || q.Add("  a") || q.Add("") {
		t.Error("duplicates and blanks should be rejected")
	}
	q.Add("b")

	if q.Len() != 2 || q.Seen() != 2 {
		t.Errorf("Len = %d, Seen = %d", q.Len(), q.Seen())
	}

	id, index, ok := q.Pop()
	if !ok || id != "a" || index != 0 {
		t.Errorf("Pop() = %q, %d, %v", id, index, ok)
	}
	id, index, _ = q.Pop()
	if id != "b" || index != 1 {
		t.Errorf("Pop() = %q, %d", id, index)
	}
	if _, _, ok := q.Pop(); ok {
		t.Error("Pop() on empty queue should report false")
	}
	if q.Seen() != 2 {
		t.Error("Seen should not shrink on Pop")
	}
}

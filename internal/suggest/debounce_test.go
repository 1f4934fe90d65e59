package suggest

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestDebouncerOnlyLastQueryFires(t *testing.T) {
	var mu sync.Mutex
	var queries []string
	fn := func(_ context.Context, q string) (Suggestion, error) {
		mu.Lock()
		queries = append(queries, q)
		mu.Unlock()
		return Suggestion{Category: "Food & Dining", Confidence: 85}, nil
	}

	d := NewDebouncer(fn, 30*time.Millisecond)
	results := make(chan Suggestion, 4)
	deliver := func(s Suggestion, err error) {
		if err != nil {
			t.Errorf("deliver err: %v", err)
		}
		results <- s
	}

	ctx := context.Background()
	d.Trigger(ctx, "piz", deliver)
	d.Trigger(ctx, "pizz", deliver)
	d.Trigger(ctx, "pizza", deliver)

	select {
	case s := <-results:
		if s.Category != "Food & Dining" {
			t.Errorf("suggestion = %+v", s)
		}
	case <-time.After(time.Second):
		t.Fatal("no result delivered")
	}

	// Give stragglers a chance to (wrongly) fire.
	time.Sleep(60 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if len(queries) != 1 || queries[0] != "pizza" {
		t.Errorf("lookups = %v, want only the final query", queries)
	}
	if len(results) != 0 {
		t.Error("superseded triggers still delivered")
	}
}

func TestDebouncerShortQueryCancelsPending(t *testing.T) {
	fired := make(chan string, 1)
	fn := func(_ context.Context, q string) (Suggestion, error) {
		fired <- q
		return Suggestion{}, nil
	}

	d := NewDebouncer(fn, 30*time.Millisecond)
	ctx := context.Background()

	if !d.Trigger(ctx, "groceries", func(Suggestion, error) {}) {
		t.Fatal("long query should arm")
	}
	// Shrinking below the minimum cancels the armed lookup.
	if d.Trigger(ctx, "gr", func(Suggestion, error) {}) {
		t.Error("short query must not arm")
	}

	select {
	case q := <-fired:
		t.Errorf("lookup fired for %q after cancellation", q)
	case <-time.After(80 * time.Millisecond):
	}
}

func TestDebouncerDiscardsStaleInFlightResult(t *testing.T) {
	release := make(chan struct{})
	fn := func(_ context.Context, q string) (Suggestion, error) {
		if q == "slow query" {
			<-release
		}
		return Suggestion{Category: q, Confidence: 70}, nil
	}

	d := NewDebouncer(fn, 5*time.Millisecond)
	results := make(chan Suggestion, 2)
	deliver := func(s Suggestion, err error) { results <- s }

	ctx := context.Background()
	d.Trigger(ctx, "slow query", deliver)
	time.Sleep(20 * time.Millisecond) // let the slow lookup start

	d.Trigger(ctx, "fast query", deliver)
	close(release)

	select {
	case s := <-results:
		if s.Category != "fast query" {
			t.Errorf("delivered %q, want only the fresh result", s.Category)
		}
	case <-time.After(time.Second):
		t.Fatal("no result delivered")
	}

	select {
	case s := <-results:
		t.Errorf("stale result %q delivered", s.Category)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFlush(t *testing.T) {
	fn := func(_ context.Context, q string) (Suggestion, error) {
		return Suggestion{Category: "Transport", Confidence: 61}, nil
	}
	d := NewDebouncer(fn, time.Hour) // window never elapses on its own

	s, err := d.Flush(context.Background(), "uber ride")
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if s.Category != "Transport" || !s.ShouldApply() {
		t.Errorf("suggestion = %+v", s)
	}

	if s, _ := d.Flush(context.Background(), "ub"); s != (Suggestion{}) {
		t.Errorf("short query returned %+v", s)
	}
}

package algo

import (
	"context"
	"testing"
	"time"

	"algo_exec/internal/domain"
)

func twapOrder(qty int64) domain.Order {
	return domain.Order{ID: "ord-1", Symbol: "AAPL", Side: domain.SideBuy, Type: domain.TypeMarket, Quantity: qty}
}

func TestTWAPExactSlicing(t *testing.T) {
	// Q=100, N=4 over a 40ms window: exactly 4 slices of 25, 10ms apart.
	start := time.Now()
	p := TWAPParams{Start: start, End: start.Add(40 * time.Millisecond), Slices: 4}
	if err := p.Validate(); err != nil {
		t.Fatalf("params rejected: %v", err)
	}
	planner := p.NewPlanner(twapOrder(100), nil)

	remaining := int64(100)
	for i := 0; i < 4; i++ {
		s, done, err := planner.Next(context.Background(), remaining)
		if err != nil || done {
			t.Fatalf("slice %d: done=%v err=%v", i, done, err)
		}
		if s.Quantity != 25 {
			t.Errorf("slice %d quantity = %d, want 25", i, s.Quantity)
		}
		if s.Type != domain.TypeMarket || s.TimeInForce != domain.TIFImmediateOrCancel {
			t.Errorf("slice %d should be MARKET/IOC, got %s/%s", i, s.Type, s.TimeInForce)
		}
		wantDelay := 10 * time.Millisecond
		if i == 3 {
			wantDelay = 0 // no trailing wait
		}
		if s.Delay != wantDelay {
			t.Errorf("slice %d delay = %v, want %v", i, s.Delay, wantDelay)
		}
		remaining -= s.Quantity
	}

	if _, done, _ := planner.Next(context.Background(), remaining); !done {
		t.Error("planner should report done after N slices")
	}
}

func TestTWAPRoundingShortfall(t *testing.T) {
	// Q=10, N=3: three slices of 3, one unit never scheduled. Documented
	// rounding behavior, not silently topped up.
	start := time.Now()
	p := TWAPParams{Start: start, End: start.Add(30 * time.Millisecond), Slices: 3}
	planner := p.NewPlanner(twapOrder(10), nil)

	var total int64
	for {
		s, done, err := planner.Next(context.Background(), 10-total)
		if err != nil {
			t.Fatal(err)
		}
		if done {
			break
		}
		if s.Quantity != 3 {
			t.Errorf("slice quantity = %d, want 3", s.Quantity)
		}
		total += s.Quantity
	}
	if total != 9 {
		t.Errorf("total scheduled = %d, want 9", total)
	}
}

func TestTWAPValidate(t *testing.T) {
	start := time.Now()
	bad := []TWAPParams{
		{Start: start, End: start.Add(time.Minute), Slices: 0},
		{Start: start, End: start.Add(time.Minute), Slices: -1},
		{Start: start, End: start, Slices: 4},
		{Start: start, End: start.Add(-time.Minute), Slices: 4},
	}
	for i, p := range bad {
		if err := p.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

package algo

import (
	"context"
	"testing"
	"time"

	"algo_exec/internal/domain"
)

func TestVWAPProfileSlicing(t *testing.T) {
	start := time.Now()
	p := VWAPParams{
		Start:   start,
		End:     start.Add(30 * time.Millisecond),
		Profile: []float64{0.5, 0.3, 0.2},
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("params rejected: %v", err)
	}
	order := domain.Order{ID: "ord-1", Symbol: "AAPL", Side: domain.SideSell, Quantity: 100}
	planner := p.NewPlanner(order, nil)

	want := []int64{50, 30, 20}
	for i, w := range want {
		s, done, err := planner.Next(context.Background(), 100)
		if err != nil || done {
			t.Fatalf("slice %d: done=%v err=%v", i, done, err)
		}
		if s.Quantity != w {
			t.Errorf("slice %d quantity = %d, want %d", i, s.Quantity, w)
		}
		if s.Delay != 10*time.Millisecond && i < len(want)-1 {
			t.Errorf("slice %d delay = %v, want 10ms", i, s.Delay)
		}
	}
	if _, done, _ := planner.Next(context.Background(), 0); !done {
		t.Error("planner should report done after the profile is spent")
	}
}

func TestVWAPShortfallIsExpected(t *testing.T) {
	// Weights summing to 0.9 schedule only 90 of 100 units.
	start := time.Now()
	p := VWAPParams{
		Start:   start,
		End:     start.Add(20 * time.Millisecond),
		Profile: []float64{0.45, 0.45},
	}
	order := domain.Order{ID: "ord-2", Symbol: "AAPL", Side: domain.SideBuy, Quantity: 100}
	planner := p.NewPlanner(order, nil)

	var total int64
	for {
		s, done, err := planner.Next(context.Background(), 100-total)
		if err != nil {
			t.Fatal(err)
		}
		if done {
			break
		}
		total += s.Quantity
	}
	if total != 90 {
		t.Errorf("total scheduled = %d, want 90", total)
	}
}

func TestVWAPValidate(t *testing.T) {
	start := time.Now()
	bad := []VWAPParams{
		{Start: start, End: start.Add(time.Minute), Profile: nil},
		{Start: start, End: start.Add(time.Minute), Profile: []float64{0.5, -0.1}},
		{Start: start, End: start.Add(time.Minute), Profile: []float64{1.5}},
		{Start: start, End: start, Profile: []float64{1}},
	}
	for i, p := range bad {
		if err := p.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

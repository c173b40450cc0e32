package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestOrderBookSpread(t *testing.T) {
	book := OrderBook{
		Symbol: "AAPL",
		Bids:   []BookLevel{{Price: decimal.NewFromFloat(99.9), Qty: 500}},
		Asks:   []BookLevel{{Price: decimal.NewFromFloat(100.1), Qty: 500}},
	}

	spread, ok := book.Spread()
	if !ok {
		t.Fatal("expected a defined spread")
	}
	// (100.1 - 99.9) / 100 = 0.002
	want := decimal.NewFromFloat(0.002)
	if !spread.Equal(want) {
		t.Errorf("spread = %s, want %s", spread, want)
	}
}

func TestOrderBookSpreadEmptySide(t *testing.T) {
	book := OrderBook{
		Symbol: "AAPL",
		Asks:   []BookLevel{{Price: decimal.NewFromFloat(100.1), Qty: 500}},
	}
	if _, ok := book.Spread(); ok {
		t.Error("spread should be undefined with an empty bid side")
	}
}

package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"algo_exec/internal/domain"
)

func fill(orderID string, qty int64, price float64) domain.Fill {
	return domain.Fill{
		ID:       "f-" + orderID,
		OrderID:  orderID,
		Symbol:   "AAPL",
		Side:     domain.SideBuy,
		Quantity: qty,
		Price:    decimal.NewFromFloat(price),
		Venue:    domain.VenuePrimary,
		Ts:       time.Now(),
	}
}

func TestLedgerMetrics(t *testing.T) {
	order := domain.Order{ID: "ord-1", Symbol: "AAPL", Side: domain.SideBuy, Quantity: 100}
	l := New(order, "TWAP")
	l.SetExpectedPrice(decimal.NewFromInt(100))

	// 40 @ 100 and 60 @ 110: QWAP = (4000 + 6600) / 100 = 106.
	l.Append(fill("ord-1", 40, 100))
	l.Append(fill("ord-1", 60, 110))

	rec := l.Seal(domain.StateCompleted, "")
	if rec.ExecutedQty != 100 {
		t.Errorf("executed = %d, want 100", rec.ExecutedQty)
	}
	if !rec.AvgPriceValid || !rec.AvgPrice.Equal(decimal.NewFromInt(106)) {
		t.Errorf("avg price = %s (valid=%v), want 106", rec.AvgPrice, rec.AvgPriceValid)
	}
	// Slippage = (106 - 100) / 100 * 100 = 6%.
	if !rec.SlippagePct.Equal(decimal.NewFromInt(6)) {
		t.Errorf("slippage = %s, want 6", rec.SlippagePct)
	}
	if len(rec.Fills) != 2 {
		t.Errorf("fills = %d, want 2", len(rec.Fills))
	}
	if rec.EndedAt.IsZero() {
		t.Error("sealed record should carry an end time")
	}
}

func TestLedgerZeroFillSafety(t *testing.T) {
	// Sealing with nothing filled must not divide by zero; average price
	// and slippage stay undefined.
	order := domain.Order{ID: "ord-2", Symbol: "AAPL", Side: domain.SideSell, Quantity: 100}
	l := New(order, "DARK_POOL")
	l.SetExpectedPrice(decimal.NewFromInt(100))

	rec := l.Seal(domain.StateCompleted, "")
	if rec.ExecutedQty != 0 {
		t.Errorf("executed = %d, want 0", rec.ExecutedQty)
	}
	if rec.AvgPriceValid {
		t.Error("average price should be undefined with zero fills")
	}
	if !rec.SlippagePct.IsZero() {
		t.Errorf("slippage = %s, want zero/undefined", rec.SlippagePct)
	}
}

func TestLedgerSealIsFinal(t *testing.T) {
	order := domain.Order{ID: "ord-3", Symbol: "AAPL", Side: domain.SideBuy, Quantity: 10}
	l := New(order, "TWAP")
	l.Append(fill("ord-3", 5, 100))
	l.Seal(domain.StateCancelled, "")

	// Appends after sealing are dropped.
	l.Append(fill("ord-3", 5, 100))
	if got := l.ExecutedQty(); got != 5 {
		t.Errorf("executed after sealed append = %d, want 5", got)
	}
}

func TestLedgerSnapshotWhileRunning(t *testing.T) {
	order := domain.Order{ID: "ord-4", Symbol: "AAPL", Side: domain.SideBuy, Quantity: 10}
	l := New(order, "POV")
	l.Append(fill("ord-4", 3, 50))

	rec := l.Snapshot(domain.StateRunning)
	if rec.State != domain.StateRunning || rec.ExecutedQty != 3 {
		t.Errorf("snapshot = %s/%d, want RUNNING/3", rec.State, rec.ExecutedQty)
	}
	if !rec.EndedAt.IsZero() {
		t.Error("running snapshot should not carry an end time")
	}

	// The snapshot owns its fill slice.
	rec.Fills[0].Quantity = 999
	if l.Snapshot(domain.StateRunning).Fills[0].Quantity != 3 {
		t.Error("snapshot mutation leaked into the ledger")
	}
}

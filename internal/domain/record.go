package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExecState is the lifecycle state of one parent order's execution.
// Transitions are monotonic: Pending -> Running -> terminal.
type ExecState string

const (
	StatePending   ExecState = "PENDING"
	StateRunning   ExecState = "RUNNING"
	StateCompleted ExecState = "COMPLETED"
	StateCancelled ExecState = "CANCELLED"
	StateFailed    ExecState = "FAILED"
)

// Terminal reports whether the state admits no further transitions.
func (s ExecState) Terminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateFailed
}

// ExecutionRecord is the aggregated outcome of one parent order.
// While the order runs the engine hands out snapshot copies; the sealed
// record returned from Await is final.
type ExecutionRecord struct {
	OrderID   string
	Symbol    string
	Side      Side
	Algorithm string
	State     ExecState

	Fills       []Fill
	ExecutedQty int64
	TotalCost   decimal.Decimal

	// AvgPrice is the quantity-weighted average fill price. It is only
	// meaningful when AvgPriceValid is true (ExecutedQty > 0); a zero-fill
	// execution is legitimate and must not divide by zero.
	AvgPrice      decimal.Decimal
	AvgPriceValid bool

	// SlippagePct is (AvgPrice - ExpectedPrice) / ExpectedPrice * 100.
	// Undefined (zero, AvgPriceValid false) when nothing filled.
	SlippagePct   decimal.Decimal
	ExpectedPrice decimal.Decimal

	StartedAt time.Time
	EndedAt   time.Time

	// Reason carries context for FAILED records (budget exhaustion,
	// market view errors). Empty otherwise.
	Reason string
}

package marketdata

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"algo_exec/internal/domain"
)

// Stub is an in-memory MarketView for tests and paper runs. All fields
// are settable at any time; reads are point-in-time copies. Safe for
// concurrent use.
type Stub struct {
	mu      sync.RWMutex
	prices  map[string]decimal.Decimal
	volumes map[string]int64
	books   map[string]domain.OrderBook
	dark    map[string][]domain.DarkQuote
}

// NewStub creates an empty stub view. Reads for unknown symbols fail,
// mirroring a real feed that has no snapshot yet.
func NewStub() *Stub {
	return &Stub{
		prices:  make(map[string]decimal.Decimal),
		volumes: make(map[string]int64),
		books:   make(map[string]domain.OrderBook),
		dark:    make(map[string][]domain.DarkQuote),
	}
}

func (s *Stub) SetPrice(symbol string, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[symbol] = price
}

func (s *Stub) SetVolume(symbol string, volume int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volumes[symbol] = volume
}

func (s *Stub) SetBook(symbol string, book domain.OrderBook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books[symbol] = book
}

func (s *Stub) SetDarkLiquidity(symbol string, quotes []domain.DarkQuote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dark[symbol] = append([]domain.DarkQuote(nil), quotes...)
}

func (s *Stub) CurrentPrice(_ context.Context, symbol string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	price, ok := s.prices[symbol]
	if !ok {
		return decimal.Zero, fmt.Errorf("no price for %s", symbol)
	}
	return price, nil
}

func (s *Stub) RecentVolume(_ context.Context, symbol string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volumes[symbol], nil
}

func (s *Stub) OrderBook(_ context.Context, symbol string) (domain.OrderBook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	book := s.books[symbol]
	book.Symbol = symbol
	book.Bids = append([]domain.BookLevel(nil), book.Bids...)
	book.Asks = append([]domain.BookLevel(nil), book.Asks...)
	return book, nil
}

func (s *Stub) DarkLiquidity(_ context.Context, symbol string) ([]domain.DarkQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.DarkQuote(nil), s.dark[symbol]...), nil
}

package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"algo_exec/internal/domain"
	"algo_exec/internal/infra"
)

// tickerMessage is one update on the market data stream.
type tickerMessage struct {
	Symbol string       `json:"symbol"`
	Price  float64      `json:"price"`
	Volume int64        `json:"volume"`
	Bids   [][2]float64 `json:"bids"` // [price, qty]
	Asks   [][2]float64 `json:"asks"`
}

type subscribeMessage struct {
	Op      string   `json:"op"`
	Symbols []string `json:"symbols"`
}

type snapshot struct {
	price  decimal.Decimal
	volume int64
	book   domain.OrderBook
}

// Feed is a MarketView backed by a websocket ticker stream. It keeps the
// last snapshot per symbol; reads before the first message fail, like
// any feed that has not warmed up yet. Reconnects with exponential
// backoff. Dark liquidity is always empty: public feeds carry none, so
// dark-routing callers must supply their own view.
type Feed struct {
	url     string
	symbols []string

	mu    sync.RWMutex
	snaps map[string]snapshot

	cancel context.CancelFunc
	wg     sync.WaitGroup

	ReadTimeout time.Duration
}

// NewFeed creates a feed for the given stream URL and symbols.
func NewFeed(url string, symbols []string) *Feed {
	return &Feed{
		url:         url,
		symbols:     symbols,
		snaps:       make(map[string]snapshot),
		ReadTimeout: 60 * time.Second,
	}
}

// Start launches the connection loop.
func (f *Feed) Start(ctx context.Context) {
	ctx, f.cancel = context.WithCancel(ctx)
	f.wg.Add(1)
	go f.runLoop(ctx)
}

// Stop terminates the feed and waits for the loop to exit.
func (f *Feed) Stop() {
	if f.cancel != nil {
		f.cancel()
	}
	f.wg.Wait()
}

func (f *Feed) runLoop(ctx context.Context) {
	defer f.wg.Done()
	retry := 0

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn, err := f.connect(ctx)
		if err != nil {
			slog.Warn("FEED_CONNECT_FAILED", slog.String("url", f.url), slog.Any("error", err), slog.Int("retry", retry))
			delay := infra.CalculateBackoff(retry)
			retry++

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		}

		retry = 0
		f.process(ctx, conn)
	}
}

func (f *Feed) connect(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return nil, err
	}

	sub := subscribeMessage{Op: "subscribe", Symbols: f.symbols}
	if err := conn.WriteJSON(sub); err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe failed: %w", err)
	}

	slog.Info("market feed connected", slog.String("url", f.url), slog.Int("symbols", len(f.symbols)))
	return conn, nil
}

func (f *Feed) process(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn.SetReadDeadline(time.Now().Add(f.ReadTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			slog.Warn("FEED_READ_ERROR", slog.Any("error", err))
			return
		}
		f.onMessage(msg)
	}
}

func (f *Feed) onMessage(msg []byte) {
	var tick tickerMessage
	if err := json.Unmarshal(msg, &tick); err != nil {
		slog.Warn("FEED_BAD_MESSAGE", slog.Any("error", err))
		return
	}
	if tick.Symbol == "" {
		return
	}

	snap := snapshot{
		price:  decimal.NewFromFloat(tick.Price),
		volume: tick.Volume,
		book: domain.OrderBook{
			Symbol: tick.Symbol,
			Bids:   toLevels(tick.Bids),
			Asks:   toLevels(tick.Asks),
			Ts:     time.Now(),
		},
	}

	f.mu.Lock()
	f.snaps[tick.Symbol] = snap
	f.mu.Unlock()
}

func toLevels(raw [][2]float64) []domain.BookLevel {
	levels := make([]domain.BookLevel, 0, len(raw))
	for _, l := range raw {
		levels = append(levels, domain.BookLevel{
			Price: decimal.NewFromFloat(l[0]),
			Qty:   int64(l[1]),
		})
	}
	return levels
}

func (f *Feed) snapshotFor(symbol string) (snapshot, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	snap, ok := f.snaps[symbol]
	if !ok {
		return snapshot{}, fmt.Errorf("no feed snapshot for %s", symbol)
	}
	return snap, nil
}

func (f *Feed) CurrentPrice(_ context.Context, symbol string) (decimal.Decimal, error) {
	snap, err := f.snapshotFor(symbol)
	if err != nil {
		return decimal.Zero, err
	}
	return snap.price, nil
}

func (f *Feed) RecentVolume(_ context.Context, symbol string) (int64, error) {
	snap, err := f.snapshotFor(symbol)
	if err != nil {
		return 0, err
	}
	return snap.volume, nil
}

func (f *Feed) OrderBook(_ context.Context, symbol string) (domain.OrderBook, error) {
	snap, err := f.snapshotFor(symbol)
	if err != nil {
		return domain.OrderBook{}, err
	}
	book := snap.book
	book.Bids = append([]domain.BookLevel(nil), book.Bids...)
	book.Asks = append([]domain.BookLevel(nil), book.Asks...)
	return book, nil
}

func (f *Feed) DarkLiquidity(_ context.Context, _ string) ([]domain.DarkQuote, error) {
	return nil, nil
}

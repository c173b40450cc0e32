package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"algo_exec/internal/domain"
	"algo_exec/internal/engine"
	"algo_exec/internal/infra"
	"algo_exec/internal/marketdata"
	"algo_exec/internal/storage"
)

// Bootstrap orchestrates the application startup sequence.
type Bootstrap struct {
	Config  *infra.Config
	Engine  *engine.Engine
	Archive *storage.RecordArchive

	feed *marketdata.Feed
}

// NewBootstrap creates a new Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads config, wires the market view, archive and engine.
func (b *Bootstrap) Initialize(ctx context.Context, configPath string) error {
	slog.Info("🚀 Bootstrapping Algo Exec...")

	// 1. Load Config
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Market view: live feed or seeded stub
	var view domain.MarketView
	switch cfg.Market.Mode {
	case "feed":
		feed := marketdata.NewFeed(cfg.Market.WSURL, cfg.Market.Symbols)
		feed.Start(ctx)
		b.feed = feed
		view = feed
		slog.Info("✅ Market feed started", "url", cfg.Market.WSURL, "symbols", len(cfg.Market.Symbols))
	default:
		view = seededStub(cfg.Market.Symbols)
		slog.Info("✅ Stub market view ready", "symbols", len(cfg.Market.Symbols))
	}

	// 4. Engine options
	opts := []engine.Option{
		engine.WithBudget(engine.Budget{
			MaxIterations: cfg.Engine.MaxIterations,
			MaxRuntime:    time.Duration(cfg.Engine.MaxRuntimeSec) * time.Second,
		}),
	}

	if cfg.Archive.Enabled {
		if err := os.MkdirAll(filepath.Dir(cfg.Archive.DBPath), 0o755); err != nil {
			return fmt.Errorf("failed to create archive dir: %w", err)
		}
		archive, err := storage.NewRecordArchive(cfg.Archive.DBPath)
		if err != nil {
			return err
		}
		b.Archive = archive
		opts = append(opts, engine.WithArchive(archive))
		slog.Info("✅ Record archive initialized (WAL-mode)", "path", cfg.Archive.DBPath)
	}

	b.Engine = engine.New(view, opts...)
	slog.Info("✅ Execution engine ready")

	return nil
}

// Shutdown releases the feed connection and the archive handle.
func (b *Bootstrap) Shutdown() {
	if b.feed != nil {
		b.feed.Stop()
	}
	if b.Archive != nil {
		if err := b.Archive.Close(); err != nil {
			slog.Warn("ARCHIVE_CLOSE_FAILED", slog.Any("error", err))
		}
	}
	slog.Info("👋 Shutdown complete")
}

// seededStub builds a stub view with plausible quotes so the demo
// orders have something to execute against.
func seededStub(symbols []string) *marketdata.Stub {
	if len(symbols) == 0 {
		symbols = []string{"AAPL"}
	}

	stub := marketdata.NewStub()
	base := decimal.NewFromInt(100)
	for i, sym := range symbols {
		price := base.Add(decimal.NewFromInt(int64(i * 25)))
		tick := price.Mul(decimal.NewFromFloat(0.0005))

		stub.SetPrice(sym, price)
		stub.SetVolume(sym, 10_000)
		stub.SetBook(sym, domain.OrderBook{
			Symbol: sym,
			Bids:   []domain.BookLevel{{Price: price.Sub(tick), Qty: 500}},
			Asks:   []domain.BookLevel{{Price: price.Add(tick), Qty: 500}},
			Ts:     time.Now(),
		})
		stub.SetDarkLiquidity(sym, []domain.DarkQuote{
			{Price: price.Mul(decimal.NewFromFloat(0.997)), Qty: 400},
		})
	}
	return stub
}

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"algo_exec/internal/algo"
	"algo_exec/internal/app"
	"algo_exec/internal/domain"
	"algo_exec/internal/engine"
)

func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	if env := os.Getenv("ALGOEXEC_CONFIG"); env != "" && !flagPassed("config") {
		*configPath = env
	}

	// Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(ctx, *configPath); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Shutdown()

	eng := bootstrap.Engine
	symbol := "AAPL"
	if len(bootstrap.Config.Market.Symbols) > 0 {
		symbol = bootstrap.Config.Market.Symbols[0]
	}

	slog.InfoContext(ctx, "✨ Algo Exec operational, running demo orders", slog.String("symbol", symbol))

	var wg sync.WaitGroup
	for _, d := range demoOrders(symbol) {
		handle, err := eng.Submit(ctx, d.order, d.params)
		if err != nil {
			slog.Error("Submit failed",
				slog.String("order", d.order.ID), slog.Any("error", err))
			continue
		}

		wg.Add(1)
		go func(h *engine.Handle) {
			defer wg.Done()
			rec, err := h.Await(ctx)
			if err != nil {
				slog.Warn("Await interrupted", slog.String("order", h.OrderID()), slog.Any("error", err))
				return
			}
			report(rec)
		}(handle)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("✅ All demo orders sealed")
	case <-ctx.Done():
		slog.InfoContext(ctx, "👋 Shutting down gracefully...")
		<-done
	}
}

type demoOrder struct {
	order  domain.Order
	params algo.Params
}

// demoOrders exercises every slicing strategy against the configured
// market view.
func demoOrders(symbol string) []demoOrder {
	now := time.Now()

	newOrder := func(side domain.Side, qty int64) domain.Order {
		return domain.Order{
			ID:        uuid.NewString(),
			Symbol:    symbol,
			Side:      side,
			Type:      domain.TypeMarket,
			Quantity:  qty,
			CreatedAt: now,
		}
	}

	return []demoOrder{
		{newOrder(domain.SideBuy, 1000), algo.TWAPParams{
			Start: now, End: now.Add(10 * time.Second), Slices: 5,
		}},
		{newOrder(domain.SideBuy, 1000), algo.VWAPParams{
			Start: now, End: now.Add(10 * time.Second),
			Profile: []float64{0.1, 0.2, 0.4, 0.2, 0.1},
		}},
		{newOrder(domain.SideSell, 500), algo.POVParams{
			Target: 0.1, MaxRate: 0.2, MinSize: 10, Interval: time.Second,
		}},
		{newOrder(domain.SideBuy, 800), algo.SmartParams{
			Urgency: algo.UrgencyMedium, AllowDark: true, AdaptiveSize: true,
		}},
		{newOrder(domain.SideSell, 600), algo.IcebergParams{
			DisplaySize: 100, RefreshInterval: time.Second,
		}},
		{newOrder(domain.SideBuy, 400), algo.DarkPoolParams{
			MinFill: 50, MaxFill: 200, Interval: time.Second, MaxProbes: 5,
		}},
	}
}

func report(rec domain.ExecutionRecord) {
	attrs := []any{
		slog.String("order", rec.OrderID),
		slog.String("algorithm", rec.Algorithm),
		slog.String("state", string(rec.State)),
		slog.Int64("executed", rec.ExecutedQty),
		slog.Int("fills", len(rec.Fills)),
	}
	if rec.AvgPriceValid {
		attrs = append(attrs,
			slog.String("avg_price", rec.AvgPrice.StringFixed(4)),
			slog.String("slippage_pct", rec.SlippagePct.StringFixed(4)),
		)
	}
	if rec.Reason != "" {
		attrs = append(attrs, slog.String("reason", rec.Reason))
	}
	slog.Info("execution finished", attrs...)
}

func flagPassed(name string) bool {
	passed := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			passed = true
		}
	})
	return passed
}

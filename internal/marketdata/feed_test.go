package marketdata

import (
	"context"
	"testing"
)

func TestFeedColdReadsFail(t *testing.T) {
	f := NewFeed("ws://localhost:9999/stream", []string{"AAPL"})

	if _, err := f.CurrentPrice(context.Background(), "AAPL"); err == nil {
		t.Fatal("expected error before first message")
	}
	if _, err := f.RecentVolume(context.Background(), "AAPL"); err == nil {
		t.Fatal("expected error before first message")
	}
	if _, err := f.OrderBook(context.Background(), "AAPL"); err == nil {
		t.Fatal("expected error before first message")
	}
}

func TestFeedMessageUpdatesSnapshot(t *testing.T) {
	f := NewFeed("ws://localhost:9999/stream", []string{"AAPL"})

	f.onMessage([]byte(`{"symbol":"AAPL","price":187.25,"volume":4200,"bids":[[187.20,100],[187.15,250]],"asks":[[187.30,80]]}`))

	price, err := f.CurrentPrice(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("CurrentPrice: %v", err)
	}
	if price.String() != "187.25" {
		t.Fatalf("price = %s, want 187.25", price)
	}

	vol, err := f.RecentVolume(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("RecentVolume: %v", err)
	}
	if vol != 4200 {
		t.Fatalf("volume = %d, want 4200", vol)
	}

	book, err := f.OrderBook(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("OrderBook: %v", err)
	}
	if len(book.Bids) != 2 || len(book.Asks) != 1 {
		t.Fatalf("book depth = %d/%d, want 2/1", len(book.Bids), len(book.Asks))
	}
	if book.Bids[0].Qty != 100 {
		t.Fatalf("top bid qty = %d, want 100", book.Bids[0].Qty)
	}

	// Later ticks replace the snapshot.
	f.onMessage([]byte(`{"symbol":"AAPL","price":187.40,"volume":5000}`))
	price, _ = f.CurrentPrice(context.Background(), "AAPL")
	if price.String() != "187.4" {
		t.Fatalf("price = %s, want 187.4", price)
	}
}

func TestFeedIgnoresMalformedMessages(t *testing.T) {
	f := NewFeed("ws://localhost:9999/stream", []string{"AAPL"})

	f.onMessage([]byte(`{"symbol":"AAPL","price":187.25,"volume":4200}`))
	f.onMessage([]byte(`not json`))
	f.onMessage([]byte(`{"price":1.0}`)) // missing symbol

	price, err := f.CurrentPrice(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("CurrentPrice: %v", err)
	}
	if price.String() != "187.25" {
		t.Fatalf("price = %s, want 187.25", price)
	}
}

func TestFeedReportsNoDarkLiquidity(t *testing.T) {
	f := NewFeed("ws://localhost:9999/stream", []string{"AAPL"})
	f.onMessage([]byte(`{"symbol":"AAPL","price":187.25,"volume":4200}`))

	quotes, err := f.DarkLiquidity(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("DarkLiquidity: %v", err)
	}
	if len(quotes) != 0 {
		t.Fatalf("quotes = %d, want 0", len(quotes))
	}
}

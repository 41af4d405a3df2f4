package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"tradehook/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

func newTestStatusService(t *testing.T, ex *stubExchange, withCache bool) (*StatusService, *miniredis.Miniredis) {
	t.Helper()

	var client *redis.Client
	var mr *miniredis.Miniredis
	if withCache {
		mr = miniredis.RunT(t)
		client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	}

	svc := NewStatusService(
		trace.NewNoopTracerProvider().Tracer("test"),
		testRegistry(),
		func(cfg *domain.TenantConfig) Exchange { return ex },
		client,
		time.Second,
	)
	return svc, mr
}

func TestStatusCombinesBalancesAndOpenOrders(t *testing.T) {
	ex := &stubExchange{
		balances:   []domain.Balance{{Asset: "BTC", Free: 1}},
		openOrders: []domain.OpenOrder{{OrderID: 5, Symbol: "BTCUSDT", Status: "NEW"}},
	}
	svc, _ := newTestStatusService(t, ex, false)

	status, err := svc.Status(context.Background(), "bot1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(status.Balances) != 1 || status.Balances[0].Asset != "BTC" {
		t.Fatalf("unexpected balances: %+v", status.Balances)
	}
	if len(status.OpenOrders) != 1 || status.OpenOrders[0].OrderID != 5 {
		t.Fatalf("unexpected open orders: %+v", status.OpenOrders)
	}
}

func TestStatusUnknownTenant(t *testing.T) {
	svc, _ := newTestStatusService(t, &stubExchange{}, false)

	if _, err := svc.Status(context.Background(), "ghost"); !errors.Is(err, domain.ErrTenantNotFound) {
		t.Fatalf("expected ErrTenantNotFound, got %v", err)
	}
}

func TestStatusServedFromCache(t *testing.T) {
	ex := &stubExchange{
		balances:   []domain.Balance{{Asset: "BTC", Free: 1}},
		openOrders: []domain.OpenOrder{{OrderID: 5}},
	}
	svc, _ := newTestStatusService(t, ex, true)

	if _, err := svc.Status(context.Background(), "bot1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	status, err := svc.Status(context.Background(), "bot1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ex.balanceCalls != 1 || ex.openOrderCalls != 1 {
		t.Fatalf("expected second call to hit the cache, got %d/%d exchange calls", ex.balanceCalls, ex.openOrderCalls)
	}
	if len(status.Balances) != 1 || status.Balances[0].Asset != "BTC" {
		t.Fatalf("unexpected cached balances: %+v", status.Balances)
	}
}

func TestStatusCacheExpiry(t *testing.T) {
	ex := &stubExchange{balances: []domain.Balance{{Asset: "BTC", Free: 1}}}
	svc, mr := newTestStatusService(t, ex, true)

	if _, err := svc.Status(context.Background(), "bot1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mr.FastForward(2 * time.Second)
	if _, err := svc.Status(context.Background(), "bot1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ex.balanceCalls != 2 {
		t.Fatalf("expected cache expiry to trigger a refetch, got %d calls", ex.balanceCalls)
	}
}

func TestCacheGetTreatsAbsentKeyAsMiss(t *testing.T) {
	svc, _ := newTestStatusService(t, &stubExchange{}, true)

	var out domain.AccountStatus
	if svc.cacheGet(context.Background(), "status:nothing", &out) {
		t.Fatal("expected a miss for an absent key")
	}

	svc.cacheSet(context.Background(), "status:nothing", &domain.AccountStatus{
		Balances: []domain.Balance{{Asset: "BTC", Free: 1}},
	})
	if !svc.cacheGet(context.Background(), "status:nothing", &out) {
		t.Fatal("expected a hit after the key was written")
	}
	if len(out.Balances) != 1 || out.Balances[0].Asset != "BTC" {
		t.Fatalf("unexpected cached value: %+v", out)
	}
}

func TestStatusExchangeFailure(t *testing.T) {
	ex := &stubExchange{balancesErr: errors.New("account endpoint down")}
	svc, _ := newTestStatusService(t, ex, false)

	if _, err := svc.Status(context.Background(), "bot1"); err == nil {
		t.Fatal("expected error when balances cannot be fetched")
	}
}

func TestSymbolBalanceMatchesAsset(t *testing.T) {
	ex := &stubExchange{balances: []domain.Balance{
		{Asset: "ETH", Free: 3},
		{Asset: "BTC", Free: 0.5, Locked: 0.1},
	}}
	svc, _ := newTestStatusService(t, ex, false)

	balance, err := svc.SymbolBalance(context.Background(), "bot1", "btcusdt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance.Asset != "BTC" || balance.Free != 0.5 {
		t.Fatalf("unexpected balance: %+v", balance)
	}
}

func TestSymbolBalanceUnheldAssetIsZero(t *testing.T) {
	ex := &stubExchange{balances: []domain.Balance{{Asset: "ETH", Free: 3}}}
	svc, _ := newTestStatusService(t, ex, false)

	balance, err := svc.SymbolBalance(context.Background(), "bot1", "DOGEUSDT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance.Asset != "DOGEUSDT" || balance.Total() != 0 {
		t.Fatalf("expected zero balance for unheld asset, got %+v", balance)
	}
}

func TestTradesLimitDefaultsAndCaps(t *testing.T) {
	ex := &stubExchange{trades: []domain.TradeRecord{{Symbol: "BTCUSDT"}}}
	svc, _ := newTestStatusService(t, ex, false)

	if _, err := svc.Trades(context.Background(), "bot1", "BTCUSDT", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ex.lastTradeLimit != 10 {
		t.Fatalf("expected default limit 10, got %d", ex.lastTradeLimit)
	}

	if _, err := svc.Trades(context.Background(), "bot1", "BTCUSDT", 500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ex.lastTradeLimit != 100 {
		t.Fatalf("expected capped limit 100, got %d", ex.lastTradeLimit)
	}
}

func TestTradesServedFromCache(t *testing.T) {
	ex := &stubExchange{trades: []domain.TradeRecord{{Symbol: "BTCUSDT", Price: 27000}}}
	svc, _ := newTestStatusService(t, ex, true)

	if _, err := svc.Trades(context.Background(), "bot1", "BTCUSDT", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	trades, err := svc.Trades(context.Background(), "bot1", "BTCUSDT", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ex.tradeCalls != 1 {
		t.Fatalf("expected second call to hit the cache, got %d exchange calls", ex.tradeCalls)
	}
	if len(trades) != 1 || trades[0].Price != 27000 {
		t.Fatalf("unexpected cached trades: %+v", trades)
	}
}

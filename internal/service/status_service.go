package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"tradehook/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTradeLimit  = 10
	maxTradeLimit      = 100
	defaultSnapshotTTL = 10 * time.Second
)

// StatusService backs the read-only account endpoints. Exchange snapshots
// are cached in Redis for a short TTL so duplicate alert bursts do not hammer
// the exchange; the cache is strictly best-effort and a nil client disables
// it.
type StatusService struct {
	tracer   trace.Tracer
	tenants  TenantDirectory
	exchange ExchangeFactory
	cache    *redis.Client
	ttl      time.Duration
}

func NewStatusService(
	tracer trace.Tracer,
	tenants TenantDirectory,
	exchange ExchangeFactory,
	cache *redis.Client,
	ttl time.Duration,
) *StatusService {
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	return &StatusService{
		tracer:   tracer,
		tenants:  tenants,
		exchange: exchange,
		cache:    cache,
		ttl:      ttl,
	}
}

// Status returns the tenant's balances and open orders.
func (s *StatusService) Status(ctx context.Context, tenantID string) (*domain.AccountStatus, error) {
	ctx, span := s.tracer.Start(ctx, "status-service.status")
	defer span.End()

	tenant, err := s.tenants.Resolve(tenantID)
	if err != nil {
		return nil, err
	}

	key := "status:" + tenant.ID
	var cached domain.AccountStatus
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	ex := s.exchange(tenant)
	balances, err := ex.AccountBalances(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch balances for tenant %s: %w", tenant.ID, err)
	}
	orders, err := ex.OpenOrders(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("fetch open orders for tenant %s: %w", tenant.ID, err)
	}

	status := &domain.AccountStatus{Balances: balances, OpenOrders: orders}
	s.cacheSet(ctx, key, status)
	return status, nil
}

// SymbolBalance returns the balance for the asset the symbol is denominated
// in. An unheld asset yields a zero balance, not an error.
func (s *StatusService) SymbolBalance(ctx context.Context, tenantID, symbol string) (*domain.Balance, error) {
	ctx, span := s.tracer.Start(ctx, "status-service.symbol-balance")
	defer span.End()

	tenant, err := s.tenants.Resolve(tenantID)
	if err != nil {
		return nil, err
	}

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	key := "balance:" + tenant.ID + ":" + symbol
	var cached domain.Balance
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	balances, err := s.exchange(tenant).AccountBalances(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch balances for tenant %s: %w", tenant.ID, err)
	}

	balance := matchBalance(balances, symbol)
	if balance == nil {
		balance = &domain.Balance{Asset: symbol}
	}
	s.cacheSet(ctx, key, balance)
	return balance, nil
}

// Trades returns the most recent trades for symbol, newest first. Limit
// defaults to 10 and is capped at 100.
func (s *StatusService) Trades(ctx context.Context, tenantID, symbol string, limit int) ([]domain.TradeRecord, error) {
	ctx, span := s.tracer.Start(ctx, "status-service.trades")
	defer span.End()

	tenant, err := s.tenants.Resolve(tenantID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultTradeLimit
	}
	if limit > maxTradeLimit {
		limit = maxTradeLimit
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	key := fmt.Sprintf("trades:%s:%s:%d", tenant.ID, symbol, limit)
	var cached []domain.TradeRecord
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	trades, err := s.exchange(tenant).RecentTrades(ctx, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch trades for tenant %s %s: %w", tenant.ID, symbol, err)
	}
	s.cacheSet(ctx, key, trades)
	return trades, nil
}

func (s *StatusService) cacheGet(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("snapshot cache read failed for %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Printf("snapshot cache decode failed for %s: %v", key, err)
		return false
	}
	return true
}

func (s *StatusService) cacheSet(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		log.Printf("snapshot cache encode failed for %s: %v", key, err)
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		log.Printf("snapshot cache write failed for %s: %v", key, err)
	}
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"tradehook/internal/domain"
	"tradehook/internal/notify"

	"go.opentelemetry.io/otel/trace"
)

// Exchange is the per-tenant trading capability consumed by the services.
type Exchange interface {
	CreateMarketOrder(ctx context.Context, symbol, side string, quantity float64) (*domain.OrderAck, error)
	AccountBalances(ctx context.Context) ([]domain.Balance, error)
	RecentTrades(ctx context.Context, symbol string, limit int) ([]domain.TradeRecord, error)
	OpenOrders(ctx context.Context, symbol string) ([]domain.OpenOrder, error)
}

// ExchangeFactory builds the exchange client for one tenant's credentials.
type ExchangeFactory func(cfg *domain.TenantConfig) Exchange

type TenantDirectory interface {
	Resolve(id string) (*domain.TenantConfig, error)
}

type Notifier interface {
	Send(ctx context.Context, cfg *domain.TenantConfig, text string) error
}

// WebhookResult is the successful outcome of one webhook invocation. The
// order always executed; Notified records whether chat delivery worked too.
type WebhookResult struct {
	Signal   domain.Signal
	Order    *domain.OrderAck
	Notified bool
}

// WebhookService sequences tenant resolution, validation, order dispatch,
// enrichment and notification for one inbound signal.
type WebhookService struct {
	tracer   trace.Tracer
	tenants  TenantDirectory
	exchange ExchangeFactory
	notifier Notifier
}

func NewWebhookService(
	tracer trace.Tracer,
	tenants TenantDirectory,
	exchange ExchangeFactory,
	notifier Notifier,
) *WebhookService {
	return &WebhookService{
		tracer:   tracer,
		tenants:  tenants,
		exchange: exchange,
		notifier: notifier,
	}
}

// Process runs the full pipeline. Tenant-resolution and validation errors
// abort before any exchange call; a dispatch error aborts before any
// notification attempt. Once the order succeeded, enrichment and
// notification failures are logged and absorbed: the result still reports
// success with the order payload.
func (s *WebhookService) Process(ctx context.Context, tenantID string, payload map[string]any) (*WebhookResult, error) {
	ctx, span := s.tracer.Start(ctx, "webhook-service.process")
	defer span.End()

	tenant, err := s.tenants.Resolve(tenantID)
	if err != nil {
		return nil, err
	}

	log.Printf("tenant %s: received webhook payload: %v", tenant.ID, payload)

	sig, err := parseSignal(payload)
	if err != nil {
		return nil, err
	}

	ex := s.exchange(tenant)
	ack, err := ex.CreateMarketOrder(ctx, sig.Symbol, sig.Action.Side(), sig.Quantity)
	if err != nil {
		log.Printf("tenant %s: failed to execute %s order for %s: %v", tenant.ID, sig.Action, sig.Symbol, err)
		return nil, &domain.OrderExecutionError{Err: err}
	}
	log.Printf("tenant %s: order %d executed: %s %s qty=%s",
		tenant.ID, ack.OrderID, ack.Side, sig.Symbol, strconv.FormatFloat(sig.Quantity, 'f', -1, 64))

	balance, trade := s.enrich(ctx, tenant.ID, ex, sig.Symbol)

	result := &WebhookResult{Signal: sig, Order: ack}
	text := notify.FormatOrderMessage(sig, ack, balance, trade)
	if err := s.notifier.Send(ctx, tenant, text); err != nil {
		log.Printf("tenant %s: notification failed after successful order %d: %v", tenant.ID, ack.OrderID, err)
	} else {
		result.Notified = true
	}
	return result, nil
}

// enrich performs the best-effort post-order lookups. Each one degrades to
// an absent value on failure; it never fails the pipeline.
func (s *WebhookService) enrich(ctx context.Context, tenantID string, ex Exchange, symbol string) (*domain.Balance, *domain.TradeRecord) {
	ctx, span := s.tracer.Start(ctx, "webhook-service.enrich")
	defer span.End()

	var balance *domain.Balance
	balances, err := ex.AccountBalances(ctx)
	if err != nil {
		log.Printf("tenant %s: balance lookup failed for %s: %v", tenantID, symbol, err)
	} else {
		balance = matchBalance(balances, symbol)
	}

	var trade *domain.TradeRecord
	trades, err := ex.RecentTrades(ctx, symbol, 1)
	if err != nil {
		log.Printf("tenant %s: trade lookup failed for %s: %v", tenantID, symbol, err)
	} else if len(trades) > 0 {
		trade = &trades[0]
	}

	return balance, trade
}

// matchBalance picks the first asset the symbol is denominated in, e.g.
// BTC for BTCUSDT. Dust-only balances are skipped.
func matchBalance(balances []domain.Balance, symbol string) *domain.Balance {
	symbol = strings.ToUpper(symbol)
	for _, b := range balances {
		if b.Total() <= 0 {
			continue
		}
		asset := strings.ToUpper(b.Asset)
		if asset == symbol || strings.HasPrefix(symbol, asset) {
			match := b
			return &match
		}
	}
	return nil
}

// parseSignal validates a decoded webhook payload. Checks short-circuit in
// order, each with its own error kind, so callers can name the exact
// offending condition.
func parseSignal(payload map[string]any) (domain.Signal, error) {
	if len(payload) == 0 {
		return domain.Signal{}, &domain.ValidationError{Kind: domain.ValidationMalformedPayload}
	}

	for _, field := range []string{"action", "symbol", "quantity"} {
		if _, ok := payload[field]; !ok {
			return domain.Signal{}, &domain.ValidationError{Kind: domain.ValidationMissingField, Field: field}
		}
	}

	rawAction, _ := payload["action"].(string)
	action := domain.Action(strings.ToUpper(strings.TrimSpace(rawAction)))
	if !action.IsValid() {
		return domain.Signal{}, &domain.ValidationError{Kind: domain.ValidationInvalidAction}
	}

	quantity, err := parseQuantity(payload["quantity"])
	if err != nil || math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity <= 0 {
		return domain.Signal{}, &domain.ValidationError{Kind: domain.ValidationInvalidQuantity}
	}

	rawSymbol, _ := payload["symbol"].(string)
	symbol := strings.ToUpper(strings.TrimSpace(rawSymbol))
	if symbol == "" {
		return domain.Signal{}, &domain.ValidationError{Kind: domain.ValidationMissingField, Field: "symbol"}
	}

	return domain.Signal{Action: action, Symbol: symbol, Quantity: quantity}, nil
}

// parseQuantity accepts both JSON numbers and numeric strings; the upstream
// alert templates emit either.
func parseQuantity(v any) (float64, error) {
	switch q := v.(type) {
	case float64:
		return q, nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(q), 64)
	case json.Number:
		return q.Float64()
	default:
		return 0, fmt.Errorf("quantity has unsupported type %T", v)
	}
}

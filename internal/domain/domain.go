package domain

import "time"

// Action is a trading instruction carried by an inbound webhook payload.
type Action string

const (
	ActionBuy        Action = "BUY"
	ActionSell       Action = "SELL"
	ActionTakeProfit Action = "TAKE_PROFIT"
	ActionStopLoss   Action = "STOP_LOSS"
)

func (a Action) IsValid() bool {
	switch a {
	case ActionBuy, ActionSell, ActionTakeProfit, ActionStopLoss:
		return true
	}
	return false
}

// Side maps the action to the exchange order side. Every non-BUY action is
// submitted as a plain market sell, matching the upstream alerting contract.
func (a Action) Side() string {
	if a == ActionBuy {
		return "BUY"
	}
	return "SELL"
}

// Signal is a validated instruction extracted from a webhook payload.
// Invariants: Action is valid, Symbol is upper-case and non-empty,
// Quantity > 0.
type Signal struct {
	Action   Action  `json:"action"`
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
}

// TenantConfig holds one tenant's exchange credentials and chat target.
// Built once at startup and never mutated afterwards.
type TenantConfig struct {
	ID               string `json:"-"`
	BinanceAPIKey    string `json:"binance_api_key"`
	BinanceSecretKey string `json:"binance_secret_key"`
	TelegramBotToken string `json:"telegram_bot_token"`
	TelegramChatID   int64  `json:"telegram_chat_id"`
}

// OrderAck is the exchange acknowledgment for an executed market order.
type OrderAck struct {
	OrderID         int64   `json:"order_id"`
	Symbol          string  `json:"symbol"`
	Side            string  `json:"side"`
	Status          string  `json:"status"`
	ExecutedQty     float64 `json:"executed_qty"`
	CumulativeQuote float64 `json:"cumulative_quote"`
	Price           float64 `json:"price,omitempty"`
	TransactTime    int64   `json:"transact_time"`
}

type Balance struct {
	Asset  string  `json:"asset"`
	Free   float64 `json:"free"`
	Locked float64 `json:"locked"`
}

func (b Balance) Total() float64 {
	return b.Free + b.Locked
}

type TradeRecord struct {
	Symbol          string    `json:"symbol"`
	Time            time.Time `json:"time"`
	IsBuyer         bool      `json:"is_buyer"`
	Price           float64   `json:"price"`
	Quantity        float64   `json:"quantity"`
	Commission      float64   `json:"commission"`
	CommissionAsset string    `json:"commission_asset"`
}

func (t TradeRecord) Total() float64 {
	return t.Price * t.Quantity
}

type OpenOrder struct {
	OrderID int64   `json:"order_id"`
	Symbol  string  `json:"symbol"`
	Side    string  `json:"side"`
	Type    string  `json:"type"`
	Price   float64 `json:"price"`
	OrigQty float64 `json:"orig_qty"`
	Status  string  `json:"status"`
}

// AccountStatus is the read-only snapshot served by /status/{id}.
type AccountStatus struct {
	Balances   []Balance   `json:"balances"`
	OpenOrders []OpenOrder `json:"open_orders"`
}

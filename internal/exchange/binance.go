package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"tradehook/internal/domain"
)

const (
	// Binance spot testnet, matching the environment the upstream alerts
	// were pointed at.
	DefaultBaseURL = "https://testnet.binance.vision"

	defaultTimeout = 10 * time.Second
)

// Client is a tenant-scoped Binance REST client. It holds no mutable state
// beyond the shared http.Client, so a single instance is safe for concurrent
// in-flight requests.
type Client struct {
	baseURL    string
	apiKey     string
	secretKey  string
	httpClient *http.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func NewClient(apiKey, secretKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type orderResponse struct {
	OrderID         int64  `json:"orderId"`
	Symbol          string `json:"symbol"`
	Side            string `json:"side"`
	Status          string `json:"status"`
	ExecutedQty     string `json:"executedQty"`
	Price           string `json:"price"`
	CumulativeQuote string `json:"cummulativeQuoteQty"`
	TransactTime    int64  `json:"transactTime"`
}

type accountResponse struct {
	Balances []struct {
		Asset  string `json:"asset"`
		Free   string `json:"free"`
		Locked string `json:"locked"`
	} `json:"balances"`
}

type tradeResponse struct {
	Symbol          string `json:"symbol"`
	Time            int64  `json:"time"`
	IsBuyer         bool   `json:"isBuyer"`
	Price           string `json:"price"`
	Qty             string `json:"qty"`
	Commission      string `json:"commission"`
	CommissionAsset string `json:"commissionAsset"`
}

type openOrderResponse struct {
	OrderID int64  `json:"orderId"`
	Symbol  string `json:"symbol"`
	Side    string `json:"side"`
	Type    string `json:"type"`
	Price   string `json:"price"`
	OrigQty string `json:"origQty"`
	Status  string `json:"status"`
}

// CreateMarketOrder submits one immediate market order and returns the
// exchange acknowledgment. A response without an order id is treated as a
// rejection.
func (c *Client) CreateMarketOrder(ctx context.Context, symbol, side string, quantity float64) (*domain.OrderAck, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", side)
	params.Set("type", "MARKET")
	params.Set("quantity", formatDecimal(quantity))

	var resp orderResponse
	if err := c.signedRequest(ctx, http.MethodPost, "/api/v3/order", params, &resp); err != nil {
		return nil, err
	}
	if resp.OrderID == 0 {
		return nil, fmt.Errorf("binance returned no orderId for %s %s", side, symbol)
	}

	return &domain.OrderAck{
		OrderID:         resp.OrderID,
		Symbol:          resp.Symbol,
		Side:            resp.Side,
		Status:          resp.Status,
		ExecutedQty:     parseDecimal(resp.ExecutedQty),
		CumulativeQuote: parseDecimal(resp.CumulativeQuote),
		Price:           parseDecimal(resp.Price),
		TransactTime:    resp.TransactTime,
	}, nil
}

// AccountBalances returns every non-zero balance on the account.
func (c *Client) AccountBalances(ctx context.Context) ([]domain.Balance, error) {
	var resp accountResponse
	if err := c.signedRequest(ctx, http.MethodGet, "/api/v3/account", url.Values{}, &resp); err != nil {
		return nil, err
	}

	balances := make([]domain.Balance, 0, len(resp.Balances))
	for _, b := range resp.Balances {
		balance := domain.Balance{
			Asset:  b.Asset,
			Free:   parseDecimal(b.Free),
			Locked: parseDecimal(b.Locked),
		}
		if balance.Total() <= 0 {
			continue
		}
		balances = append(balances, balance)
	}
	return balances, nil
}

// RecentTrades returns the most recent trades for symbol, newest first.
func (c *Client) RecentTrades(ctx context.Context, symbol string, limit int) ([]domain.TradeRecord, error) {
	if limit <= 0 {
		limit = 1
	}
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("limit", strconv.Itoa(limit))

	var resp []tradeResponse
	if err := c.signedRequest(ctx, http.MethodGet, "/api/v3/myTrades", params, &resp); err != nil {
		return nil, err
	}

	trades := make([]domain.TradeRecord, 0, len(resp))
	// Binance returns trades oldest first; reverse so callers get the
	// latest at index 0.
	for i := len(resp) - 1; i >= 0; i-- {
		t := resp[i]
		trades = append(trades, domain.TradeRecord{
			Symbol:          t.Symbol,
			Time:            time.UnixMilli(t.Time).UTC(),
			IsBuyer:         t.IsBuyer,
			Price:           parseDecimal(t.Price),
			Quantity:        parseDecimal(t.Qty),
			Commission:      parseDecimal(t.Commission),
			CommissionAsset: t.CommissionAsset,
		})
	}
	return trades, nil
}

// OpenOrders returns the account's open orders, optionally scoped to symbol.
func (c *Client) OpenOrders(ctx context.Context, symbol string) ([]domain.OpenOrder, error) {
	params := url.Values{}
	if symbol != "" {
		params.Set("symbol", symbol)
	}

	var resp []openOrderResponse
	if err := c.signedRequest(ctx, http.MethodGet, "/api/v3/openOrders", params, &resp); err != nil {
		return nil, err
	}

	orders := make([]domain.OpenOrder, 0, len(resp))
	for _, o := range resp {
		orders = append(orders, domain.OpenOrder{
			OrderID: o.OrderID,
			Symbol:  o.Symbol,
			Side:    o.Side,
			Type:    o.Type,
			Price:   parseDecimal(o.Price),
			OrigQty: parseDecimal(o.OrigQty),
			Status:  o.Status,
		})
	}
	return orders, nil
}

func (c *Client) signedRequest(ctx context.Context, method, path string, params url.Values, out any) error {
	endpoint, err := c.signedEndpoint(path, params)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-MBX-APIKEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("binance %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("binance rejected %s %s (status %d)", method, path, resp.StatusCode)
		}
		return fmt.Errorf("binance rejected %s %s (status %d): %s", method, path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode binance response for %s: %w", path, err)
	}
	return nil
}

func (c *Client) signedEndpoint(path string, params url.Values) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	base.Path = path

	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	params.Set("signature", signQuery(params.Encode(), c.secretKey))
	base.RawQuery = params.Encode()

	return base.String(), nil
}

func signQuery(message, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

func formatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseDecimal(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

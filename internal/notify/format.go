package notify

import (
	"strconv"
	"strings"

	"tradehook/internal/domain"
)

// Balances at or below this total are treated as dust and omitted from the
// notification.
const dustThreshold = 1e-8

var actionGlyphs = map[domain.Action]string{
	domain.ActionBuy:        "🟢",
	domain.ActionSell:       "🔴",
	domain.ActionTakeProfit: "💰",
	domain.ActionStopLoss:   "🛑",
}

var markdownEscaper = strings.NewReplacer(
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(", ")", "\\)",
	"~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#", "+", "\\+", "-", "\\-",
	"=", "\\=", "|", "\\|", "{", "\\{", "}", "\\}", ".", "\\.", "!", "\\!",
)

// Escape neutralises every character MarkdownV2 reserves, so symbol names
// and amounts coming from user-controlled payloads cannot corrupt rendering.
func Escape(s string) string {
	return markdownEscaper.Replace(s)
}

// FormatOrderMessage renders the Telegram notification for an executed
// order. Balance and trade are optional enrichment: a nil value (or a dust
// balance) simply omits that block.
func FormatOrderMessage(sig domain.Signal, ack *domain.OrderAck, balance *domain.Balance, trade *domain.TradeRecord) string {
	var b strings.Builder

	b.WriteString(actionGlyphs[sig.Action])
	b.WriteString(" *")
	b.WriteString(Escape(string(sig.Action)))
	b.WriteString("* order executed for ")
	b.WriteString(Escape(sig.Symbol))
	b.WriteString(Escape(". Quantity: " + strconv.FormatFloat(sig.Quantity, 'f', -1, 64)))
	if ack != nil {
		b.WriteString("\nOrder ID: ")
		b.WriteString(strconv.FormatInt(ack.OrderID, 10))
	}

	if balance != nil && balance.Total() > dustThreshold {
		b.WriteString("\n\n*Balance* ")
		b.WriteString(Escape(balance.Asset))
		b.WriteString("\nFree: ")
		b.WriteString(amount(balance.Free))
		b.WriteString("\nLocked: ")
		b.WriteString(amount(balance.Locked))
		b.WriteString("\nTotal: ")
		b.WriteString(amount(balance.Total()))
	}

	if trade != nil {
		b.WriteString("\n\n*Last trade*")
		b.WriteString("\nPrice: ")
		b.WriteString(amount(trade.Price))
		b.WriteString("\nTotal: ")
		b.WriteString(amount(trade.Total()))
		b.WriteString("\nCommission: ")
		b.WriteString(amount(trade.Commission))
		b.WriteString(" ")
		b.WriteString(Escape(trade.CommissionAsset))
	}

	return b.String()
}

func amount(v float64) string {
	return Escape(strconv.FormatFloat(v, 'f', 8, 64))
}

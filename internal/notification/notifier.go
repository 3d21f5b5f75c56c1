// Package notification provides alert delivery to external channels
// (Telegram, webhooks) for trading events: executed fills and
// high-confidence signals.
package notification

import (
	"context"
	"fmt"
	"log"

	"github.com/akashpant12/banknifty-trading/internal/model"
	"github.com/akashpant12/banknifty-trading/internal/strategy"
)

// AlertLevel represents the severity of an alert.
type AlertLevel string

const (
	AlertInfo     AlertLevel = "INFO"
	AlertWarning  AlertLevel = "WARNING"
	AlertCritical AlertLevel = "CRITICAL"
)

// Alert represents a notification to be sent.
type Alert struct {
	Level   AlertLevel `json:"level"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
}

// Notifier is the interface for all notification backends.
type Notifier interface {
	// Send delivers an alert. Returns error if delivery fails.
	Send(ctx context.Context, alert Alert) error
}

// LogNotifier is a simple notifier that logs alerts (useful for development).
type LogNotifier struct{}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, alert Alert) error {
	log.Printf("[notify] [%s] %s: %s", alert.Level, alert.Title, alert.Message)
	return nil
}

// Multi fans an alert out to several backends. Every backend is attempted;
// the first delivery error is returned.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, alert Alert) error {
	var firstErr error
	for _, n := range m {
		if err := n.Send(ctx, alert); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// TradeAlert builds the alert for an executed fill.
func TradeAlert(o model.Order) Alert {
	msg := fmt.Sprintf("%s %d x %s @ %.2f", o.Side, o.Quantity, o.Symbol, o.Price)
	if o.Strategy != "" {
		msg += fmt.Sprintf(" (%s)", o.Strategy)
	}
	if o.Side == model.SideSell {
		msg += fmt.Sprintf(", P&L %.2f", o.ProfitLoss)
	}
	return Alert{Level: AlertInfo, Title: "Trade Executed", Message: msg}
}

// SignalAlert builds the alert for a high-confidence signal.
func SignalAlert(s strategy.Signal) Alert {
	return Alert{
		Level: AlertWarning,
		Title: fmt.Sprintf("%s Signal", s.Strategy),
		Message: fmt.Sprintf("%s (confidence %.0f%%, target %.2f, stop %.2f)",
			s.Action, s.Confidence*100, s.Target, s.StopLoss),
	}
}

package strategy

import (
	"testing"

	"github.com/akashpant12/banknifty-trading/internal/model"
)

func TestCombined_TwoAgreeingBuys(t *testing.T) {
	e := NewEngine()
	// Steady decline, 30 points: RSI hits 0 (BUY, confidence 1.0) and price
	// sits within 0.5% of the lower Bollinger band (BUY, confidence 0.7).
	// MA has no fresh cross; MACD is below its 35-point minimum.
	price := 52000.0
	for i := 0; i < 30; i++ {
		price -= 15
		e.Observe(quote(price))
	}

	sig := e.AnalyzeCombined(quote(price))
	if sig == nil {
		t.Fatal("two agreeing BUY votes: want combined signal, got nil")
	}
	if sig.Action != ActionBuy {
		t.Errorf("action = %s, want BUY", sig.Action)
	}
	if sig.Strategy != "Combined (Multi)" {
		t.Errorf("strategy = %q, want Combined (Multi)", sig.Strategy)
	}
	// Mean of agreeing confidences: (1.0 + 0.7) / 2
	assertClose(t, "confidence", sig.Confidence, 0.85, 0.01)
}

func TestCombined_OneBuyOneSellDisagreement(t *testing.T) {
	e := NewEngine()
	// Gentle rise in tiny steps: every recent delta is positive, so RSI is
	// 100 (SELL). The window is so calm that the price stays within 0.5% of
	// the lower band, so Bollinger votes BUY. One buy + one sell must not
	// produce a combined signal.
	price := 52000.0
	for i := 0; i < 34; i++ {
		price += 0.5
		e.Observe(quote(price))
	}

	if sig := e.AnalyzeCombined(quote(price)); sig != nil {
		t.Fatalf("1 BUY + 1 SELL: want nil combined signal, got %+v", sig)
	}

	// The disagreeing sub-signals themselves are still logged.
	var sawBuy, sawSell, sawCombined bool
	for _, s := range e.GetSignals() {
		switch {
		case s.Strategy == "Combined (Multi)":
			sawCombined = true
		case s.Action == ActionBuy:
			sawBuy = true
		case s.Action == ActionSell:
			sawSell = true
		}
	}
	if !sawBuy || !sawSell {
		t.Errorf("want both a BUY and a SELL sub-signal logged (buy=%v sell=%v)", sawBuy, sawSell)
	}
	if sawCombined {
		t.Error("combined signal must not be logged on disagreement")
	}
}

func TestCombined_SingleVoteIsNotEnough(t *testing.T) {
	e := NewEngine()
	// 15 falling points: only RSI is past its minimum history; one BUY vote.
	price := 52000.0
	for i := 0; i < 15; i++ {
		price -= 25
		e.Observe(quote(price))
	}

	if sig := e.AnalyzeCombined(quote(price)); sig != nil {
		t.Fatalf("single agreeing vote: want nil, got %+v", sig)
	}
}

func TestCombined_SteadyTrendSingleVote(t *testing.T) {
	e := NewEngine()
	// Strong steady uptrend, large steps: RSI pins at 100 (one SELL vote),
	// but the bands are wide enough that Bollinger stays silent, the MAs
	// never flip on the final tick, and the MACD line stays above its
	// signal without crossing. One vote is below the agreement threshold.
	price := 52000.0
	for i := 0; i < 60; i++ {
		price += 300
		e.Observe(quote(price))
	}
	q := model.Quote{Symbol: "BANKNIFTY", LastPrice: price, Open: 52000}

	if sig := e.AnalyzeCombined(q); sig != nil {
		t.Errorf("single SELL vote: want nil, got %+v", sig)
	}
}

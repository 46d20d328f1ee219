package calculator

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"QuoteDesk/internal/model"
)

// Summary condenses a price series for display.
type Summary struct {
	Bars       int
	FirstClose float64
	LastClose  float64
	ChangePct  decimal.Decimal // rounded to two places
	High       float64
	Low        float64
	SMA20      float64 // zero when fewer than 20 bars
	RSI14      float64
}

// Summarize computes the display summary of bars, which must be in
// chronological order.
func Summarize(bars []model.OHLCV) (*Summary, error) {
	if len(bars) == 0 {
		return nil, errors.New("no bars provided")
	}
	closes := extractCloses(bars)
	first, last := closes[0], closes[len(closes)-1]

	high, low := priceRange(bars)
	s := &Summary{
		Bars:       len(bars),
		FirstClose: first,
		LastClose:  last,
		High:       high,
		Low:        low,
		RSI14:      RSI(closes, 14),
	}
	if first != 0 {
		s.ChangePct = decimal.NewFromFloat(last).
			Sub(decimal.NewFromFloat(first)).
			Div(decimal.NewFromFloat(first)).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}
	if sma, err := SMA(closes, 20); err == nil {
		s.SMA20 = sma
	}
	return s, nil
}

// priceRange returns the highest high and lowest low over bars.
func priceRange(bars []model.OHLCV) (high, low float64) {
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, b := range bars {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	return high, low
}

func extractCloses(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

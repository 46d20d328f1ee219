package collector

import (
	"context"

	"QuoteDesk/internal/model"
)

// Fetcher retrieves price history for a query.
type Fetcher interface {
	FetchHistory(ctx context.Context, q model.PriceQuery) ([]model.OHLCV, error)
	Name() string
}

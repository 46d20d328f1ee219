package model

import (
	"time"

	"QuoteDesk/internal/period"
)

// PriceQuery is a single price-history request issued through the facade.
type PriceQuery struct {
	ID     string
	Owner  string // chat or job that issued the query
	Symbol string
	Code   period.Code
	From   *time.Time // set only for custom ranges
	To     *time.Time
	Issued time.Time
}

// HasRange reports whether explicit custom dates were forwarded.
func (q PriceQuery) HasRange() bool {
	return q.From != nil && q.To != nil
}

// QueryResult is published on the facade stream once a query completes.
type QueryResult struct {
	Query     PriceQuery
	Bars      []OHLCV
	Source    string
	Cached    bool
	Err       error
	Completed time.Time
}

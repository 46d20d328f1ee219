package collector

import (
	"context"
	"sync"
	"time"

	"QuoteDesk/internal/model"
	"QuoteDesk/internal/period"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Bars  []model.OHLCV
	Err   error
	Now   func() time.Time

	mu    sync.Mutex
	calls []model.PriceQuery
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(_ context.Context, q model.PriceQuery) ([]model.OHLCV, error) {
	m.mu.Lock()
	m.calls = append(m.calls, q)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return m.Bars, nil
	}
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	return generateMockBars(m.Price, mockBarCount(q.Code), now()), nil
}

// Calls returns the queries received so far.
func (m *MockFetcher) Calls() []model.PriceQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.PriceQuery(nil), m.calls...)
}

func mockBarCount(code period.Code) int {
	switch code {
	case period.CodeFiveDays:
		return 5
	case period.CodeOneMonth:
		return 22
	case period.CodeThreeMonth:
		return 63
	case period.CodeSixMonths:
		return 126
	case period.CodeOneYear:
		return 252
	}
	if code.IsFixedDate() {
		return 1
	}
	return 504
}

func generateMockBars(basePrice float64, count int, end time.Time) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

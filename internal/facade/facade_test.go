package facade

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"QuoteDesk/internal/collector"
	"QuoteDesk/internal/model"
	"QuoteDesk/internal/period"
	"QuoteDesk/internal/recorder"
)

type memRecorder struct {
	mu     sync.Mutex
	events []recorder.QueryEvent
}

func (m *memRecorder) RecordQuery(evt *recorder.QueryEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *evt)
	return nil
}

func (m *memRecorder) RecentQueries(string, int) ([]recorder.QueryEvent, error) { return nil, nil }
func (m *memRecorder) Close() error                                             { return nil }

func (m *memRecorder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func receive(t *testing.T, ch <-chan model.QueryResult) model.QueryResult {
	t.Helper()
	select {
	case res, ok := <-ch:
		if !ok {
			t.Fatal("stream closed unexpectedly")
		}
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for result")
	}
	return model.QueryResult{}
}

func TestFetchQuote_PublishesResult(t *testing.T) {
	mf := &collector.MockFetcher{Price: 100}
	rec := &memRecorder{}
	f := New(context.Background(), mf, rec, Options{})
	defer f.Close()

	stream, unsubscribe := f.Subscribe(4)
	defer unsubscribe()

	id := f.FetchQuote("42", "AAPL", period.CodeFiveDays, nil, nil)
	if id == "" {
		t.Fatal("expected a request id")
	}
	res := receive(t, stream)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Query.ID != id || res.Query.Owner != "42" || res.Query.Symbol != "AAPL" {
		t.Errorf("unexpected query %+v", res.Query)
	}
	if len(res.Bars) != 5 || res.Source != "mock" || res.Cached {
		t.Errorf("unexpected result: %d bars, source %s, cached %v", len(res.Bars), res.Source, res.Cached)
	}
	if rec.count() != 1 {
		t.Errorf("expected query recorded, got %d events", rec.count())
	}
}

func TestClient_TagsOwnerAndForwardsDates(t *testing.T) {
	mf := &collector.MockFetcher{Price: 50}
	f := New(context.Background(), mf, nil, Options{})
	defer f.Close()
	stream, unsubscribe := f.Subscribe(1)
	defer unsubscribe()

	from := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
	f.For("chat-9").FetchQuote("MSFT", period.CodeOneMonth, &from, &to)

	res := receive(t, stream)
	if res.Query.Owner != "chat-9" {
		t.Errorf("expected owner chat-9, got %q", res.Query.Owner)
	}
	calls := mf.Calls()
	if len(calls) != 1 || !calls[0].HasRange() || !calls[0].From.Equal(from) || !calls[0].To.Equal(to) {
		t.Errorf("expected dates forwarded to fetcher, got %+v", calls)
	}
}

func TestFetchQuote_CachesBars(t *testing.T) {
	mf := &collector.MockFetcher{Price: 10}
	f := New(context.Background(), mf, nil, Options{CacheTTL: time.Minute})
	defer f.Close()
	stream, unsubscribe := f.Subscribe(2)
	defer unsubscribe()

	f.FetchQuote("a", "IBM", period.CodeOneMonth, nil, nil)
	first := receive(t, stream)
	f.FetchQuote("b", "IBM", period.CodeOneMonth, nil, nil)
	second := receive(t, stream)

	if first.Cached || !second.Cached {
		t.Errorf("expected second query served from cache, got %v/%v", first.Cached, second.Cached)
	}
	if len(mf.Calls()) != 1 {
		t.Errorf("expected one upstream fetch, got %d", len(mf.Calls()))
	}
}

func TestFetchQuote_ErrorInResult(t *testing.T) {
	mf := &collector.MockFetcher{Err: errors.New("upstream down")}
	rec := &memRecorder{}
	f := New(context.Background(), mf, rec, Options{})
	defer f.Close()
	stream, unsubscribe := f.Subscribe(1)
	defer unsubscribe()

	f.FetchQuote("a", "IBM", period.CodeOneYear, nil, nil)
	res := receive(t, stream)
	if res.Err == nil {
		t.Fatal("expected error in result")
	}
	if rec.count() != 1 || rec.events[0].Error == "" {
		t.Error("expected failed query recorded with error")
	}
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	f := New(context.Background(), &collector.MockFetcher{Price: 1}, nil, Options{})
	defer f.Close()

	stream, unsubscribe := f.Subscribe(1)
	unsubscribe()
	unsubscribe()
	if _, ok := <-stream; ok {
		t.Error("expected closed stream after unsubscribe")
	}
}

func TestClose_EndsStreamsAndRejectsQueries(t *testing.T) {
	f := New(context.Background(), &collector.MockFetcher{Price: 1}, nil, Options{})
	stream, _ := f.Subscribe(4)

	f.FetchQuote("a", "IBM", period.CodeFiveDays, nil, nil)
	f.Close()

	// the in-flight result is delivered before the stream closes
	if _, ok := <-stream; !ok {
		t.Fatal("expected in-flight result before close")
	}
	if _, ok := <-stream; ok {
		t.Error("expected stream closed")
	}
	if id := f.FetchQuote("a", "IBM", period.CodeFiveDays, nil, nil); id != "" {
		t.Error("expected no request after close")
	}
	late, _ := f.Subscribe(1)
	if _, ok := <-late; ok {
		t.Error("expected closed stream for late subscriber")
	}
}

func TestCacheKey(t *testing.T) {
	from := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	preset := cacheKey(model.PriceQuery{Symbol: "A", Code: period.CodeOneMonth})
	custom := cacheKey(model.PriceQuery{Symbol: "A", Code: period.CodeOneMonth, From: &from, To: &to})
	if preset == custom {
		t.Error("custom range must not share the preset cache entry")
	}
}

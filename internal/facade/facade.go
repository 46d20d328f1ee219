package facade

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"QuoteDesk/internal/collector"
	"QuoteDesk/internal/model"
	"QuoteDesk/internal/period"
	"QuoteDesk/internal/recorder"
)

// Options tunes a Facade. Zero values pick defaults.
type Options struct {
	CacheTTL     time.Duration
	FetchTimeout time.Duration
	Now          func() time.Time
}

// Facade executes price queries asynchronously and streams their results
// to subscribers. Each query runs independently; a new query never cancels
// an earlier one.
type Facade struct {
	ctx     context.Context
	fetcher collector.Fetcher
	rec     recorder.Recorder
	cache   *cache.Cache
	timeout time.Duration
	now     func() time.Time

	mu      sync.Mutex
	subs    map[int]chan model.QueryResult
	nextSub int
	closed  bool
	wg      sync.WaitGroup
}

// New creates a Facade. Queries are cancelled when ctx is done.
func New(ctx context.Context, fetcher collector.Fetcher, rec recorder.Recorder, opts Options) *Facade {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Facade{
		ctx:     ctx,
		fetcher: fetcher,
		rec:     rec,
		cache:   cache.New(opts.CacheTTL, 2*opts.CacheTTL),
		timeout: opts.FetchTimeout,
		now:     opts.Now,
		subs:    make(map[int]chan model.QueryResult),
	}
}

// Client is a Facade bound to the owner of its queries.
type Client struct {
	f     *Facade
	owner string
}

// For returns a client whose queries are tagged with owner.
func (f *Facade) For(owner string) *Client {
	return &Client{f: f, owner: owner}
}

// FetchQuote issues a query on behalf of the client's owner.
func (c *Client) FetchQuote(symbol string, code period.Code, from, to *time.Time) {
	c.f.FetchQuote(c.owner, symbol, code, from, to)
}

// FetchQuote starts a query and returns its request ID. The result is
// delivered on the subscription stream. After Close it returns "".
func (f *Facade) FetchQuote(owner, symbol string, code period.Code, from, to *time.Time) string {
	q := model.PriceQuery{
		ID:     uuid.NewString(),
		Owner:  owner,
		Symbol: symbol,
		Code:   code,
		From:   copyTime(from),
		To:     copyTime(to),
		Issued: f.now(),
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		zap.S().Warnf("facade closed, dropping query %s %s", symbol, code)
		return ""
	}
	f.wg.Add(1)
	f.mu.Unlock()

	zap.S().Infof("query %s: owner=%s symbol=%s period=%s", q.ID, owner, symbol, code)
	go func() {
		defer f.wg.Done()
		f.publish(f.execute(q))
	}()
	return q.ID
}

func (f *Facade) execute(q model.PriceQuery) model.QueryResult {
	res := model.QueryResult{Query: q, Source: f.fetcher.Name()}

	key := cacheKey(q)
	if v, ok := f.cache.Get(key); ok {
		res.Bars = v.([]model.OHLCV)
		res.Cached = true
	} else {
		ctx, cancel := context.WithTimeout(f.ctx, f.timeout)
		bars, err := f.fetcher.FetchHistory(ctx, q)
		cancel()
		if err != nil {
			zap.S().Errorf("query %s failed: %v", q.ID, err)
			res.Err = fmt.Errorf("fetch %s %s: %w", q.Symbol, q.Code, err)
		} else {
			res.Bars = bars
			f.cache.SetDefault(key, bars)
		}
	}
	res.Completed = f.now()

	f.record(res)
	return res
}

func (f *Facade) record(res model.QueryResult) {
	evt := &recorder.QueryEvent{
		Timestamp: res.Completed,
		Owner:     res.Query.Owner,
		RequestID: res.Query.ID,
		Symbol:    res.Query.Symbol,
		Code:      string(res.Query.Code),
		From:      res.Query.From,
		To:        res.Query.To,
		Source:    res.Source,
		Bars:      len(res.Bars),
	}
	if n := len(res.Bars); n > 0 {
		evt.LastClose = res.Bars[n-1].Close
	}
	if res.Err != nil {
		evt.Error = res.Err.Error()
	}
	if err := f.rec.RecordQuery(evt); err != nil {
		zap.S().Errorf("record query %s: %v", res.Query.ID, err)
	}
}

// Subscribe returns a stream of query results and a func that ends the
// subscription. Results are dropped for a subscriber whose buffer is full.
func (f *Facade) Subscribe(buffer int) (<-chan model.QueryResult, func()) {
	ch := make(chan model.QueryResult, buffer)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		close(ch)
		return ch, func() {}
	}
	id := f.nextSub
	f.nextSub++
	f.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if sub, ok := f.subs[id]; ok {
				delete(f.subs, id)
				close(sub)
			}
		})
	}
}

func (f *Facade) publish(res model.QueryResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, ch := range f.subs {
		select {
		case ch <- res:
		default:
			zap.S().Warnf("subscriber %d is full, dropping result %s", id, res.Query.ID)
		}
	}
}

// Close waits for in-flight queries and ends every subscription.
func (f *Facade) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.mu.Unlock()

	f.wg.Wait()

	f.mu.Lock()
	defer f.mu.Unlock()
	for id, ch := range f.subs {
		delete(f.subs, id)
		close(ch)
	}
}

func cacheKey(q model.PriceQuery) string {
	key := q.Symbol + "|" + string(q.Code)
	if q.HasRange() {
		key += fmt.Sprintf("|%d|%d", q.From.Unix(), q.To.Unix())
	}
	return key
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

package collector

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"QuoteDesk/internal/model"
	"QuoteDesk/internal/period"
)

const yahooChartURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	Client    *resty.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher. An empty baseURL
// uses the public chart endpoint.
func NewYahooFetcher(baseURL, proxyURL string) *YahooFetcher {
	if baseURL == "" {
		baseURL = yahooChartURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetHeader("User-Agent", "Mozilla/5.0").
		SetHeader("Accept", "application/json")
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return &YahooFetcher{
		Client: client,
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// yahooRanges translates period codes to Yahoo's range tokens.
var yahooRanges = map[period.Code]string{
	period.CodeMax:        "max",
	period.CodeFiveYears:  "5y",
	period.CodeTwoYears:   "2y",
	period.CodeOneYear:    "1y",
	period.CodeSixMonths:  "6mo",
	period.CodeThreeMonth: "3mo",
	period.CodeOneMonth:   "1mo",
	period.CodeFiveDays:   "5d",

	period.Code(period.YearToDate): "ytd",
}

// chartParams builds the query parameters for q. A single-day code wins
// over forwarded dates; forwarded dates win over the range token.
func chartParams(q model.PriceQuery) (map[string]string, error) {
	params := map[string]string{"interval": "1d"}
	switch {
	case q.Code.IsFixedDate():
		day, err := q.Code.Date(time.UTC)
		if err != nil {
			return nil, err
		}
		params["period1"] = strconv.FormatInt(day.Unix(), 10)
		params["period2"] = strconv.FormatInt(day.AddDate(0, 0, 1).Unix(), 10)
	case q.HasRange():
		params["period1"] = strconv.FormatInt(q.From.Unix(), 10)
		params["period2"] = strconv.FormatInt(q.To.AddDate(0, 0, 1).Unix(), 10)
	default:
		rng, ok := yahooRanges[q.Code]
		if !ok {
			return nil, fmt.Errorf("yahoo: unsupported period %q", q.Code)
		}
		params["range"] = rng
		if q.Code == period.CodeMax || q.Code == period.CodeFiveYears {
			params["interval"] = "1wk"
		}
	}
	return params, nil
}

func (f *YahooFetcher) FetchHistory(ctx context.Context, q model.PriceQuery) ([]model.OHLCV, error) {
	params, err := chartParams(q)
	if err != nil {
		return nil, err
	}

	var chart yahooChart
	resp, err := f.Client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&chart).
		SetError(&chart).
		Get("/" + url.PathEscape(f.yahooSymbol(q.Symbol)))
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode(), resp.String())
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned for %s", q.Symbol)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no quote block for %s", q.Symbol)
	}
	quote := result.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		o, h, l, c := at(quote.Open, i), at(quote.High, i), at(quote.Low, i), at(quote.Close, i)
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // null bars (holidays etc.)
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: at(quote.Volume, i),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func at(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return 0
	}
	return *vals[i]
}

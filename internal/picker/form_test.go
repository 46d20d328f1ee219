package picker

import (
	"testing"
	"time"

	"QuoteDesk/internal/period"
)

type fetchCall struct {
	symbol   string
	code     period.Code
	from, to *time.Time
}

type fakeFacade struct {
	calls []fetchCall
}

func (f *fakeFacade) FetchQuote(symbol string, code period.Code, from, to *time.Time) {
	f.calls = append(f.calls, fetchCall{symbol, code, from, to})
}

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestForm() (*Form, *fakeFacade) {
	fc := &fakeFacade{}
	return NewForm(fc, func() time.Time { return fixedNow }), fc
}

func TestSelectPeriodOption_Visibility(t *testing.T) {
	f, _ := newTestForm()
	if f.Snapshot().ShowDatePicker {
		t.Fatal("date picker should start hidden")
	}

	f.SelectPeriodOption(period.Custom)
	if !f.Snapshot().ShowDatePicker {
		t.Error("expected date picker visible after Custom")
	}

	f.SelectPeriodOption(period.OneYear)
	if f.Snapshot().ShowDatePicker {
		t.Error("expected date picker hidden after preset")
	}
}

func TestSelectPeriodOption_ClearsDates(t *testing.T) {
	f, _ := newTestForm()
	f.SelectPeriodOption(period.Custom)
	f.SetFromDate(fixedNow.AddDate(0, -2, 0))
	f.SetToDate(fixedNow.AddDate(0, -1, 0))

	f.SelectPeriodOption(period.Custom)
	s := f.Snapshot()
	if s.From != nil || s.To != nil {
		t.Error("expected dates cleared on re-selecting Custom")
	}

	f.SetFromDate(fixedNow.AddDate(0, -2, 0))
	f.SelectPeriodOption(period.ThreeMonths)
	s = f.Snapshot()
	if s.From != nil || s.To != nil {
		t.Error("expected dates cleared on selecting a preset")
	}
}

func TestSetDates_InvertedRangeResetsToNow(t *testing.T) {
	f, _ := newTestForm()
	f.SelectPeriodOption(period.Custom)
	f.SetToDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	f.SetFromDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	s := f.Snapshot()
	if s.From == nil || s.To == nil {
		t.Fatal("expected both dates set")
	}
	if !s.From.Equal(fixedNow) || !s.To.Equal(fixedNow) {
		t.Errorf("expected both dates reset to now, got %s / %s", s.From, s.To)
	}
}

func TestSetDates_InvertedViaToDate(t *testing.T) {
	f, _ := newTestForm()
	f.SelectPeriodOption(period.Custom)
	f.SetFromDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	f.SetToDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	s := f.Snapshot()
	if !s.From.Equal(fixedNow) || !s.To.Equal(fixedNow) {
		t.Errorf("expected both dates reset to now, got %s / %s", s.From, s.To)
	}
}

func TestSetDates_OrderedRangeKept(t *testing.T) {
	f, _ := newTestForm()
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	f.SetFromDate(from)
	f.SetToDate(to)

	s := f.Snapshot()
	if !s.From.Equal(from) || !s.To.Equal(to) {
		t.Errorf("unexpected dates %s / %s", s.From, s.To)
	}

	// equal dates are not inverted
	f.SetToDate(from)
	s = f.Snapshot()
	if !s.From.Equal(from) || !s.To.Equal(from) {
		t.Errorf("equal dates should be kept, got %s / %s", s.From, s.To)
	}
}

func TestSubmit_RequiresSymbolAndPeriod(t *testing.T) {
	f, fc := newTestForm()
	if f.Submit() {
		t.Error("submit without symbol or period should no-op")
	}

	f.SetSymbol("aapl")
	if f.Submit() {
		t.Error("submit without period should no-op")
	}

	f.SetSymbol("  ")
	f.SelectPeriodOption(period.OneYear)
	if f.Submit() {
		t.Error("submit without symbol should no-op")
	}
	if len(fc.calls) != 0 {
		t.Fatalf("expected no facade calls, got %d", len(fc.calls))
	}
}

func TestSubmit_PresetBypassesClassifier(t *testing.T) {
	f, fc := newTestForm()
	f.SetSymbol(" aapl ")
	f.SelectPeriodOption(period.YearToDate)
	if !f.Submit() {
		t.Fatal("expected submit to issue a request")
	}
	if len(fc.calls) != 1 {
		t.Fatalf("expected 1 facade call, got %d", len(fc.calls))
	}
	c := fc.calls[0]
	if c.symbol != "AAPL" || c.code != "ytd" || c.from != nil || c.to != nil {
		t.Errorf("unexpected call %+v", c)
	}
}

func TestSubmit_CustomRequiresBothDates(t *testing.T) {
	f, fc := newTestForm()
	f.SetSymbol("MSFT")
	f.SelectPeriodOption(period.Custom)
	if f.Submit() {
		t.Error("expected no-op with no dates")
	}
	f.SetFromDate(fixedNow.AddDate(0, -1, 0))
	if f.Submit() {
		t.Error("expected no-op with only from date")
	}
	f.SelectPeriodOption(period.Custom)
	f.SetToDate(fixedNow)
	if f.Submit() {
		t.Error("expected no-op with only to date")
	}
	if len(fc.calls) != 0 {
		t.Fatalf("expected no facade calls, got %d", len(fc.calls))
	}
}

func TestSubmit_CustomForwardsCodeAndDates(t *testing.T) {
	f, fc := newTestForm()
	f.SetSymbol("MSFT")
	f.SelectPeriodOption(period.Custom)
	from := fixedNow.Add(-100 * 24 * time.Hour)
	to := fixedNow.Add(-10 * 24 * time.Hour)
	f.SetFromDate(from)
	f.SetToDate(to)

	if !f.Submit() {
		t.Fatal("expected submit to issue a request")
	}
	c := fc.calls[0]
	if c.code != period.CodeSixMonths {
		t.Errorf("expected 6m, got %q", c.code)
	}
	if c.from == nil || !c.from.Equal(from) || c.to == nil || !c.to.Equal(to) {
		t.Errorf("expected custom dates forwarded, got %v / %v", c.from, c.to)
	}
}

func TestSubmit_CustomSameDayIsFixedDate(t *testing.T) {
	f, fc := newTestForm()
	f.SetSymbol("IBM")
	f.SelectPeriodOption(period.Custom)
	d := time.Date(2023, 4, 5, 0, 0, 0, 0, time.UTC)
	f.SetFromDate(d)
	f.SetToDate(d)

	f.Submit()
	if len(fc.calls) != 1 || fc.calls[0].code != "date/20230405" {
		t.Fatalf("unexpected calls %+v", fc.calls)
	}
}

func TestSubmit_AfterInvertedResetIsFixedDate(t *testing.T) {
	f, fc := newTestForm()
	f.SetSymbol("IBM")
	f.SelectPeriodOption(period.Custom)
	f.SetToDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	f.SetFromDate(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))

	f.Submit()
	if len(fc.calls) != 1 || fc.calls[0].code != "date/20240615" {
		t.Fatalf("unexpected calls %+v", fc.calls)
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	f, _ := newTestForm()
	f.SetFromDate(fixedNow)
	s := f.Snapshot()
	*s.From = s.From.AddDate(1, 0, 0)
	if !f.Snapshot().From.Equal(fixedNow) {
		t.Error("mutating a snapshot changed the form")
	}
}

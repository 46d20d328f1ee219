package picker

import (
	"strings"
	"time"

	"QuoteDesk/internal/period"
)

// Facade receives price-history requests from a form.
// from and to are nil for preset periods.
type Facade interface {
	FetchQuote(symbol string, code period.Code, from, to *time.Time)
}

// Form holds the state of one stock picker. It is not safe for concurrent
// use; callers drive it from a single event loop.
type Form struct {
	facade Facade
	now    func() time.Time

	symbol         string
	selection      period.Selection
	from           *time.Time
	to             *time.Time
	showDatePicker bool
}

// State is a read-only copy of a Form used for rendering.
type State struct {
	Symbol         string
	Selection      period.Selection
	From           *time.Time
	To             *time.Time
	ShowDatePicker bool
}

// NewForm creates an empty form. A nil clock defaults to time.Now.
func NewForm(facade Facade, now func() time.Time) *Form {
	if now == nil {
		now = time.Now
	}
	return &Form{facade: facade, now: now}
}

// SetSymbol records the ticker. Blank input clears it.
func (f *Form) SetSymbol(symbol string) {
	f.symbol = strings.ToUpper(strings.TrimSpace(symbol))
}

// SelectPeriodOption records the period choice, discards any custom dates
// and shows the date picker only for Custom.
func (f *Form) SelectPeriodOption(sel period.Selection) {
	f.selection = sel
	f.from = nil
	f.to = nil
	f.showDatePicker = sel == period.Custom
}

// SetFromDate sets the start of the custom range.
func (f *Form) SetFromDate(d time.Time) {
	f.from = &d
	f.validateDates()
}

// SetToDate sets the end of the custom range.
func (f *Form) SetToDate(d time.Time) {
	f.to = &d
	f.validateDates()
}

// validateDates resets both dates to now when the range is inverted.
func (f *Form) validateDates() {
	if f.from == nil || f.to == nil {
		return
	}
	if f.from.After(*f.to) {
		n := f.now()
		from, to := n, n
		f.from, f.to = &from, &to
	}
}

// Submit sends the current selection to the facade. It returns false
// without side effects when a required field is missing.
func (f *Form) Submit() bool {
	if f.symbol == "" || f.selection == "" {
		return false
	}
	if f.selection != period.Custom {
		f.facade.FetchQuote(f.symbol, period.Code(f.selection), nil, nil)
		return true
	}
	if f.from == nil || f.to == nil {
		return false
	}
	from, to := *f.from, *f.to
	code := period.Classify(from, to, f.now())
	f.facade.FetchQuote(f.symbol, code, &from, &to)
	return true
}

// Snapshot returns a copy of the current state.
func (f *Form) Snapshot() State {
	s := State{
		Symbol:         f.symbol,
		Selection:      f.selection,
		ShowDatePicker: f.showDatePicker,
	}
	if f.from != nil {
		d := *f.from
		s.From = &d
	}
	if f.to != nil {
		d := *f.to
		s.To = &d
	}
	return s
}

package period

import (
	"fmt"
	"strings"
	"time"
)

// Selection is one of the options offered by the period picker.
type Selection string

const (
	Max         Selection = "max"
	FiveYears   Selection = "5y"
	TwoYears    Selection = "2y"
	OneYear     Selection = "1y"
	YearToDate  Selection = "ytd"
	SixMonths   Selection = "6m"
	ThreeMonths Selection = "3m"
	OneMonth    Selection = "1m"
	Custom      Selection = "Custom"
)

// Option pairs a selection with its display label.
type Option struct {
	Value Selection
	Label string
}

// Options lists the picker choices in display order.
var Options = []Option{
	{Max, "All available data"},
	{FiveYears, "Five years"},
	{TwoYears, "Two years"},
	{OneYear, "One year"},
	{YearToDate, "Year-to-date"},
	{SixMonths, "Six months"},
	{ThreeMonths, "Three months"},
	{OneMonth, "One month"},
	{Custom, "Custom"},
}

// ParseSelection resolves a user token (case-insensitive) to a Selection.
func ParseSelection(token string) (Selection, error) {
	token = strings.TrimSpace(token)
	for _, o := range Options {
		if strings.EqualFold(token, string(o.Value)) {
			return o.Value, nil
		}
	}
	return "", fmt.Errorf("unknown period %q", token)
}

// Label returns the display label, or the raw value for unknown selections.
func (s Selection) Label() string {
	for _, o := range Options {
		if o.Value == s {
			return o.Label
		}
	}
	return string(s)
}

// Code is the period token handed to the price query facade.
type Code string

const (
	CodeMax        Code = "max"
	CodeFiveYears  Code = "5y"
	CodeTwoYears   Code = "2y"
	CodeOneYear    Code = "1y"
	CodeSixMonths  Code = "6m"
	CodeThreeMonth Code = "3m"
	CodeOneMonth   Code = "1m"
	CodeFiveDays   Code = "5d"
)

const fixedDatePrefix = "date/"

// IsFixedDate reports whether c is a single-day "date/YYYYMMDD" code.
func (c Code) IsFixedDate() bool {
	return strings.HasPrefix(string(c), fixedDatePrefix)
}

// Date decodes a "date/YYYYMMDD" code in loc.
func (c Code) Date(loc *time.Location) (time.Time, error) {
	if !c.IsFixedDate() {
		return time.Time{}, fmt.Errorf("not a fixed-date code: %q", c)
	}
	return time.ParseInLocation("20060102", strings.TrimPrefix(string(c), fixedDatePrefix), loc)
}

package period

import (
	"math"
	"time"
)

// buckets maps a day count to a range code; the first entry whose MinDays
// is exceeded wins.
var buckets = []struct {
	MinDays int
	Code    Code
}{
	{1825, CodeMax},
	{730, CodeFiveYears},
	{365, CodeTwoYears},
	{180, CodeOneYear},
	{90, CodeSixMonths},
	{30, CodeThreeMonth},
	{5, CodeOneMonth},
}

// Classify converts a custom date range into a period code.
//
// Identical instants yield a single-day "date/YYYYMMDD" code built from
// from's calendar fields. Otherwise the bucket is chosen from the whole
// number of days between now and from; to does not affect the result.
func Classify(from, to, now time.Time) Code {
	if from.Equal(to) {
		return Code(fixedDatePrefix + from.Format("20060102"))
	}
	return bucketFor(DaysBetween(now, from))
}

// DaysBetween returns |a - b| in days, rounded to the nearest integer.
func DaysBetween(a, b time.Time) int {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return int(math.Round(d.Hours() / 24))
}

func bucketFor(days int) Code {
	for _, b := range buckets {
		if days > b.MinDays {
			return b.Code
		}
	}
	return CodeFiveDays
}

// Package daterange resolves the (start, end, reference) date triples
// used by Tally report queries. Ranges come from explicit dates or from
// symbolic period tokens such as "FY23", "FY23 Q2" or "CY2023 H1".
// Financial years run April 1 through March 31.
package daterange

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Range is a resolved reporting period. Reference is the date injected
// as SVCURRENTDATE; for symbolic periods it is the period's end date.
type Range struct {
	Start     time.Time
	End       time.Time
	Reference time.Time
}

// Spec describes how a caller wants a range resolved. Exactly one of
// the three resolution paths applies: a period token, explicit dates,
// or nothing (the financial year containing today).
type Spec struct {
	Period string
	Date   *time.Time
	End    *time.Time
}

var periodPattern = regexp.MustCompile(
	`^(?P<type>[FC]Y)((20)?(?P<y1>\d\d)-)?(20)?(?P<y2>\d\d) ?(Q(?P<quarter>[1-4])|H(?P<half>[12]))?$`)

// now is swapped out in tests.
var now = time.Now

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FinancialYear returns the bounds of the financial year containing dt,
// optionally narrowed to a half (1-2) or quarter (1-4). Quarters count
// from April: Q1 is Apr-Jun, Q4 is Jan-Mar of the following calendar
// year. Zero means no narrowing.
func FinancialYear(dt time.Time, half, quarter int) (time.Time, time.Time, error) {
	year := dt.Year()
	if dt.Month() < time.April {
		year--
	}

	switch {
	case quarter != 0:
		switch quarter {
		case 1:
			return date(year, time.April, 1), date(year, time.June, 30), nil
		case 2:
			return date(year, time.July, 1), date(year, time.September, 30), nil
		case 3:
			return date(year, time.October, 1), date(year, time.December, 31), nil
		case 4:
			return date(year+1, time.January, 1), date(year+1, time.March, 31), nil
		}
		return time.Time{}, time.Time{}, fmt.Errorf("invalid quarter %d", quarter)
	case half != 0:
		switch half {
		case 1:
			return date(year, time.April, 1), date(year, time.September, 30), nil
		case 2:
			return date(year, time.October, 1), date(year+1, time.March, 31), nil
		}
		return time.Time{}, time.Time{}, fmt.Errorf("invalid half %d", half)
	}
	return date(year, time.April, 1), date(year+1, time.March, 31), nil
}

// CalendarYear returns the bounds of the calendar year containing dt,
// optionally narrowed to a half or quarter counted from January.
func CalendarYear(dt time.Time, half, quarter int) (time.Time, time.Time, error) {
	year := dt.Year()

	switch {
	case quarter != 0:
		switch quarter {
		case 1:
			return date(year, time.January, 1), date(year, time.March, 31), nil
		case 2:
			return date(year, time.April, 1), date(year, time.June, 30), nil
		case 3:
			return date(year, time.July, 1), date(year, time.September, 30), nil
		case 4:
			return date(year, time.October, 1), date(year, time.December, 31), nil
		}
		return time.Time{}, time.Time{}, fmt.Errorf("invalid quarter %d", quarter)
	case half != 0:
		switch half {
		case 1:
			return date(year, time.January, 1), date(year, time.June, 30), nil
		case 2:
			return date(year, time.July, 1), date(year, time.December, 31), nil
		}
		return time.Time{}, time.Time{}, fmt.Errorf("invalid half %d", half)
	}
	return date(year, time.January, 1), date(year, time.December, 31), nil
}

// ParseToken resolves a symbolic period token ("FY23", "CY2023 H1",
// "FY2022-23 Q2"). The reference date is the resolved period's end.
func ParseToken(token string) (Range, error) {
	m := periodPattern.FindStringSubmatch(token)
	if m == nil {
		return Range{}, fmt.Errorf("could not get a date range for %q", token)
	}

	groups := map[string]string{}
	for i, name := range periodPattern.SubexpNames() {
		if name != "" && m[i] != "" {
			groups[name] = m[i]
		}
	}

	year, err := strconv.Atoi(groups["y2"])
	if err != nil {
		return Range{}, fmt.Errorf("could not get a date range for %q", token)
	}
	year += 2000

	half, _ := strconv.Atoi(groups["half"])
	quarter, _ := strconv.Atoi(groups["quarter"])

	var start, end time.Time
	switch groups["type"] {
	case "FY":
		start, end, err = FinancialYear(date(year, time.March, 31), half, quarter)
	case "CY":
		start, end, err = CalendarYear(date(year, time.December, 31), half, quarter)
	}
	if err != nil {
		return Range{}, err
	}
	return Range{Start: start, End: end, Reference: end}, nil
}

// ForDate returns the financial year containing dt, referenced at dt.
func ForDate(dt time.Time) Range {
	start, end, _ := FinancialYear(dt, 0, 0)
	return Range{Start: start, End: end, Reference: dt}
}

// Between returns the explicit range [start, end] referenced at end.
func Between(start, end time.Time) Range {
	return Range{Start: start, End: end, Reference: end}
}

// Default returns the financial year containing today.
func Default() Range {
	return ForDate(now())
}

// Resolve applies the documented resolution order: period token first,
// then explicit start+end, then a single date's financial year, then
// the current financial year.
func Resolve(spec Spec) (Range, error) {
	switch {
	case spec.Period != "":
		return ParseToken(spec.Period)
	case spec.Date != nil && spec.End != nil:
		return Between(*spec.Date, *spec.End), nil
	case spec.Date != nil:
		return ForDate(*spec.Date), nil
	case spec.End != nil:
		return Range{}, fmt.Errorf("end date given without a start date")
	}
	return Default(), nil
}

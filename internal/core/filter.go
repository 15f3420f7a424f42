package core

import (
	"strconv"
	"strings"
)

type FilterMode string

const (
	FilterAll   FilterMode = "all"
	FilterToday FilterMode = "today"
	FilterMonth FilterMode = "month"
)

const (
	minYear = 1
	maxYear = 9999
)

// YearMonth is the payload of a month filter. Neither field is range checked
// here; a month outside 1..12 or a year outside 1..9999 matches no entries.
type YearMonth struct {
	Year  int
	Month int
}

func (ym YearMonth) String() string {
	return strconv.Itoa(ym.Year) + "-" + leftPad2(ym.Month)
}

func (ym YearMonth) valid() bool {
	return ym.Month >= 1 && ym.Month <= 12 && ym.Year >= minYear && ym.Year <= maxYear
}

type Filter struct {
	Mode  FilterMode
	Month *YearMonth
}

// ParseFilter turns raw request parameters into a Filter. Unknown modes and
// month values that are not two integers separated by "-" fall back to
// FilterAll without reporting an error.
func ParseFilter(mode, value string) Filter {
	switch FilterMode(mode) {
	case FilterToday:
		return Filter{Mode: FilterToday}
	case FilterMonth:
		ym, ok := parseYearMonth(value)
		if !ok {
			return Filter{Mode: FilterAll}
		}
		return Filter{Mode: FilterMonth, Month: &ym}
	default:
		return Filter{Mode: FilterAll}
	}
}

func parseYearMonth(value string) (YearMonth, bool) {
	if value == "" {
		return YearMonth{}, false
	}
	parts := strings.Split(value, "-")
	if len(parts) != 2 {
		return YearMonth{}, false
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return YearMonth{}, false
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return YearMonth{}, false
	}
	return YearMonth{Year: year, Month: month}, true
}

func leftPad2(n int) string {
	if n >= 0 && n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

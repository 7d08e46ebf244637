// Package core provides the domain model for ledger entries.
//
// This file implements the recurring-schedule calculator: parsing of
// "YYYY-MM" values and derivation of the inclusive month count between
// a start and an optional end month.
package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidYearMonth = errors.New("invalid year-month")
	ErrEndBeforeStart   = errors.New("end month precedes start month")
)

// YearMonth is a calendar month, parsed from the "YYYY-MM" form values.
type YearMonth struct {
	Year  int
	Month int
}

// ParseYearMonth parses a "YYYY-MM" string as produced by <input type="month">.
func ParseYearMonth(s string) (YearMonth, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return YearMonth{}, fmt.Errorf("%w: %q", ErrInvalidYearMonth, s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return YearMonth{}, fmt.Errorf("%w: %q", ErrInvalidYearMonth, s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return YearMonth{}, fmt.Errorf("%w: %q", ErrInvalidYearMonth, s)
	}
	return YearMonth{Year: year, Month: month}, nil
}

// String formats the month back into the "YYYY-MM" wire form.
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

// IsZero reports whether the month is unset.
func (ym YearMonth) IsZero() bool {
	return ym.Year == 0 && ym.Month == 0
}

// MonthsInclusive returns the number of calendar months spanned by
// [start, end], counting both endpoints. start == end yields 1.
// Returns ErrEndBeforeStart when end is an earlier month than start.
func MonthsInclusive(start, end YearMonth) (int, error) {
	diff := (end.Year-start.Year)*12 + (end.Month - start.Month)
	if diff < 0 {
		return 0, ErrEndBeforeStart
	}
	return diff + 1, nil
}

// RepeatCount derives the repeat count sent to the backend: the inclusive
// month span formatted as a decimal string, or the empty string when end is
// nil, meaning the recurrence is unbounded.
func RepeatCount(start YearMonth, end *YearMonth) (string, error) {
	if end == nil {
		return "", nil
	}
	n, err := MonthsInclusive(start, *end)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(n), nil
}

package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Expense  EntryKind = "expense"
	Income   EntryKind = "income"
	Transfer EntryKind = "transfer"
)

const (
	PaymentOption PaymentKind = "payment"
	AccountOption PaymentKind = "account"
)

// TimestampLayout matches the value of an <input type="datetime-local">.
const TimestampLayout = "2006-01-02T15:04"

type (
	EntryKind   string
	PaymentKind string

	// PaymentSelection is the value picked from the payment/account dropdown
	// together with the kind of the group it belongs to. Both empty when the
	// user typed a free-text payment method instead.
	PaymentSelection struct {
		Value string
		Kind  PaymentKind
	}

	// Option is a single selectable payment method or account.
	Option struct {
		Label string `json:"label"`
		Value string `json:"value"`
	}

	// OptionGroup is an externally supplied, read-only group of payment or
	// account options.
	OptionGroup struct {
		Label   string      `json:"label"`
		Kind    PaymentKind `json:"kind"`
		Options []Option    `json:"options"`
	}

	// Entry is a one-off transaction record.
	Entry struct {
		OccurredAt    string // TimestampLayout, local time as typed
		Kind          EntryKind
		Item          string
		Amount        decimal.Decimal
		MainCategory  string
		SubCategory   string
		Payment       PaymentSelection
		PaymentMethod string
		Memo          string
	}

	// RecurringEntry is a template for a transaction repeating monthly on a
	// fixed day, from StartMonth until EndMonth (nil = unbounded).
	RecurringEntry struct {
		Name          string
		Kind          EntryKind
		Amount        decimal.Decimal
		MainCategory  string
		SubCategory   string
		Payment       PaymentSelection
		PaymentMethod string
		DayOfMonth    int
		StartMonth    YearMonth
		EndMonth      *YearMonth
		Memo          string
	}
)

var (
	ErrEmptyTimestamp   = errors.New("empty timestamp")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrEmptyItem        = errors.New("empty item")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidKind      = errors.New("invalid entry kind")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDay       = errors.New("invalid day of month")
	ErrEmptyStartMonth  = errors.New("empty start month")
)

// ParseAmount parses a form amount into a positive decimal.
// Rejects empty, non-numeric, and non-positive values.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

func (k EntryKind) valid(allowTransfer bool) bool {
	switch k {
	case Expense, Income:
		return true
	case Transfer:
		return allowTransfer
	default:
		return false
	}
}

func (e Entry) Validate() error {
	if strings.TrimSpace(e.OccurredAt) == "" {
		return ErrEmptyTimestamp
	}
	if _, err := time.Parse(TimestampLayout, e.OccurredAt); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimestamp, e.OccurredAt)
	}
	if !e.Kind.valid(true) {
		return fmt.Errorf("%w: %q", ErrInvalidKind, e.Kind)
	}
	if strings.TrimSpace(e.Item) == "" {
		return ErrEmptyItem
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func (re RecurringEntry) Validate() error {
	if strings.TrimSpace(re.Name) == "" {
		return ErrEmptyName
	}
	if !re.Kind.valid(false) {
		return fmt.Errorf("%w: %q", ErrInvalidKind, re.Kind)
	}
	if !re.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if re.DayOfMonth < 1 || re.DayOfMonth > 31 {
		return fmt.Errorf("%w: %d", ErrInvalidDay, re.DayOfMonth)
	}
	if re.StartMonth.IsZero() {
		return ErrEmptyStartMonth
	}
	if re.EndMonth != nil {
		if _, err := MonthsInclusive(re.StartMonth, *re.EndMonth); err != nil {
			return err
		}
	}
	return nil
}

// RepeatCount derives the repeat count for the backend payload.
// Empty string means the recurrence is unbounded.
func (re RecurringEntry) RepeatCount() (string, error) {
	return RepeatCount(re.StartMonth, re.EndMonth)
}

// ResolveSelectionKind finds the kind of the group owning the selected
// dropdown value. Returns the empty kind when the value is not present in
// any group, matching the behavior of the form's dropdown handler.
func ResolveSelectionKind(groups []OptionGroup, value string) PaymentKind {
	if value == "" {
		return ""
	}
	for _, g := range groups {
		for _, o := range g.Options {
			if o.Value == value {
				return g.Kind
			}
		}
	}
	return ""
}

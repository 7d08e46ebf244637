package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func amt(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestParseAmount(t *testing.T) {
	good := []string{"1", "0.01", "12.34", "1200000", "2.5e3", " 5 "}
	for _, in := range good {
		d, err := ParseAmount(in)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", in, err)
		}
		if !d.IsPositive() {
			t.Fatalf("%q: parsed amount not positive: %v", in, d)
		}
	}

	bad := []string{"", "0", "-5", "0.00", "abc", "1e999x", "NaN", "Inf", "1,5"}
	for _, in := range bad {
		if _, err := ParseAmount(in); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%q: expected ErrInvalidAmount, got %v", in, err)
		}
	}
}

func TestEntryValidate(t *testing.T) {
	good := Entry{
		OccurredAt: "2025-08-30T12:30",
		Kind:       Expense,
		Item:       "coffee",
		Amount:     amt("4.50"),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	// Transfer is a valid kind for one-off entries.
	good.Kind = Transfer
	if err := good.Validate(); err != nil {
		t.Fatalf("transfer entry: expected ok, got %v", err)
	}

	cases := []struct {
		name  string
		mod   func(e *Entry)
		wants error
	}{
		{"empty timestamp", func(e *Entry) { e.OccurredAt = "" }, ErrEmptyTimestamp},
		{"bad timestamp", func(e *Entry) { e.OccurredAt = "2025/08/30" }, ErrInvalidTimestamp},
		{"bad kind", func(e *Entry) { e.Kind = "loan" }, ErrInvalidKind},
		{"empty item", func(e *Entry) { e.Item = "  " }, ErrEmptyItem},
		{"zero amount", func(e *Entry) { e.Amount = decimal.Zero }, ErrInvalidAmount},
		{"negative amount", func(e *Entry) { e.Amount = amt("-1") }, ErrInvalidAmount},
	}
	for _, tc := range cases {
		e := good
		e.Kind = Expense
		tc.mod(&e)
		if err := e.Validate(); !errors.Is(err, tc.wants) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.wants, err)
		}
	}
}

func TestRecurringEntryValidate(t *testing.T) {
	end := YearMonth{2026, 1}
	good := RecurringEntry{
		Name:       "rent",
		Kind:       Expense,
		Amount:     amt("850"),
		DayOfMonth: 1,
		StartMonth: YearMonth{2025, 8},
		EndMonth:   &end,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	// Unbounded recurrence is valid.
	open := good
	open.EndMonth = nil
	if err := open.Validate(); err != nil {
		t.Fatalf("unbounded: expected ok, got %v", err)
	}

	cases := []struct {
		name  string
		mod   func(re *RecurringEntry)
		wants error
	}{
		{"empty name", func(re *RecurringEntry) { re.Name = "" }, ErrEmptyName},
		{"transfer not allowed", func(re *RecurringEntry) { re.Kind = Transfer }, ErrInvalidKind},
		{"zero amount", func(re *RecurringEntry) { re.Amount = decimal.Zero }, ErrInvalidAmount},
		{"day zero", func(re *RecurringEntry) { re.DayOfMonth = 0 }, ErrInvalidDay},
		{"day 32", func(re *RecurringEntry) { re.DayOfMonth = 32 }, ErrInvalidDay},
		{"missing start", func(re *RecurringEntry) { re.StartMonth = YearMonth{} }, ErrEmptyStartMonth},
		{"end before start", func(re *RecurringEntry) {
			before := YearMonth{2025, 7}
			re.EndMonth = &before
		}, ErrEndBeforeStart},
	}
	for _, tc := range cases {
		re := good
		tc.mod(&re)
		if err := re.Validate(); !errors.Is(err, tc.wants) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.wants, err)
		}
	}

	days := map[int]bool{1: true, 15: true, 31: true, -1: false, 0: false, 32: false, 100: false}
	for day, ok := range days {
		re := good
		re.DayOfMonth = day
		err := re.Validate()
		if ok && err != nil {
			t.Fatalf("day %d: expected ok, got %v", day, err)
		}
		if !ok && !errors.Is(err, ErrInvalidDay) {
			t.Fatalf("day %d: expected ErrInvalidDay, got %v", day, err)
		}
	}
}

func TestResolveSelectionKind(t *testing.T) {
	groups := []OptionGroup{
		{Label: "Cards", Kind: PaymentOption, Options: []Option{
			{Label: "Blue Card", Value: "card_blue"},
			{Label: "Gold Card", Value: "card_gold"},
		}},
		{Label: "Accounts", Kind: AccountOption, Options: []Option{
			{Label: "Checking", Value: "acct_checking"},
		}},
	}

	if k := ResolveSelectionKind(groups, "card_gold"); k != PaymentOption {
		t.Fatalf("got %q, want payment", k)
	}
	if k := ResolveSelectionKind(groups, "acct_checking"); k != AccountOption {
		t.Fatalf("got %q, want account", k)
	}
	if k := ResolveSelectionKind(groups, "missing"); k != "" {
		t.Fatalf("unknown value should yield empty kind, got %q", k)
	}
	if k := ResolveSelectionKind(groups, ""); k != "" {
		t.Fatalf("empty value should yield empty kind, got %q", k)
	}
}

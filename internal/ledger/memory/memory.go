// Package memory provides an in-memory ledger backend for local development
// and tests. It mirrors the script backend's idempotency contract: an entry
// whose content matches an already recorded one is skipped as a duplicate
// instead of stored twice.
package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gagyebu/internal/core"
	"gagyebu/internal/ledger"
)

type Store struct {
	mu        sync.Mutex
	groups    []core.OptionGroup
	entries   []core.Entry
	recurring []core.RecurringEntry
}

// Ensure interface conformance
var _ ledger.Backend = (*Store)(nil)

func New(groups []core.OptionGroup) *Store {
	return &Store{groups: groups}
}

// NewFromFiles seeds option groups from base/seed_payment_options.txt, one
// option per line in the form "group|kind|label|value". Falls back to a
// small default set when the file is missing or empty.
func NewFromFiles(base string) *Store {
	groups := readOptionGroups(filepath.Join(base, "seed_payment_options.txt"))
	if len(groups) == 0 {
		groups = []core.OptionGroup{
			{Label: "Cards", Kind: core.PaymentOption, Options: []core.Option{
				{Label: "Blue Card", Value: "card_blue"},
				{Label: "Gold Card", Value: "card_gold"},
			}},
			{Label: "Accounts", Kind: core.AccountOption, Options: []core.Option{
				{Label: "Checking", Value: "acct_checking"},
				{Label: "Savings", Value: "acct_savings"},
			}},
		}
	}
	return New(groups)
}

// CreateEntry validates and stores the entry, skipping content duplicates.
func (s *Store) CreateEntry(_ context.Context, e core.Entry) (ledger.Outcome, error) {
	if err := e.Validate(); err != nil {
		return ledger.Outcome{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, prev := range s.entries {
		if entryContentEqual(prev, e) {
			return ledger.Classify("error", "", ledger.SkippedDuplicateContent), nil
		}
	}
	s.entries = append(s.entries, e)
	return ledger.Classify(ledger.StatusOK, fmt.Sprintf("mem:%d", len(s.entries)), ""), nil
}

// CreateRecurring validates and stores the recurring entry, skipping
// content duplicates.
func (s *Store) CreateRecurring(_ context.Context, re core.RecurringEntry) (ledger.Outcome, error) {
	if err := re.Validate(); err != nil {
		return ledger.Outcome{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, prev := range s.recurring {
		if recurringContentEqual(prev, re) {
			return ledger.Classify("error", "", ledger.SkippedDuplicateContent), nil
		}
	}
	s.recurring = append(s.recurring, re)
	return ledger.Classify(ledger.StatusOK, fmt.Sprintf("mem:%d", len(s.recurring)), ""), nil
}

// ListPaymentOptions returns the seeded option groups. The nocache flag is
// meaningless here.
func (s *Store) ListPaymentOptions(_ context.Context, _ bool) ([]core.OptionGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.OptionGroup, len(s.groups))
	copy(out, s.groups)
	return out, nil
}

// Entries returns a copy of the stored one-off entries.
func (s *Store) Entries() []core.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Recurring returns a copy of the stored recurring entries.
func (s *Store) Recurring() []core.RecurringEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.RecurringEntry, len(s.recurring))
	copy(out, s.recurring)
	return out
}

func entryContentEqual(a, b core.Entry) bool {
	return a.OccurredAt == b.OccurredAt &&
		a.Kind == b.Kind &&
		a.Item == b.Item &&
		a.Amount.Equal(b.Amount) &&
		a.MainCategory == b.MainCategory &&
		a.SubCategory == b.SubCategory &&
		a.Payment == b.Payment &&
		a.PaymentMethod == b.PaymentMethod &&
		a.Memo == b.Memo
}

func recurringContentEqual(a, b core.RecurringEntry) bool {
	if (a.EndMonth == nil) != (b.EndMonth == nil) {
		return false
	}
	if a.EndMonth != nil && *a.EndMonth != *b.EndMonth {
		return false
	}
	return a.Name == b.Name &&
		a.Kind == b.Kind &&
		a.Amount.Equal(b.Amount) &&
		a.MainCategory == b.MainCategory &&
		a.SubCategory == b.SubCategory &&
		a.Payment == b.Payment &&
		a.PaymentMethod == b.PaymentMethod &&
		a.DayOfMonth == b.DayOfMonth &&
		a.StartMonth == b.StartMonth &&
		a.Memo == b.Memo
}

func readOptionGroups(path string) []core.OptionGroup {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	byLabel := map[string]int{}
	var groups []core.OptionGroup
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) != 4 {
			continue
		}
		label := strings.TrimSpace(parts[0])
		kind := core.PaymentKind(strings.TrimSpace(parts[1]))
		if kind != core.PaymentOption && kind != core.AccountOption {
			continue
		}
		opt := core.Option{Label: strings.TrimSpace(parts[2]), Value: strings.TrimSpace(parts[3])}
		idx, ok := byLabel[label]
		if !ok {
			groups = append(groups, core.OptionGroup{Label: label, Kind: kind})
			idx = len(groups) - 1
			byLabel[label] = idx
		}
		groups[idx].Options = append(groups[idx].Options, opt)
	}
	return groups
}

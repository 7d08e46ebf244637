// Package ledger defines the ports toward the spreadsheet-backed data store
// and the classification of its responses.
package ledger

import (
	"context"

	"gagyebu/internal/core"
)

// Ports for outbound adapters.
type (
	EntryCreator interface {
		CreateEntry(ctx context.Context, e core.Entry) (Outcome, error)
	}

	RecurringCreator interface {
		CreateRecurring(ctx context.Context, re core.RecurringEntry) (Outcome, error)
	}

	// OptionsLister returns the payment/account option groups the forms offer
	// in their dropdown. nocache asks the backend to bypass its own cache.
	OptionsLister interface {
		ListPaymentOptions(ctx context.Context, nocache bool) ([]core.OptionGroup, error)
	}
)

// Backend is the unified interface a data store adapter provides.
type Backend interface {
	EntryCreator
	RecurringCreator
	OptionsLister
}

// Package services provides business logic and orchestration between the
// HTTP handlers and the ledger backend.
package services

import (
	"context"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/semaphore"

	"gagyebu/internal/core"
	"gagyebu/internal/ledger"
)

const optionsCacheKey = "payment_options"

// EntryService validates entries and submits them to the ledger backend.
// Each form keeps at most one submission in flight: a submit arriving while
// another is pending is ignored, not queued. Option loading follows the
// same one-at-a-time discipline, independently of submissions.
type EntryService struct {
	backend ledger.Backend

	entrySem     *semaphore.Weighted
	recurringSem *semaphore.Weighted
	optionsSem   *semaphore.Weighted

	optionsCache *gocache.Cache
}

func NewEntryService(backend ledger.Backend, optionsTTL time.Duration) *EntryService {
	if optionsTTL <= 0 {
		optionsTTL = 5 * time.Minute
	}
	return &EntryService{
		backend:      backend,
		entrySem:     semaphore.NewWeighted(1),
		recurringSem: semaphore.NewWeighted(1),
		optionsSem:   semaphore.NewWeighted(1),
		optionsCache: gocache.New(optionsTTL, 2*optionsTTL),
	}
}

// SubmitResult is the result of one submission attempt.
type SubmitResult struct {
	Outcome ledger.Outcome
	// Ignored is set when another submission of the same form was already
	// in flight and this attempt was dropped without any effect.
	Ignored bool
}

// SubmitEntry validates and submits a one-off entry. Validation failures
// return before the backend is contacted.
func (s *EntryService) SubmitEntry(ctx context.Context, e core.Entry) (SubmitResult, error) {
	if !s.entrySem.TryAcquire(1) {
		slog.DebugContext(ctx, "Entry submission ignored, another in flight")
		return SubmitResult{Ignored: true}, nil
	}
	defer s.entrySem.Release(1)

	if err := e.Validate(); err != nil {
		return SubmitResult{}, err
	}
	out, err := s.backend.CreateEntry(ctx, e)
	if err != nil {
		return SubmitResult{}, err
	}
	slog.InfoContext(ctx, "Entry submitted",
		"item", e.Item, "kind", e.Kind, "outcome", out.Kind, "skipped", out.Skipped)
	return SubmitResult{Outcome: out}, nil
}

// SubmitRecurring validates and submits a recurring entry. The schedule is
// validated here, so an end month before the start month never reaches the
// backend.
func (s *EntryService) SubmitRecurring(ctx context.Context, re core.RecurringEntry) (SubmitResult, error) {
	if !s.recurringSem.TryAcquire(1) {
		slog.DebugContext(ctx, "Recurring submission ignored, another in flight")
		return SubmitResult{Ignored: true}, nil
	}
	defer s.recurringSem.Release(1)

	if err := re.Validate(); err != nil {
		return SubmitResult{}, err
	}
	out, err := s.backend.CreateRecurring(ctx, re)
	if err != nil {
		return SubmitResult{}, err
	}
	slog.InfoContext(ctx, "Recurring entry submitted",
		"name", re.Name, "kind", re.Kind, "day", re.DayOfMonth, "outcome", out.Kind, "skipped", out.Skipped)
	return SubmitResult{Outcome: out}, nil
}

// PaymentOptions returns the dropdown option groups, served from a TTL
// cache unless nocache is set. When a load is already running the cached
// value (possibly empty) is returned instead of waiting; loads are never
// retried automatically.
func (s *EntryService) PaymentOptions(ctx context.Context, nocache bool) ([]core.OptionGroup, error) {
	if !nocache {
		if v, ok := s.optionsCache.Get(optionsCacheKey); ok {
			return v.([]core.OptionGroup), nil
		}
	}

	if !s.optionsSem.TryAcquire(1) {
		if v, ok := s.optionsCache.Get(optionsCacheKey); ok {
			return v.([]core.OptionGroup), nil
		}
		return nil, nil
	}
	defer s.optionsSem.Release(1)

	groups, err := s.backend.ListPaymentOptions(ctx, nocache)
	if err != nil {
		return nil, err
	}
	s.optionsCache.Set(optionsCacheKey, groups, gocache.DefaultExpiration)
	return groups, nil
}

// ResolveSelection builds a PaymentSelection for a dropdown value, looking
// up the owning group's kind in the current option groups. An unknown or
// empty value yields an empty selection.
func (s *EntryService) ResolveSelection(ctx context.Context, value string) core.PaymentSelection {
	if value == "" {
		return core.PaymentSelection{}
	}
	groups, err := s.PaymentOptions(ctx, false)
	if err != nil {
		slog.WarnContext(ctx, "Payment options unavailable for kind resolution", "error", err)
		return core.PaymentSelection{Value: value}
	}
	return core.PaymentSelection{Value: value, Kind: core.ResolveSelectionKind(groups, value)}
}

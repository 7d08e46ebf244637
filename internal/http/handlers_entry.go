package http

import (
	"net/http"
	"strings"
	"time"

	"gagyebu/internal/core"
)

// handleTransactionForm renders the one-off transaction form.
func (s *Server) handleTransactionForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	groups, err := s.svc.PaymentOptions(r.Context(), false)
	if err != nil {
		// The form stays usable with the free-text payment field.
		groups = nil
	}

	data := struct {
		Now    string
		Groups []core.OptionGroup
	}{
		Now:    time.Now().Format(core.TimestampLayout),
		Groups: groups,
	}
	s.render(w, r, "form_transaction.html", data)
}

// handleCreateEntry validates and submits a one-off entry.
func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeFragment(w, http.StatusBadRequest, "error", "Invalid request format.")
		return
	}

	date := strings.TrimSpace(r.Form.Get("date"))
	kind := strings.TrimSpace(r.Form.Get("type"))
	item := s.sanitizer.Clean(r.Form.Get("item"))
	amountStr := strings.TrimSpace(r.Form.Get("amount"))

	if date == "" || kind == "" || item == "" || amountStr == "" {
		writeFragment(w, http.StatusUnprocessableEntity, "error",
			"Date, type, item, and amount are all required.")
		return
	}

	amount, err := core.ParseAmount(amountStr)
	if err != nil {
		writeFragment(w, http.StatusUnprocessableEntity, "error", "Enter a valid positive amount.")
		return
	}

	e := core.Entry{
		OccurredAt:    date,
		Kind:          core.EntryKind(kind),
		Item:          item,
		Amount:        amount,
		MainCategory:  s.sanitizer.Clean(r.Form.Get("mainCategory")),
		SubCategory:   s.sanitizer.Clean(r.Form.Get("subCategory")),
		Payment:       s.svc.ResolveSelection(r.Context(), strings.TrimSpace(r.Form.Get("selectedValue"))),
		PaymentMethod: s.sanitizer.Clean(r.Form.Get("payment")),
		Memo:          s.sanitizer.Clean(r.Form.Get("memo")),
	}

	res, err := s.svc.SubmitEntry(r.Context(), e)
	if err != nil {
		s.writeSubmissionError(w, r, err)
		return
	}
	s.writeOutcome(w, r, res)
}

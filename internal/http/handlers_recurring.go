package http

import (
	"net/http"
	"strconv"
	"strings"

	"gagyebu/internal/core"
)

// handleRecurringForm renders the recurring entry form.
func (s *Server) handleRecurringForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	groups, err := s.svc.PaymentOptions(r.Context(), false)
	if err != nil {
		groups = nil
	}

	data := struct {
		Groups []core.OptionGroup
	}{Groups: groups}
	s.render(w, r, "form_recurring.html", data)
}

// handleCreateRecurring validates and submits a recurring entry.
func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeFragment(w, http.StatusBadRequest, "error", "Invalid request format.")
		return
	}

	name := s.sanitizer.Clean(r.Form.Get("name"))
	amountStr := strings.TrimSpace(r.Form.Get("amount"))
	dayStr := strings.TrimSpace(r.Form.Get("dayOfMonth"))
	startStr := strings.TrimSpace(r.Form.Get("startMonth"))

	if name == "" || amountStr == "" || dayStr == "" || startStr == "" {
		writeFragment(w, http.StatusUnprocessableEntity, "error",
			"Name, amount, day of month, and start month are all required.")
		return
	}

	amount, err := core.ParseAmount(amountStr)
	if err != nil {
		writeFragment(w, http.StatusUnprocessableEntity, "error", "Enter a valid positive amount.")
		return
	}

	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 {
		writeFragment(w, http.StatusUnprocessableEntity, "error",
			"Day of month must be a whole number between 1 and 31.")
		return
	}

	start, err := core.ParseYearMonth(startStr)
	if err != nil {
		writeFragment(w, http.StatusUnprocessableEntity, "error", "Enter the start month as YYYY-MM.")
		return
	}

	var end *core.YearMonth
	if endStr := strings.TrimSpace(r.Form.Get("endMonth")); endStr != "" {
		ym, err := core.ParseYearMonth(endStr)
		if err != nil {
			writeFragment(w, http.StatusUnprocessableEntity, "error", "Enter the end month as YYYY-MM.")
			return
		}
		end = &ym
	}

	re := core.RecurringEntry{
		Name:          name,
		Kind:          core.EntryKind(strings.TrimSpace(r.Form.Get("type"))),
		Amount:        amount,
		MainCategory:  s.sanitizer.Clean(r.Form.Get("mainCategory")),
		SubCategory:   s.sanitizer.Clean(r.Form.Get("subCategory")),
		Payment:       s.svc.ResolveSelection(r.Context(), strings.TrimSpace(r.Form.Get("selectedValue"))),
		PaymentMethod: s.sanitizer.Clean(r.Form.Get("payment")),
		DayOfMonth:    day,
		StartMonth:    start,
		EndMonth:      end,
		Memo:          s.sanitizer.Clean(r.Form.Get("memo")),
	}

	res, err := s.svc.SubmitRecurring(r.Context(), re)
	if err != nil {
		s.writeSubmissionError(w, r, err)
		return
	}
	s.writeOutcome(w, r, res)
}

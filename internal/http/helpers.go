package http

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"gagyebu/internal/core"
	"gagyebu/internal/ledger"
	"gagyebu/internal/services"
)

// writeFragment writes a small HTML fragment for the form result area.
func writeFragment(w http.ResponseWriter, status int, class, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`<div class="` + class + `">` + template.HTMLEscapeString(msg) + `</div>`))
}

// validationMessage maps domain validation errors to user-facing text.
// Returns empty when the error is not a validation error.
func validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyTimestamp), errors.Is(err, core.ErrInvalidTimestamp):
		return "Enter a valid date and time."
	case errors.Is(err, core.ErrEmptyItem):
		return "Item is required."
	case errors.Is(err, core.ErrEmptyName):
		return "Name is required."
	case errors.Is(err, core.ErrInvalidKind):
		return "Choose a valid entry type."
	case errors.Is(err, core.ErrInvalidAmount):
		return "Enter a valid positive amount."
	case errors.Is(err, core.ErrInvalidDay):
		return "Day of month must be a whole number between 1 and 31."
	case errors.Is(err, core.ErrEmptyStartMonth):
		return "Start month is required."
	case errors.Is(err, core.ErrInvalidYearMonth):
		return "Enter months as YYYY-MM."
	case errors.Is(err, core.ErrEndBeforeStart):
		return "End month must not precede the start month."
	default:
		return ""
	}
}

// writeSubmissionError renders a submission error as a result fragment.
func (s *Server) writeSubmissionError(w http.ResponseWriter, r *http.Request, err error) {
	if msg := validationMessage(err); msg != "" {
		writeFragment(w, http.StatusUnprocessableEntity, "error", msg)
		return
	}

	var rfe *ledger.ResponseFormatError
	switch {
	case errors.Is(err, ledger.ErrNotConfigured):
		slog.ErrorContext(r.Context(), "Ledger endpoint not configured", "error", err)
		writeFragment(w, http.StatusInternalServerError, "error",
			"Endpoint configuration is missing. Set the script URL and API key.")
	case errors.As(err, &rfe):
		slog.ErrorContext(r.Context(), "Unparseable backend response", "raw_body", rfe.RawBody)
		writeFragment(w, http.StatusBadGateway, "error", "Invalid server response: "+rfe.RawBody)
	default:
		slog.ErrorContext(r.Context(), "Submission failed", "error", err)
		writeFragment(w, http.StatusBadGateway, "error", "Server error: "+err.Error())
	}
}

// writeOutcome renders the classified backend outcome. Reset-worthy
// outcomes carry an HX-Trigger so the page clears its form.
func (s *Server) writeOutcome(w http.ResponseWriter, r *http.Request, res services.SubmitResult) {
	if res.Ignored {
		// Another submission is in flight; this one was a silent no-op.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	out := res.Outcome
	if out.ResetWorthy() {
		w.Header().Set("HX-Trigger", `{"entry:reset": true}`)
	}
	switch out.Kind {
	case ledger.OutcomeSuccess:
		writeFragment(w, http.StatusOK, "success", "Entry recorded.")
	case ledger.OutcomeDuplicateSkipped:
		writeFragment(w, http.StatusOK, "success", "Duplicate submission skipped; the entry was already recorded.")
	case ledger.OutcomeUnauthorized:
		writeFragment(w, http.StatusUnauthorized, "error", "Access denied. Check the configured API key.")
	default:
		writeFragment(w, http.StatusBadGateway, "error", "Error: "+out.Message)
	}
}

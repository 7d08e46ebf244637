package http

import (
	"log/slog"
	"net/http"

	"gagyebu/internal/core"
)

// handlePaymentOptions serves the payment dropdown as an HTML partial.
// The nocache query flag forces a refresh from the backend.
func (s *Server) handlePaymentOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	nocache := r.URL.Query().Get("nocache") != ""
	groups, err := s.svc.PaymentOptions(r.Context(), nocache)
	if err != nil {
		slog.WarnContext(r.Context(), "Payment options unavailable", "error", err)
		writeFragment(w, http.StatusOK, "muted", "Payment options are unavailable; use the free-text field.")
		return
	}

	data := struct {
		Groups []core.OptionGroup
	}{Groups: groups}
	s.render(w, r, "payment_options.html", data)
}

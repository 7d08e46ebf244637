package script

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"gagyebu/internal/core"
	"gagyebu/internal/ledger"
)

func testEntry() core.Entry {
	return core.Entry{
		OccurredAt: "2025-08-30T12:30",
		Kind:       core.Expense,
		Item:       "groceries",
		Amount:     decimal.RequireFromString("42.50"),
		Payment:    core.PaymentSelection{Value: "card_blue", Kind: core.PaymentOption},
	}
}

func testRecurring() core.RecurringEntry {
	end := core.YearMonth{Year: 2026, Month: 1}
	return core.RecurringEntry{
		Name:       "rent",
		Kind:       core.Expense,
		Amount:     decimal.RequireFromString("850"),
		DayOfMonth: 1,
		StartMonth: core.YearMonth{Year: 2025, Month: 8},
		EndMonth:   &end,
	}
}

// capture starts a stub endpoint recording each payload and replying with body.
func capture(t *testing.T, body string, payloads *[]map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "text/plain;charset=utf-8" {
			t.Errorf("content type = %q", ct)
		}
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		var p map[string]any
		if err := json.Unmarshal(raw, &p); err != nil {
			t.Errorf("payload not JSON: %v", err)
		}
		*payloads = append(*payloads, p)
		_, _ = io.WriteString(w, body)
	}))
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := New(Config{URL: url, APIKey: "k-123"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewRequiresConfiguration(t *testing.T) {
	cases := []Config{
		{URL: "", APIKey: "k"},
		{URL: "https://example.com/exec", APIKey: ""},
		{URL: "   ", APIKey: "k"},
		{URL: "ftp://example.com", APIKey: "k"},
		{URL: "://bad", APIKey: "k"},
	}
	for i, cfg := range cases {
		if _, err := New(cfg); !errors.Is(err, ledger.ErrNotConfigured) {
			t.Fatalf("case %d: expected ErrNotConfigured, got %v", i, err)
		}
	}
}

func TestCreateEntryPayload(t *testing.T) {
	var payloads []map[string]any
	srv := capture(t, `{"status":"ok"}`, &payloads)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	out, err := c.CreateEntry(context.Background(), testEntry())
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	if out.Kind != ledger.OutcomeSuccess {
		t.Fatalf("outcome = %q, want success", out.Kind)
	}

	if len(payloads) != 1 {
		t.Fatalf("expected 1 request, got %d", len(payloads))
	}
	p := payloads[0]
	if p["action"] != "sheet.transactions.create" {
		t.Fatalf("action = %v", p["action"])
	}
	if p["apiKey"] != "k-123" {
		t.Fatalf("apiKey = %v", p["apiKey"])
	}
	if p["item"] != "groceries" || p["type"] != "expense" || p["date"] != "2025-08-30T12:30" {
		t.Fatalf("unexpected fields: %v", p)
	}
	if p["amount"] != 42.5 {
		t.Fatalf("amount = %v (%T)", p["amount"], p["amount"])
	}
	if p["selectedValue"] != "card_blue" || p["selectedKind"] != "payment" {
		t.Fatalf("selection fields: %v", p)
	}
	if id, _ := p["requestId"].(string); id == "" {
		t.Fatalf("missing requestId")
	}
}

func TestRequestIDFreshPerAttempt(t *testing.T) {
	var payloads []map[string]any
	srv := capture(t, `{"status":"ok"}`, &payloads)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	e := testEntry()
	for i := 0; i < 2; i++ {
		if _, err := c.CreateEntry(context.Background(), e); err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}
	if len(payloads) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(payloads))
	}
	id1, _ := payloads[0]["requestId"].(string)
	id2, _ := payloads[1]["requestId"].(string)
	if id1 == "" || id2 == "" || id1 == id2 {
		t.Fatalf("requestIds must be distinct and non-empty: %q vs %q", id1, id2)
	}
}

func TestCreateRecurringPayload(t *testing.T) {
	var payloads []map[string]any
	srv := capture(t, `{"status":"success"}`, &payloads)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	out, err := c.CreateRecurring(context.Background(), testRecurring())
	if err != nil {
		t.Fatalf("CreateRecurring: %v", err)
	}
	if out.Kind != ledger.OutcomeSuccess {
		t.Fatalf("outcome = %q", out.Kind)
	}

	p := payloads[0]
	if p["action"] != "sheet.recurring.create" {
		t.Fatalf("action = %v", p["action"])
	}
	if p["startMonth"] != "2025-08" || p["endMonth"] != "2026-01" {
		t.Fatalf("months: %v", p)
	}
	if p["repeatTime"] != "6" {
		t.Fatalf("repeatTime = %v, want \"6\"", p["repeatTime"])
	}
	if p["dayOfMonth"] != float64(1) {
		t.Fatalf("dayOfMonth = %v", p["dayOfMonth"])
	}
}

func TestCreateRecurringUnboundedRepeat(t *testing.T) {
	var payloads []map[string]any
	srv := capture(t, `{"status":"ok"}`, &payloads)
	defer srv.Close()

	re := testRecurring()
	re.EndMonth = nil
	c := newTestClient(t, srv.URL)
	if _, err := c.CreateRecurring(context.Background(), re); err != nil {
		t.Fatalf("CreateRecurring: %v", err)
	}
	p := payloads[0]
	if p["endMonth"] != "" || p["repeatTime"] != "" {
		t.Fatalf("unbounded recurrence must send empty endMonth and repeatTime: %v", p)
	}
}

func TestCreateRecurringEndBeforeStartNoNetwork(t *testing.T) {
	var payloads []map[string]any
	srv := capture(t, `{"status":"ok"}`, &payloads)
	defer srv.Close()

	re := testRecurring()
	before := core.YearMonth{Year: 2025, Month: 7}
	re.EndMonth = &before
	c := newTestClient(t, srv.URL)
	if _, err := c.CreateRecurring(context.Background(), re); !errors.Is(err, core.ErrEndBeforeStart) {
		t.Fatalf("expected ErrEndBeforeStart, got %v", err)
	}
	if len(payloads) != 0 {
		t.Fatalf("network must not be contacted, saw %d requests", len(payloads))
	}
}

func TestOutcomeClassification(t *testing.T) {
	cases := []struct {
		body string
		want ledger.OutcomeKind
	}{
		{`{"status":"ok"}`, ledger.OutcomeSuccess},
		{`{"status":"success","message":"saved"}`, ledger.OutcomeSuccess},
		{`{"status":"error","skipped":"duplicate_requestId"}`, ledger.OutcomeDuplicateSkipped},
		{`{"status":"error","skipped":"duplicate_content"}`, ledger.OutcomeDuplicateSkipped},
		{`{"status":"unauthorized"}`, ledger.OutcomeUnauthorized},
		{`{"status":"error","message":"boom"}`, ledger.OutcomeFailure},
		{`{}`, ledger.OutcomeFailure},
	}
	for _, tc := range cases {
		var payloads []map[string]any
		srv := capture(t, tc.body, &payloads)
		c := newTestClient(t, srv.URL)
		out, err := c.CreateEntry(context.Background(), testEntry())
		srv.Close()
		if err != nil {
			t.Fatalf("%s: %v", tc.body, err)
		}
		if out.Kind != tc.want {
			t.Fatalf("%s: outcome=%q, want %q", tc.body, out.Kind, tc.want)
		}
	}
}

func TestResponseFormatError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>Service temporarily unavailable</html>")
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.CreateEntry(context.Background(), testEntry())
	var rfe *ledger.ResponseFormatError
	if !errors.As(err, &rfe) {
		t.Fatalf("expected ResponseFormatError, got %v", err)
	}
	if rfe.RawBody != "<html>Service temporarily unavailable</html>" {
		t.Fatalf("raw body not preserved: %q", rfe.RawBody)
	}
}

func TestListPaymentOptions(t *testing.T) {
	flat := `{"status":"ok","groups":[{"label":"Cards","kind":"payment","options":[{"label":"Blue","value":"card_blue"}]}]}`
	nested := `{"status":"ok","data":{"groups":[{"label":"Accounts","kind":"account","options":[{"label":"Checking","value":"acct_1"}]}]}}`

	for name, body := range map[string]string{"flat": flat, "nested": nested} {
		var payloads []map[string]any
		srv := capture(t, body, &payloads)
		c := newTestClient(t, srv.URL)
		groups, err := c.ListPaymentOptions(context.Background(), true)
		srv.Close()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(groups) != 1 || len(groups[0].Options) != 1 {
			t.Fatalf("%s: groups = %+v", name, groups)
		}
		p := payloads[0]
		if p["action"] != "meta.paymentOptions.list" {
			t.Fatalf("%s: action = %v", name, p["action"])
		}
		if p["nocache"] != true {
			t.Fatalf("%s: nocache flag not sent: %v", name, p)
		}
	}
}

func TestListPaymentOptionsFailureStatus(t *testing.T) {
	var payloads []map[string]any
	srv := capture(t, `{"status":"unauthorized"}`, &payloads)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	if _, err := c.ListPaymentOptions(context.Background(), false); err == nil {
		t.Fatalf("expected error for unauthorized options response")
	}
}

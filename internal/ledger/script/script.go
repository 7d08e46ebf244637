// Package script implements the ledger ports against the remote
// spreadsheet script endpoint.
//
// The wire contract is a single POST accepting a flat JSON object
// {action, apiKey, requestId, ...fields} sent as text/plain (keeping the
// cross-origin request simple, no pre-flight) and returning a JSON text
// body {status, message?, skipped?, data?}. The body is parsed manually;
// a non-JSON response surfaces as ledger.ResponseFormatError with the raw
// text attached.
package script

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"gagyebu/internal/core"
	"gagyebu/internal/ledger"
)

// Actions understood by the script endpoint.
const (
	actionListPaymentOptions = "meta.paymentOptions.list"
	actionCreateTransaction  = "sheet.transactions.create"
	actionCreateRecurring    = "sheet.recurring.create"
)

// Config holds the endpoint settings. Constructed explicitly by the caller
// so tests can substitute their own endpoint and client.
type Config struct {
	URL    string
	APIKey string

	// HTTPClient is optional. The default client carries no timeout of its
	// own; the transport's behavior applies.
	HTTPClient *http.Client
}

type Client struct {
	url    string
	apiKey string
	httpc  *http.Client
}

// Ensure interface conformance
var (
	_ ledger.EntryCreator     = (*Client)(nil)
	_ ledger.RecurringCreator = (*Client)(nil)
	_ ledger.OptionsLister    = (*Client)(nil)
)

// New validates the endpoint configuration and returns a client.
// A missing URL or key fails here, before any network attempt.
func New(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.URL)
	if endpoint == "" {
		return nil, fmt.Errorf("%w: missing script URL", ledger.ErrNotConfigured)
	}
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: invalid script URL %q", ledger.ErrNotConfigured, cfg.URL)
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: missing API key", ledger.ErrNotConfigured)
	}
	httpc := cfg.HTTPClient
	if httpc == nil {
		httpc = &http.Client{}
	}
	return &Client{url: endpoint, apiKey: cfg.APIKey, httpc: httpc}, nil
}

// response is the parsed backend reply.
type response struct {
	Status  string             `json:"status"`
	Message string             `json:"message"`
	Skipped string             `json:"skipped"`
	Data    json.RawMessage    `json:"data"`
	Groups  []core.OptionGroup `json:"groups"`
}

// post sends one action to the endpoint and parses the text reply.
// No retries: a submission is a single attempt.
func (c *Client) post(ctx context.Context, action string, body map[string]any) (*response, error) {
	payload := map[string]any{
		"action": action,
		"apiKey": c.apiKey,
	}
	for k, v := range body {
		payload[k] = v
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", action, err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var r response
	if err := json.Unmarshal(text, &r); err != nil {
		return nil, &ledger.ResponseFormatError{RawBody: string(text), Err: err}
	}
	slog.DebugContext(ctx, "Script call completed", "action", action, "status", r.Status, "skipped", r.Skipped)
	return &r, nil
}

// CreateEntry submits a one-off entry. Every attempt carries a fresh
// requestId so the backend can suppress duplicates.
func (c *Client) CreateEntry(ctx context.Context, e core.Entry) (ledger.Outcome, error) {
	body := map[string]any{
		"date":          e.OccurredAt,
		"type":          string(e.Kind),
		"item":          e.Item,
		"amount":        json.Number(e.Amount.String()),
		"mainCategory":  e.MainCategory,
		"subCategory":   e.SubCategory,
		"selectedValue": e.Payment.Value,
		"selectedKind":  string(e.Payment.Kind),
		"payment":       e.PaymentMethod,
		"memo":          e.Memo,
		"requestId":     uuid.NewString(),
	}
	r, err := c.post(ctx, actionCreateTransaction, body)
	if err != nil {
		return ledger.Outcome{}, err
	}
	return ledger.Classify(r.Status, r.Message, r.Skipped), nil
}

// CreateRecurring submits a recurring entry, deriving the repeat count from
// the schedule. An end month before the start month fails here without a
// network call.
func (c *Client) CreateRecurring(ctx context.Context, re core.RecurringEntry) (ledger.Outcome, error) {
	repeatTime, err := re.RepeatCount()
	if err != nil {
		return ledger.Outcome{}, err
	}
	endMonth := ""
	if re.EndMonth != nil {
		endMonth = re.EndMonth.String()
	}
	body := map[string]any{
		"name":          re.Name,
		"type":          string(re.Kind),
		"amount":        json.Number(re.Amount.String()),
		"mainCategory":  re.MainCategory,
		"subCategory":   re.SubCategory,
		"selectedValue": re.Payment.Value,
		"selectedKind":  string(re.Payment.Kind),
		"payment":       re.PaymentMethod,
		"dayOfMonth":    re.DayOfMonth,
		"startMonth":    re.StartMonth.String(),
		"endMonth":      endMonth,
		"repeatTime":    repeatTime,
		"memo":          re.Memo,
		"requestId":     uuid.NewString(),
	}
	r, err := c.post(ctx, actionCreateRecurring, body)
	if err != nil {
		return ledger.Outcome{}, err
	}
	return ledger.Classify(r.Status, r.Message, r.Skipped), nil
}

// ListPaymentOptions fetches the dropdown option groups. The groups may
// arrive at the top level or nested under data, depending on the backend
// version; both shapes are accepted.
func (c *Client) ListPaymentOptions(ctx context.Context, nocache bool) ([]core.OptionGroup, error) {
	r, err := c.post(ctx, actionListPaymentOptions, map[string]any{"nocache": nocache})
	if err != nil {
		return nil, err
	}
	groups := r.Groups
	if len(groups) == 0 && len(r.Data) > 0 {
		var wrapped struct {
			Groups []core.OptionGroup `json:"groups"`
		}
		if err := json.Unmarshal(r.Data, &wrapped); err != nil {
			return nil, &ledger.ResponseFormatError{RawBody: string(r.Data), Err: err}
		}
		groups = wrapped.Groups
	}
	if len(groups) == 0 && r.Status != "" && r.Status != ledger.StatusOK && r.Status != ledger.StatusSuccess {
		return nil, fmt.Errorf("list payment options: %s", ledger.Classify(r.Status, r.Message, r.Skipped).Message)
	}
	return groups, nil
}

// Package gateway talks to the ForestAPI H2H deposit endpoints. The
// gateway is untrusted input: numeric fields arrive as numbers or
// strings depending on endpoint version, so everything is decoded
// defensively before it becomes a typed record.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GatewayError covers transport failures and non-success envelopes.
// Business statuses like "failed" or "expired" are data, not errors.
type GatewayError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("gateway %s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("gateway %s: status %d", e.Op, e.StatusCode)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

type Method struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type DepositQuote struct {
	GatewayID     string
	Nominal       int64
	Fee           int64
	CreditAmount  int64
	QRImageURL    string
	QRImageString string
	Status        string
	ExpiredAt     *time.Time
}

type DepositStatus struct {
	ReffID string
	Status string
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) ListMethods(ctx context.Context) ([]Method, error) {
	const op = "list methods"
	data, err := c.get(ctx, op, "/deposit/methods", url.Values{})
	if err != nil {
		return nil, err
	}
	var raw []struct {
		ID     json.RawMessage `json:"id"`
		Name   string          `json:"name"`
		Status string          `json:"status"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &GatewayError{Op: op, Err: err}
	}
	methods := make([]Method, 0, len(raw))
	for _, m := range raw {
		methods = append(methods, Method{
			ID:     rawString(m.ID),
			Name:   m.Name,
			Status: m.Status,
		})
	}
	return methods, nil
}

func (c *Client) CreateDeposit(ctx context.Context, reffID, method string, amount int64) (DepositQuote, error) {
	const op = "create deposit"
	params := url.Values{}
	params.Set("reff_id", reffID)
	params.Set("method", method)
	params.Set("nominal", fmt.Sprintf("%d", amount))
	params.Set("fee_by_customer", "false")
	data, err := c.get(ctx, op, "/deposit/create", params)
	if err != nil {
		return DepositQuote{}, err
	}
	var raw struct {
		ID            json.RawMessage `json:"id"`
		Nominal       json.RawMessage `json:"nominal"`
		Fee           json.RawMessage `json:"fee"`
		GetBalance    json.RawMessage `json:"get_balance"`
		QRImageURL    string          `json:"qr_image_url"`
		QRImageString string          `json:"qr_image_string"`
		Status        string          `json:"status"`
		ExpiredAt     string          `json:"expired_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return DepositQuote{}, &GatewayError{Op: op, Err: err}
	}
	nominal, err := rawAmount(raw.Nominal)
	if err != nil {
		return DepositQuote{}, &GatewayError{Op: op, Message: "unparseable nominal", Err: err}
	}
	fee, err := rawAmount(raw.Fee)
	if err != nil {
		return DepositQuote{}, &GatewayError{Op: op, Message: "unparseable fee", Err: err}
	}
	creditAmount, err := rawAmount(raw.GetBalance)
	if err != nil {
		return DepositQuote{}, &GatewayError{Op: op, Message: "unparseable get_balance", Err: err}
	}
	quote := DepositQuote{
		GatewayID:     rawString(raw.ID),
		Nominal:       nominal,
		Fee:           fee,
		CreditAmount:  creditAmount,
		QRImageURL:    raw.QRImageURL,
		QRImageString: raw.QRImageString,
		Status:        raw.Status,
		ExpiredAt:     parseGatewayTime(raw.ExpiredAt),
	}
	return quote, nil
}

// FetchStatus probes the current gateway-side status of a deposit.
// This is the seam a webhook or poller would drive settlement through;
// the storefront itself settles from the admin approval and the stored
// local status.
func (c *Client) FetchStatus(ctx context.Context, reffID string) (DepositStatus, error) {
	const op = "fetch status"
	params := url.Values{}
	params.Set("reff_id", reffID)
	data, err := c.get(ctx, op, "/deposit/status", params)
	if err != nil {
		return DepositStatus{}, err
	}
	var raw struct {
		ReffID string `json:"reff_id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return DepositStatus{}, &GatewayError{Op: op, Err: err}
	}
	if raw.ReffID == "" {
		raw.ReffID = reffID
	}
	return DepositStatus{ReffID: raw.ReffID, Status: raw.Status}, nil
}

func (c *Client) get(ctx context.Context, op, path string, params url.Values) (json.RawMessage, error) {
	params.Set("api_key", c.apiKey)
	endpoint := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &GatewayError{Op: op, Err: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &GatewayError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &GatewayError{Op: op, StatusCode: resp.StatusCode}
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &GatewayError{Op: op, Err: err}
	}
	if env.Status != "success" {
		return nil, &GatewayError{Op: op, StatusCode: resp.StatusCode, Message: env.Message}
	}
	return env.Data, nil
}

// rawAmount reduces a numeric field that may arrive as 5000, "5000" or
// "5000.00" to whole rupiah.
func rawAmount(raw json.RawMessage) (int64, error) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return 0, nil
	}
	value, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return value.Round(0).IntPart(), nil
}

func rawString(raw json.RawMessage) string {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "null" {
		return ""
	}
	return s
}

// The gateway reports expiry as "2006-01-02 15:04:05" in UTC.
func parseGatewayTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	parsed, err := time.Parse("2006-01-02 15:04:05", value)
	if err != nil {
		return nil
	}
	utc := parsed.UTC()
	return &utc
}

// Package gateway wraps the Mercado Pago REST API: checkout preference
// creation and payment lookups. The rest of the application talks to the
// Client interface so tests can substitute the gateway entirely.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client is the payment gateway collaborator contract.
type Client interface {
	// CreatePreference registers a checkout and returns its id and redirect URL.
	CreatePreference(ctx context.Context, req *PreferenceRequest) (*Preference, error)
	// GetPayment fetches a gateway payment by its gateway-assigned id.
	GetPayment(ctx context.Context, gatewayPaymentID string) (*PaymentInfo, error)
	// SearchPaymentsByReference lists gateway payments carrying the given
	// external reference, most recent first.
	SearchPaymentsByReference(ctx context.Context, externalReference string) ([]PaymentInfo, error)
}

// PreferenceItem is one line of a checkout preference.
type PreferenceItem struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	CurrencyID  string  `json:"currency_id"`
}

// PreferenceRequest is the payload for creating a checkout preference.
type PreferenceRequest struct {
	Items             []PreferenceItem `json:"items"`
	NotificationURL   string           `json:"notification_url"`
	ExternalReference string           `json:"external_reference"`
}

// Preference is the gateway's checkout descriptor.
type Preference struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

// PaymentInfo is the subset of a gateway payment the reconciler needs.
type PaymentInfo struct {
	ID                int64  `json:"id"`
	Status            string `json:"status"`
	ExternalReference string `json:"external_reference"`
}

type searchResponse struct {
	Results []PaymentInfo `json:"results"`
}

// HTTPClient implements Client against the Mercado Pago REST API.
type HTTPClient struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// Option configures the HTTP client.
type Option func(*HTTPClient)

// WithHTTPClient sets a custom HTTP client (tests).
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		c.httpClient = client
	}
}

// NewHTTPClient creates a gateway client. The timeout bounds every call so a
// stalled gateway cannot hold a payment request open indefinitely.
func NewHTTPClient(baseURL, accessToken string, timeout time.Duration, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

var _ Client = (*HTTPClient)(nil)

func (c *HTTPClient) CreatePreference(ctx context.Context, req *PreferenceRequest) (*Preference, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal preference request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/checkout/preferences", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("preference request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("preference creation failed with status %d", resp.StatusCode)
	}

	var pref Preference
	if err := json.NewDecoder(resp.Body).Decode(&pref); err != nil {
		return nil, fmt.Errorf("failed to decode preference response: %w", err)
	}
	if pref.ID == "" || pref.InitPoint == "" {
		return nil, fmt.Errorf("preference response missing id or init_point")
	}

	return &pref, nil
}

func (c *HTTPClient) GetPayment(ctx context.Context, gatewayPaymentID string) (*PaymentInfo, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v1/payments/"+url.PathEscape(gatewayPaymentID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("payment lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment lookup failed with status %d", resp.StatusCode)
	}

	var info PaymentInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode payment response: %w", err)
	}

	return &info, nil
}

func (c *HTTPClient) SearchPaymentsByReference(ctx context.Context, externalReference string) ([]PaymentInfo, error) {
	query := url.Values{}
	query.Set("external_reference", externalReference)
	query.Set("sort", "date_created")
	query.Set("criteria", "desc")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v1/payments/search?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("payment search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment search failed with status %d", resp.StatusCode)
	}

	var search searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	return search.Results, nil
}

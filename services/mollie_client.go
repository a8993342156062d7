package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// CreatePaymentRequest carries everything the provider needs to open a
// hosted checkout.
type CreatePaymentRequest struct {
	AmountCents int64
	Description string
	RedirectURL string
	WebhookURL  string
	Metadata    map[string]string
}

// CreatePaymentResult is the subset of the provider's create response the
// application cares about.
type CreatePaymentResult struct {
	ProviderID  string
	CheckoutURL string
	Status      string
}

// PaymentStatusResult is the provider's authoritative view of one payment.
type PaymentStatusResult struct {
	ProviderID string
	Status     string
}

// PaymentProvider is the gateway contract. Any transport or credential
// failure maps to ErrProviderUnavailable; callers must roll back local state
// started before the failing call.
type PaymentProvider interface {
	CreatePayment(req CreatePaymentRequest) (*CreatePaymentResult, error)
	GetPayment(providerID string) (*PaymentStatusResult, error)
}

// MollieClient talks to the Mollie v2 payments API over HTTP.
type MollieClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewMollieClient(baseURL, apiKey string) *MollieClient {
	return &MollieClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// FormatAmountCents converts integer minor units into the provider's decimal
// string amount format, e.g. 199 -> "1.99".
func FormatAmountCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

type molliePaymentResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  struct {
		Checkout struct {
			Href string `json:"href"`
		} `json:"checkout"`
	} `json:"_links"`
}

func (c *MollieClient) CreatePayment(req CreatePaymentRequest) (*CreatePaymentResult, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("%w: MOLLIE_API_KEY is not configured", ErrProviderUnavailable)
	}

	body := map[string]interface{}{
		"amount": map[string]string{
			"currency": "EUR",
			"value":    FormatAmountCents(req.AmountCents),
		},
		"description": req.Description,
		"redirectUrl": req.RedirectURL,
		"webhookUrl":  req.WebhookURL,
		"metadata":    req.Metadata,
	}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest(http.MethodPost, c.BaseURL+"/v2/payments", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	payment, err := c.do(httpReq, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &CreatePaymentResult{
		ProviderID:  payment.ID,
		CheckoutURL: payment.Links.Checkout.Href,
		Status:      payment.Status,
	}, nil
}

func (c *MollieClient) GetPayment(providerID string) (*PaymentStatusResult, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("%w: MOLLIE_API_KEY is not configured", ErrProviderUnavailable)
	}

	httpReq, err := http.NewRequest(http.MethodGet, c.BaseURL+"/v2/payments/"+providerID, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	payment, err := c.do(httpReq, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &PaymentStatusResult{
		ProviderID: payment.ID,
		Status:     payment.Status,
	}, nil
}

func (c *MollieClient) do(req *http.Request, wantStatus int) (*molliePaymentResponse, error) {
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantStatus {
		log.Warnf("Mollie %s %s returned %d: %s", req.Method, req.URL.Path, resp.StatusCode, string(respBody))
		return nil, fmt.Errorf("%w: unexpected status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var payment molliePaymentResponse
	if err := json.Unmarshal(respBody, &payment); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return &payment, nil
}

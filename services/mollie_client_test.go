package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmountCents(t *testing.T) {
	assert.Equal(t, "1.99", FormatAmountCents(199))
	assert.Equal(t, "12.00", FormatAmountCents(1200))
	assert.Equal(t, "0.05", FormatAmountCents(5))
	assert.Equal(t, "0.50", FormatAmountCents(50))
}

func TestCreatePaymentSendsRequestAndParsesResponse(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v2/payments", r.URL.Path)
		require.Equal(t, "Bearer test_key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{
			"id": "tr_abc123",
			"status": "open",
			"_links": {"checkout": {"href": "https://checkout.example/tr_abc123"}}
		}`))
	}))
	defer server.Close()

	client := NewMollieClient(server.URL, "test_key")
	result, err := client.CreatePayment(CreatePaymentRequest{
		AmountCents: 199,
		Description: "Challenge attempt #1",
		RedirectURL: "https://app.example/challenges/1?payment_id=1000",
		WebhookURL:  "https://app.example/payments/webhook",
		Metadata:    map[string]string{"payment_id": "1000"},
	})
	require.NoError(t, err)

	assert.Equal(t, "tr_abc123", result.ProviderID)
	assert.Equal(t, "https://checkout.example/tr_abc123", result.CheckoutURL)
	assert.Equal(t, "open", result.Status)

	amount := gotBody["amount"].(map[string]interface{})
	assert.Equal(t, "EUR", amount["currency"])
	assert.Equal(t, "1.99", amount["value"])
	assert.Equal(t, "Challenge attempt #1", gotBody["description"])
	assert.Equal(t, "https://app.example/payments/webhook", gotBody["webhookUrl"])
}

func TestCreatePaymentErrorStatusIsProviderUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "invalid key"}`))
	}))
	defer server.Close()

	client := NewMollieClient(server.URL, "bad_key")
	_, err := client.CreatePayment(CreatePaymentRequest{AmountCents: 199})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestCreatePaymentWithoutAPIKeyFailsBeforeAnyCall(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewMollieClient(server.URL, "")
	_, err := client.CreatePayment(CreatePaymentRequest{AmountCents: 199})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.False(t, called)
}

func TestGetPayment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v2/payments/tr_abc123", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "tr_abc123", "status": "paid"}`))
	}))
	defer server.Close()

	client := NewMollieClient(server.URL, "test_key")
	result, err := client.GetPayment("tr_abc123")
	require.NoError(t, err)
	assert.Equal(t, "tr_abc123", result.ProviderID)
	assert.Equal(t, "paid", result.Status)
}

func TestGetPaymentNetworkErrorIsProviderUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewMollieClient(server.URL, "test_key")
	_, err := client.GetPayment("tr_abc123")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCheckoutSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "payment", r.FormValue("mode"))
		assert.Equal(t, "mga", r.FormValue("line_items[0][price_data][currency]"))
		assert.Equal(t, "5000000", r.FormValue("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "1", r.FormValue("line_items[0][quantity]"))
		assert.Equal(t, "s1", r.FormValue("metadata[student_id]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_1","url":"https://pay.example/cs_1","payment_status":"unpaid"}`))
	}))
	defer srv.Close()

	client := NewClient("sk_test").WithBaseURL(srv.URL)
	session, err := client.CreateCheckoutSession(context.Background(), CheckoutSessionParams{
		Currency:   "mga",
		SuccessURL: "https://app.example/ok",
		CancelURL:  "https://app.example/ko",
		LineItems:  []CheckoutLineItem{{Name: "Ecolage Septembre", Amount: 5000000}},
		Metadata:   map[string]string{"student_id": "s1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_1", session.ID)
	assert.Equal(t, "https://pay.example/cs_1", session.URL)
}

func TestCreateCheckoutSessionAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid currency: xxx","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	client := NewClient("sk_test").WithBaseURL(srv.URL)
	_, err := client.CreateCheckoutSession(context.Background(), CheckoutSessionParams{
		Currency:  "xxx",
		LineItems: []CheckoutLineItem{{Name: "x", Amount: 1}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid currency")
}

package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignedPayload(t *testing.T) {
	verifier := NewSignatureVerifier("whsec_test", 5*time.Minute)
	now := time.Now()
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)

	header := verifier.Sign(payload, now)
	assert.NoError(t, verifier.Verify(payload, header, now))
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	verifier := NewSignatureVerifier("whsec_test", 5*time.Minute)
	now := time.Now()

	header := verifier.Sign([]byte(`{"id":"evt_1"}`), now)
	assert.Error(t, verifier.Verify([]byte(`{"id":"evt_2"}`), header, now))
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	now := time.Now()
	payload := []byte(`{}`)

	header := NewSignatureVerifier("whsec_other", time.Minute).Sign(payload, now)
	verifier := NewSignatureVerifier("whsec_test", time.Minute)
	assert.Error(t, verifier.Verify(payload, header, now))
}

func TestVerifyRejectsStaleTimestamp(t *testing.T) {
	verifier := NewSignatureVerifier("whsec_test", 5*time.Minute)
	payload := []byte(`{}`)
	signed := time.Now()

	header := verifier.Sign(payload, signed)
	err := verifier.Verify(payload, header, signed.Add(6*time.Minute))
	assert.Error(t, err)

	// Within the tolerance window the same header still verifies.
	assert.NoError(t, verifier.Verify(payload, header, signed.Add(4*time.Minute)))
}

func TestVerifyRejectsMalformedHeader(t *testing.T) {
	verifier := NewSignatureVerifier("whsec_test", time.Minute)
	now := time.Now()

	for _, header := range []string{"", "t=notanumber,v1=abc", "v1=abc", "t=12345"} {
		assert.Error(t, verifier.Verify([]byte(`{}`), header, now), "header %q", header)
	}
}

func TestParseCheckoutEvent(t *testing.T) {
	body := []byte(`{
        "id": "evt_1",
        "type": "checkout.session.completed",
        "data": {"object": {"id": "cs_1", "payment_status": "paid", "metadata": {"student_id": "s1"}}}
    }`)

	event, err := ParseEvent(body)
	require.NoError(t, err)
	assert.Equal(t, EventCheckoutCompleted, event.Type)

	session, err := CheckoutSessionFromEvent(event)
	require.NoError(t, err)
	assert.Equal(t, "cs_1", session.ID)
	assert.Equal(t, "paid", session.PaymentStatus)
	assert.Equal(t, "s1", session.Metadata["student_id"])
}

func TestParseEventRejectsGarbage(t *testing.T) {
	_, err := ParseEvent([]byte("not json"))
	assert.Error(t, err)
}

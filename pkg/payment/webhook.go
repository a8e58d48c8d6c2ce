package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EventCheckoutCompleted is the notification type emitted when a hosted
// checkout session finishes successfully.
const EventCheckoutCompleted = "checkout.session.completed"

// Event is a decoded webhook notification.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// CheckoutSessionPayload is the session object carried by a checkout event.
type CheckoutSessionPayload struct {
	ID            string            `json:"id"`
	PaymentStatus string            `json:"payment_status"`
	Metadata      map[string]string `json:"metadata"`
}

// SignatureVerifier checks the Stripe-Signature header: a timestamp and one or
// more HMAC-SHA256 signatures over "<timestamp>.<payload>" keyed with the
// webhook shared secret.
type SignatureVerifier struct {
	secret  []byte
	maxSkew time.Duration
}

// NewSignatureVerifier constructs a verifier with the given shared secret and
// timestamp tolerance.
func NewSignatureVerifier(secret string, maxSkew time.Duration) *SignatureVerifier {
	if maxSkew <= 0 {
		maxSkew = 5 * time.Minute
	}
	return &SignatureVerifier{secret: []byte(secret), maxSkew: maxSkew}
}

// Verify validates the signature header against the raw payload. The
// timestamp guards against replay outside the tolerance window.
func (v *SignatureVerifier) Verify(payload []byte, header string, now time.Time) error {
	if len(v.secret) == 0 {
		return fmt.Errorf("webhook secret not configured")
	}
	if header == "" {
		return fmt.Errorf("missing signature header")
	}

	var ts int64
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			parsed, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid signature timestamp")
			}
			ts = parsed
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if ts == 0 || len(signatures) == 0 {
		return fmt.Errorf("malformed signature header")
	}

	issued := time.Unix(ts, 0)
	skew := now.Sub(issued)
	if skew < 0 {
		skew = -skew
	}
	if skew > v.maxSkew {
		return fmt.Errorf("signature timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, v.secret)
	_, _ = fmt.Fprintf(mac, "%d.", ts)
	_, _ = mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, signature := range signatures {
		if hmac.Equal([]byte(expected), []byte(signature)) {
			return nil
		}
	}
	return fmt.Errorf("no matching signature")
}

// Sign produces a signature header for the payload; used by tests to build
// valid webhook requests.
func (v *SignatureVerifier) Sign(payload []byte, now time.Time) string {
	ts := now.Unix()
	mac := hmac.New(sha256.New, v.secret)
	_, _ = fmt.Fprintf(mac, "%d.", ts)
	_, _ = mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

// ParseEvent decodes the webhook body.
func ParseEvent(payload []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("decode webhook event: %w", err)
	}
	return &event, nil
}

// CheckoutSessionFromEvent extracts the session object from a checkout event.
func CheckoutSessionFromEvent(event *Event) (*CheckoutSessionPayload, error) {
	var session CheckoutSessionPayload
	if err := json.Unmarshal(event.Data.Object, &session); err != nil {
		return nil, fmt.Errorf("decode checkout session payload: %w", err)
	}
	return &session, nil
}

package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pcamara21/Checkout-Backend/internal/webhook"
)

const signatureTolerance = 5 * time.Minute

var (
	ErrNoSignature      = errors.New("missing or malformed signature header")
	ErrSignatureExpired = errors.New("signature timestamp outside tolerance")
	ErrNoMatch          = errors.New("no matching v1 signature")
)

// WebhookVerifier validates notification payloads against the shared webhook
// secret. The header format is "t=<unix>,v1=<hex hmac>[,v1=...]"; the signed
// message is "<t>.<payload>" under HMAC-SHA256.
type WebhookVerifier struct {
	secret string
	now    func() time.Time
}

func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: secret, now: time.Now}
}

func (v *WebhookVerifier) VerifyEvent(payload []byte, sigHeader string) (webhook.Event, error) {
	ts, sigs, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return webhook.Event{}, err
	}
	if age := v.now().Sub(time.Unix(ts, 0)); age > signatureTolerance || age < -signatureTolerance {
		return webhook.Event{}, ErrSignatureExpired
	}

	expected := Signature(v.secret, ts, payload)
	matched := false
	for _, sig := range sigs {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			matched = true
			break
		}
	}
	if !matched {
		return webhook.Event{}, ErrNoMatch
	}

	var event webhook.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return webhook.Event{}, fmt.Errorf("verified payload did not parse: %w", err)
	}
	return event, nil
}

// Signature computes the v1 signature for a timestamp and payload. Exported
// so tests can construct signed deliveries.
func Signature(secret string, ts int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureHeader renders a complete signature header for a payload, signing
// it with the given secret at the given time. Test helper.
func SignatureHeader(secret string, t time.Time, payload []byte) string {
	ts := t.Unix()
	return fmt.Sprintf("t=%d,v1=%s", ts, Signature(secret, ts, payload))
}

func parseSignatureHeader(header string) (ts int64, sigs []string, err error) {
	if header == "" {
		return 0, nil, ErrNoSignature
	}
	for _, part := range strings.Split(header, ",") {
		k, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts, err = strconv.ParseInt(val, 10, 64)
			if err != nil {
				return 0, nil, ErrNoSignature
			}
		case "v1":
			sigs = append(sigs, val)
		}
	}
	if ts == 0 || len(sigs) == 0 {
		return 0, nil, ErrNoSignature
	}
	return ts, sigs, nil
}

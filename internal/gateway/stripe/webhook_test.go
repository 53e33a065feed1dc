package stripe

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test"

func verifierAt(t time.Time) *WebhookVerifier {
	v := NewWebhookVerifier(testSecret)
	v.now = func() time.Time { return t }
	return v
}

func TestVerifyEventRoundTrip(t *testing.T) {
	now := time.Now()
	payload := []byte(`{"id":"evt_1","type":"charge.succeeded","data":{"object":{"object":"charge","status":"succeeded"}}}`)
	header := SignatureHeader(testSecret, now, payload)

	event, err := verifierAt(now).VerifyEvent(payload, header)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, "charge.succeeded", event.Type)
	assert.Equal(t, "charge", event.Data.Object.Kind)
}

func TestVerifyEventTamperedPayload(t *testing.T) {
	now := time.Now()
	payload := []byte(`{"id":"evt_1"}`)
	header := SignatureHeader(testSecret, now, payload)

	_, err := verifierAt(now).VerifyEvent([]byte(`{"id":"evt_2"}`), header)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestVerifyEventWrongSecret(t *testing.T) {
	now := time.Now()
	payload := []byte(`{"id":"evt_1"}`)
	header := SignatureHeader("whsec_other", now, payload)

	_, err := verifierAt(now).VerifyEvent(payload, header)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestVerifyEventExpiredTimestamp(t *testing.T) {
	now := time.Now()
	payload := []byte(`{"id":"evt_1"}`)
	header := SignatureHeader(testSecret, now.Add(-10*time.Minute), payload)

	_, err := verifierAt(now).VerifyEvent(payload, header)
	assert.ErrorIs(t, err, ErrSignatureExpired)
}

func TestVerifyEventMissingHeader(t *testing.T) {
	_, err := verifierAt(time.Now()).VerifyEvent([]byte(`{}`), "")
	assert.ErrorIs(t, err, ErrNoSignature)
}

func TestVerifyEventMalformedHeader(t *testing.T) {
	_, err := verifierAt(time.Now()).VerifyEvent([]byte(`{}`), "v1=deadbeef")
	assert.ErrorIs(t, err, ErrNoSignature)
}

func TestVerifyEventAcceptsAnyMatchingV1(t *testing.T) {
	now := time.Now()
	payload := []byte(`{"id":"evt_1"}`)
	ts := now.Unix()
	header := fmt.Sprintf("t=%d,v1=%s,v1=%s", ts, "0000", Signature(testSecret, ts, payload))

	_, err := verifierAt(now).VerifyEvent(payload, header)
	assert.NoError(t, err)
}

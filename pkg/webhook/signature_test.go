package webhook_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Blessedbiello/Z402/pkg/webhook"
)

const testSecret = "whsec_test_secret"

func eventPayload() string {
	return `{"id":"evt_1","type":"payment.settled","data":{"transactionId":"tx_9","amount":"0.05"},"createdAt":"2026-08-25T12:00:00Z"}`
}

func TestVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	payload := eventPayload()
	header, err := webhook.ConstructSignature(payload, testSecret)
	require.NoError(t, err)

	event, err := webhook.Verify(payload, header, testSecret)
	require.NoError(t, err)

	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, "payment.settled", event.Type)
	assert.Equal(t, time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC), event.CreatedAt)

	var data struct {
		TransactionID string `json:"transactionId"`
		Amount        string `json:"amount"`
	}
	require.NoError(t, json.Unmarshal(event.Data, &data))
	assert.Equal(t, "tx_9", data.TransactionID)
	assert.Equal(t, "0.05", data.Amount)
}

func TestVerify_TamperedPayload(t *testing.T) {
	t.Parallel()

	payload := eventPayload()
	header, err := webhook.ConstructSignature(payload, testSecret)
	require.NoError(t, err)

	// Flip a single byte of the body.
	tampered := []byte(payload)
	tampered[len(tampered)/2] ^= 0x01

	_, err = webhook.Verify(tampered, header, testSecret)
	require.ErrorIs(t, err, webhook.ErrMismatch)
	assert.ErrorIs(t, err, webhook.ErrVerificationFailed)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	payload := eventPayload()
	header, err := webhook.ConstructSignature(payload, testSecret)
	require.NoError(t, err)

	_, err = webhook.Verify(payload, header, "whsec_other")
	require.ErrorIs(t, err, webhook.ErrMismatch)
}

func TestVerify_MissingInputs(t *testing.T) {
	t.Parallel()

	_, err := webhook.Verify(eventPayload(), "", testSecret)
	require.ErrorIs(t, err, webhook.ErrMissingSignature)

	header, err := webhook.ConstructSignature(eventPayload(), testSecret)
	require.NoError(t, err)
	_, err = webhook.Verify(eventPayload(), header, "")
	require.ErrorIs(t, err, webhook.ErrMissingSecret)
}

func TestParseSignature(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		header  string
		wantErr error
		wantTS  int64
		wantMAC string
	}{
		{name: "valid", header: "t=1756123200,v1=deadbeef", wantTS: 1756123200, wantMAC: "deadbeef"},
		{name: "extra components ignored", header: "t=1756123200,v0=old,v1=deadbeef", wantTS: 1756123200, wantMAC: "deadbeef"},
		{name: "missing mac", header: "t=1756123200", wantErr: webhook.ErrInvalidFormat},
		{name: "missing timestamp", header: "v1=deadbeef", wantErr: webhook.ErrInvalidFormat},
		{name: "non-numeric timestamp", header: "t=soon,v1=deadbeef", wantErr: webhook.ErrInvalidTimestamp},
		{name: "garbage", header: "not a signature", wantErr: webhook.ErrInvalidFormat},
		{name: "empty", header: "", wantErr: webhook.ErrInvalidFormat},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sig, err := webhook.ParseSignature(tt.header)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTS, sig.Timestamp)
			assert.Equal(t, tt.wantMAC, sig.MAC)
		})
	}
}

func TestVerify_FreshnessWindow(t *testing.T) {
	t.Parallel()

	payload := eventPayload()
	signedAt := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	header, err := webhook.ConstructSignatureAt(payload, testSecret, signedAt)
	require.NoError(t, err)

	tolerance := 5 * time.Minute
	verifyAt := func(now time.Time) error {
		_, err := webhook.Verify(payload, header, testSecret,
			webhook.WithTolerance(tolerance),
			webhook.WithClock(func() time.Time { return now }))
		return err
	}

	// Exactly at the tolerance boundary is still accepted; one second past
	// it is rejected, in both directions.
	assert.NoError(t, verifyAt(signedAt.Add(tolerance)))
	assert.ErrorIs(t, verifyAt(signedAt.Add(tolerance+time.Second)), webhook.ErrStaleSignature)
	assert.NoError(t, verifyAt(signedAt.Add(-tolerance)))
	assert.ErrorIs(t, verifyAt(signedAt.Add(-tolerance-time.Second)), webhook.ErrStaleSignature)
}

func TestVerify_DefaultToleranceRejectsOldSignature(t *testing.T) {
	t.Parallel()

	payload := eventPayload()
	header, err := webhook.ConstructSignatureAt(payload, testSecret, time.Now().Add(-400*time.Second))
	require.NoError(t, err)

	_, err = webhook.Verify(payload, header, testSecret)
	require.ErrorIs(t, err, webhook.ErrStaleSignature)
}

func TestVerify_StructuredPayload(t *testing.T) {
	t.Parallel()

	payload := map[string]any{"id": "evt_2", "type": "payment.failed"}
	header, err := webhook.ConstructSignature(payload, testSecret)
	require.NoError(t, err)

	event, err := webhook.Verify(payload, header, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "evt_2", event.ID)
	assert.Equal(t, "payment.failed", event.Type)
}

func TestVerify_NonObjectPayload(t *testing.T) {
	t.Parallel()

	header, err := webhook.ConstructSignature("[1,2,3]", testSecret)
	require.NoError(t, err)

	// The MAC checks out but the payload is not an event object.
	_, err = webhook.Verify("[1,2,3]", header, testSecret)
	require.ErrorIs(t, err, webhook.ErrInvalidPayload)

	// VerifyPayload leaves decoding to the caller and succeeds.
	canonical, err := webhook.VerifyPayload("[1,2,3]", header, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "[1,2,3]", string(canonical))
}

func TestConstructSignatureAt_HeaderShape(t *testing.T) {
	t.Parallel()

	at := time.Unix(1756123200, 0)
	header, err := webhook.ConstructSignatureAt("body", testSecret, at)
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("t=%d,v1=", at.Unix()), header[:len(header)-64])
	assert.Len(t, header, len("t=1756123200,v1=")+64)

	sig, err := webhook.ParseSignature(header)
	require.NoError(t, err)
	assert.Equal(t, at.Unix(), sig.Timestamp)
	assert.Len(t, sig.MAC, 64)
}

package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signedWebhookRequest(secret, id, timestamp string, body []byte) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader(body))
	req.Header.Set("svix-id", id)
	req.Header.Set("svix-timestamp", timestamp)

	signedContent := fmt.Sprintf("%s.%s.%s", id, timestamp, string(body))
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signedContent))
	req.Header.Set("svix-signature", "v1,"+hex.EncodeToString(mac.Sum(nil)))

	return req
}

func TestVerifyClerkSignature(t *testing.T) {
	t.Setenv("CLERK_WEBHOOK_SECRET", "whsec_test")

	body := []byte(`{"type": "user.created", "data": {"id": "user_abc"}}`)
	req := signedWebhookRequest("whsec_test", "msg_1", "1756600000", body)

	assert.True(t, verifyClerkSignature(req, body))
}

func TestVerifyClerkSignature_WrongSecret(t *testing.T) {
	t.Setenv("CLERK_WEBHOOK_SECRET", "whsec_test")

	body := []byte(`{"type": "user.created"}`)
	req := signedWebhookRequest("whsec_other", "msg_1", "1756600000", body)

	assert.False(t, verifyClerkSignature(req, body))
}

func TestVerifyClerkSignature_MissingHeaders(t *testing.T) {
	t.Setenv("CLERK_WEBHOOK_SECRET", "whsec_test")

	body := []byte(`{}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader(body))

	assert.False(t, verifyClerkSignature(req, body))
}

func TestVerifyClerkSignature_TamperedBody(t *testing.T) {
	t.Setenv("CLERK_WEBHOOK_SECRET", "whsec_test")

	body := []byte(`{"type": "user.created"}`)
	req := signedWebhookRequest("whsec_test", "msg_1", "1756600000", body)

	assert.False(t, verifyClerkSignature(req, []byte(`{"type": "user.deleted"}`)))
}

func TestHandleClerkWebhook_RejectsBadSignature(t *testing.T) {
	t.Setenv("CLERK_WEBHOOK_SECRET", "whsec_test")

	h := NewWebhookHandler(nil)

	body := []byte(`{"type": "user.created", "data": {"id": "user_abc"}}`)
	req := signedWebhookRequest("whsec_wrong", "msg_1", "1756600000", body)
	rr := httptest.NewRecorder()

	h.HandleClerkWebhook(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

package controller

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"aspir_backend/internals/configs"
)

// Covers the request-shape gates that reject or ignore a webhook
// before any reconciliation happens.

func newWebhookApp() *fiber.App {
	app := fiber.New()
	ctrl := NewWebhookController(nil, nil)
	app.Post("/webhooks/squad", ctrl.SquadWebhook)
	app.Post("/webhooks/paystack", ctrl.PaystackWebhook)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string, headers map[string]string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(raw)
}

func TestSquadWebhookRejectsMalformedBody(t *testing.T) {
	app := newWebhookApp()
	status, body := postJSON(t, app, "/webhooks/squad", `{not json`, nil)
	if status != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if body != "invalid payload" {
		t.Errorf("body = %q", body)
	}
}

func TestSquadWebhookIgnoresOtherEvents(t *testing.T) {
	app := newWebhookApp()
	status, body := postJSON(t, app, "/webhooks/squad",
		`{"Event":"charge_failed","Body":{"transaction_ref":"ASPIR-FULL-x"}}`, nil)
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body != "ignored" {
		t.Errorf("body = %q, want ignored", body)
	}
}

func TestSquadWebhookRequiresReference(t *testing.T) {
	app := newWebhookApp()
	status, _ := postJSON(t, app, "/webhooks/squad",
		`{"Event":"charge_successful","Body":{"transaction_status":"success"}}`, nil)
	if status != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
}

func paystackSign(body, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestPaystackWebhookRejectsBadSignature(t *testing.T) {
	t.Setenv("PAYSTACK_SECRET_KEY", "sk_test_secret")
	configs.Reload()
	t.Cleanup(func() { configs.Reload() })

	app := newWebhookApp()
	body := `{"event":"charge.success","data":{"reference":"r"}}`

	status, _ := postJSON(t, app, "/webhooks/paystack", body, nil)
	if status != fiber.StatusUnauthorized {
		t.Fatalf("missing signature: status = %d, want 401", status)
	}

	status, _ = postJSON(t, app, "/webhooks/paystack", body,
		map[string]string{"X-Paystack-Signature": paystackSign(body, "wrong-secret")})
	if status != fiber.StatusUnauthorized {
		t.Fatalf("forged signature: status = %d, want 401", status)
	}
}

func TestPaystackWebhookIgnoresOtherEvents(t *testing.T) {
	t.Setenv("PAYSTACK_SECRET_KEY", "sk_test_secret")
	configs.Reload()
	t.Cleanup(func() { configs.Reload() })

	app := newWebhookApp()
	body := `{"event":"transfer.success","data":{"reference":"r"}}`

	status, respBody := postJSON(t, app, "/webhooks/paystack", body,
		map[string]string{"X-Paystack-Signature": paystackSign(body, "sk_test_secret")})
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if respBody != "ignored" {
		t.Errorf("body = %q, want ignored", respBody)
	}
}

package service

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"testing"
)

func sign(body []byte, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestValidPaystackSignature(t *testing.T) {
	body := []byte(`{"event":"charge.success","data":{"reference":"r"}}`)
	secret := "sk_test_secret"

	if !ValidPaystackSignature(body, sign(body, secret), secret) {
		t.Fatal("a correct signature must validate")
	}
	if ValidPaystackSignature(body, sign(body, "wrong-secret"), secret) {
		t.Fatal("a signature made with another secret must not validate")
	}
	if ValidPaystackSignature([]byte(`{"tampered":true}`), sign(body, secret), secret) {
		t.Fatal("a tampered body must not validate")
	}
	if ValidPaystackSignature(body, "", secret) {
		t.Fatal("an empty signature must not validate")
	}
	if ValidPaystackSignature(body, sign(body, ""), "") {
		t.Fatal("an empty secret must never validate")
	}
}

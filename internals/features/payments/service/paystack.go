package service

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

/* =========================================================
   Paystack webhook signature

   Paystack signs the raw request body with HMAC-SHA512 using the
   account secret and delivers the hex digest in the
   X-Paystack-Signature header.
========================================================= */

// ValidPaystackSignature verifies the webhook signature with a
// constant-time comparison.
func ValidPaystackSignature(rawBody []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

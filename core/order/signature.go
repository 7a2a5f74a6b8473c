package order

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signature computes the gateway callback signature: the hex-encoded
// HMAC-SHA256 of "<orderID>|<paymentID>" under the shared key secret.
func Signature(secret string, orderID string, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares the expected signature against the claimed
// one in constant time.
func VerifySignature(secret string, orderID string, paymentID string, claimed string) bool {
	expected := Signature(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(claimed))
}

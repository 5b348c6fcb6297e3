package paymentgateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	errs "ggshop-bot/internal/domain/error"
)

// verifyHMAC checks a hex-encoded HMAC-SHA256 signature over the raw body in
// constant time. An empty secret disables verification entirely; that mode is
// for local development against provider sandboxes without signing.
func verifyHMAC(secret string, rawBody []byte, signature string) error {
	if secret == "" {
		return nil
	}
	if signature == "" {
		return errs.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return errs.ErrInvalidSignature
	}
	return nil
}

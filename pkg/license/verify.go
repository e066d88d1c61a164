package license

import (
	"crypto/hmac"
	"encoding/base64"
	"encoding/json"
	"strings"
)

// Verify authenticates key and decodes its claims.
// The returned error is non-nil only when the codec has no signing secret;
// every problem with the key itself is reported through Result.Reason.
// The signature is checked before the claims are parsed.
func (c *Codec) Verify(key string) (Result, error) {
	if !c.Configured() {
		return Result{}, ErrMissingSigningSecret
	}

	if !strings.HasPrefix(key, FormatTag+separator) {
		return reject(ReasonFormat), nil
	}

	parts := strings.Split(key, separator)
	if len(parts) != 3 {
		return reject(ReasonFormat), nil
	}
	payload, sig := parts[1], parts[2]

	if !hmac.Equal([]byte(c.sign(payload)), []byte(sig)) {
		return reject(ReasonSignature), nil
	}

	data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(payload, "="))
	if err != nil {
		return reject(ReasonFormat), nil
	}

	var claims Claims
	if err := json.Unmarshal(data, &claims); err != nil {
		return reject(ReasonFormat), nil
	}

	if claims.Product != c.product {
		return reject(ReasonProduct), nil
	}
	if r := c.CheckScope(claims.PaymentLinkID, claims.PriceID); r != "" {
		return reject(r), nil
	}

	return Result{Valid: true, Claims: &claims}, nil
}

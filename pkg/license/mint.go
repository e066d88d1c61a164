package license

import (
	"encoding/base64"
	"errors"
)

// Mint signs claims and returns the key string.
// The product tag is always the codec's own; a zero Version is written as
// SchemaVersion. Mint never reads the clock: IssuedAt must come from the caller.
func (c *Codec) Mint(claims Claims) (string, error) {
	if !c.Configured() {
		return "", ErrMissingSigningSecret
	}

	claims.Product = c.product
	if claims.Version == 0 {
		claims.Version = SchemaVersion
	}

	data, err := claims.encode()
	if err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}

	payload := base64.RawURLEncoding.EncodeToString(data)
	return FormatTag + separator + payload + separator + c.sign(payload), nil
}

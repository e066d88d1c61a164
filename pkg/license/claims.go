package license

import (
	"bytes"
	"encoding/json"
	"unicode/utf8"
)

const (
	// FormatTag prefixes every key and identifies the wire format.
	FormatTag = "LSK1"
	// DefaultProduct is the product tag embedded in LinkSphinx keys.
	DefaultProduct = "linksphinx"
	// SchemaVersion is the claims schema written by Mint.
	SchemaVersion = 1

	separator = "."
)

// Claims is the payload certified by a license key.
// Field order defines the canonical JSON encoding and must not change.
type Claims struct {
	Product       string `json:"p"`
	Email         string `json:"em"`
	IssuedAt      int64  `json:"iat"` // milliseconds since epoch, taken from the payment record
	Version       int    `json:"ver"`
	PaymentLinkID string `json:"plink"`
	PriceID       string `json:"price"`
}

// encode produces the canonical JSON form: declaration field order,
// no HTML escaping, U+2028 and U+2029 written raw, no trailing newline.
func (c Claims) encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	return rawLineSeparators(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// rawLineSeparators replaces the \u2028 and \u2029 escapes encoding/json
// always emits with the literal characters. Other escapes are copied as is.
func rawLineSeparators(b []byte) []byte {
	if !bytes.Contains(b, []byte(`\u202`)) {
		return b
	}

	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 >= len(b) {
			out = append(out, b[i])
			continue
		}
		if esc := b[i:]; len(esc) >= 6 && string(esc[:5]) == `\u202` && (esc[5] == '8' || esc[5] == '9') {
			out = utf8.AppendRune(out, rune(0x2020+int(esc[5]-'0')))
			i += 5
			continue
		}
		out = append(out, b[i], b[i+1])
		i++
	}
	return out
}

// Reason explains why a key failed verification.
type Reason string

const (
	ReasonFormat      Reason = "format"
	ReasonSignature   Reason = "sig"
	ReasonProduct     Reason = "product"
	ReasonPaymentLink Reason = "plink"
	ReasonPrice       Reason = "price"
)

// Result is the outcome of Verify. Claims is set only when Valid is true.
type Result struct {
	Valid  bool
	Claims *Claims
	Reason Reason
}

func reject(r Reason) Result {
	return Result{Reason: r}
}

// Package license mints and verifies LinkSphinx license keys.
//
// A license key is a compact, stateless credential: the JSON claims of a
// purchase signed with HMAC-SHA256 under a server-held secret. Minting is a
// pure function of the claims, so two independent callers holding the same
// purchase facts always produce the same key.
//
// Token format: LSK1.base64url(claims).base64url(signature)
//
// The signature covers the encoded claims segment (not the raw JSON) and is
// compared in constant time during verification. Claims are serialized in a
// fixed field order (p, em, iat, ver, plink, price), which keeps keys
// byte-compatible with keys minted by earlier versions of the service.
//
// # Usage
//
//	import "github.com/linksphinx/licensekit/pkg/license"
//
//	codec := license.New(license.Config{SigningSecret: secret})
//
//	key, err := codec.Mint(license.Claims{
//	    Email:    "buyer@example.com",
//	    IssuedAt: session.Created * 1000,
//	})
//	if err != nil {
//	    // only ErrMissingSigningSecret: the service is misconfigured
//	}
//
//	res, err := codec.Verify(key)
//	if err != nil {
//	    // operator-side problem, not an invalid key
//	}
//	if !res.Valid {
//	    log.Printf("rejected: %s", res.Reason)
//	}
//
// Keys carry no expiry; they are lifetime credentials. Optional allow-lists
// (payment link id, price id) narrow which keys verify as valid.
package license

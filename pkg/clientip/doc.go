// Package clientip resolves the originating client address of a request
// served behind reverse proxies.
//
// A Resolver checks its trusted headers in order and falls back to
// RemoteAddr. X-Forwarded-For contributes its first valid entry.
// The default header order is CF-Connecting-IP, X-Real-IP, X-Forwarded-For.
//
//	r := chi.NewRouter()
//	r.Use(clientip.Middleware)
//
//	ip := clientip.GetIPFromContext(req.Context())
//
// Only list headers that your edge overwrites. A header passed through
// from the client unchanged can be spoofed.
package clientip

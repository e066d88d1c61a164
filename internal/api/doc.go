// Package api exposes the license endpoints over HTTP.
//
//	POST /api/{provider}-webhook   provider webhook, raw body + signature header
//	GET  /api/success              post-checkout page, ?session_id=&provider=
//	POST /api/verify-license       {"license": "...", "email": "..."}
//	POST /api/resend-license       {"license": "..."} or {"session_id": "..."}, optional "to"
//	GET  /health/live, /health/ready
//
// Clients only see generic messages; the precise rejection reason is logged.
package api

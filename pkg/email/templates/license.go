// Package templates holds the HTML email bodies.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// LicenseData fills the license delivery email.
type LicenseData struct {
	ProductName  string
	Key          string
	SupportEmail string
}

// LicenseEmail renders the message that carries a license key to the buyer.
func LicenseEmail(d LicenseData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		product := templ.EscapeString(d.ProductName)
		parts := []string{
			`<div style="font-family:system-ui,Segoe UI,Roboto,Arial,sans-serif;max-width:560px">`,
			`<h2>Thanks for supporting `, product, `</h2>`,
			`<p>Here is your <strong>`, product, ` Pro</strong> license key:</p>`,
			`<pre style="background:#0b1220;color:#66ff66;padding:14px;border-radius:10px;font-size:15px;white-space:pre-wrap;word-break:break-all">`,
			templ.EscapeString(d.Key),
			`</pre>`,
			`<p>Open the extension options, choose <em>Have a license?</em>, paste the key and press <strong>Redeem</strong>.</p>`,
			`<hr>`,
			`<small>Keep this email for your records.`,
		}
		if d.SupportEmail != "" {
			support := templ.EscapeString(d.SupportEmail)
			parts = append(parts, ` Questions? Write to <a href="mailto:`, support, `">`, support, `</a>.`)
		}
		parts = append(parts, `</small></div>`)

		for _, p := range parts {
			if _, err := io.WriteString(w, p); err != nil {
				return err
			}
		}
		return nil
	})
}

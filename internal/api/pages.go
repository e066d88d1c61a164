package api

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

type successPage struct {
	ProductName string
	Key         string
	QRCode      string // data URI, optional
	Sending     bool   // a background email send was started
}

const pageStyle = `body{font:16px system-ui,Segoe UI,Roboto,Arial,sans-serif;margin:40px auto;max-width:700px;padding:0 16px;color:#111}` +
	`code{display:block;background:#f1f1f1;padding:12px;border-radius:8px;word-break:break-all}` +
	`button{margin-top:12px;padding:8px 16px;border-radius:8px;border:1px solid #888;background:#fff;cursor:pointer}` +
	`img{margin-top:20px;border:1px solid #eee;border-radius:8px}`

func writeAll(w io.Writer, parts ...string) error {
	for _, p := range parts {
		if _, err := io.WriteString(w, p); err != nil {
			return err
		}
	}
	return nil
}

func successView(p successPage) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		product := templ.EscapeString(p.ProductName)
		parts := []string{
			`<!doctype html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width,initial-scale=1">`,
			`<title>`, product, ` - Success</title><style>`, pageStyle, `</style></head><body>`,
			`<h1>Thanks! Your `, product, ` Pro license</h1>`,
			`<p>License key:</p><code id="k">`, templ.EscapeString(p.Key), `</code>`,
			`<button type="button" onclick="navigator.clipboard.writeText(document.getElementById('k').textContent).then(()=>{this.textContent='Copied'})">Copy key</button>`,
			`<p>Open the extension's Options page, click <i>Have a license?</i>, paste the key and press <b>Redeem</b>.</p>`,
		}
		if p.Sending {
			parts = append(parts, `<p>We are emailing the key to you as well.</p>`)
		}
		if p.QRCode != "" {
			parts = append(parts, `<img alt="License key QR code" width="220" height="220" src="`, templ.EscapeString(p.QRCode), `">`)
		}
		parts = append(parts, `</body></html>`)
		return writeAll(w, parts...)
	})
}

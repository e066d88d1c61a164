package email

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// DevSender is the local outbox: every message becomes an .html body and a
// .json envelope in dir, so a developer can open the license email without
// any provider account.
type DevSender struct {
	dir string
	now func() time.Time
}

// NewDevSender writes to dir, created on first send.
func NewDevSender(dir string) *DevSender {
	return &DevSender{dir: dir, now: time.Now}
}

func (d *DevSender) Dir() string {
	return d.dir
}

type envelope struct {
	Timestamp string `json:"timestamp"`
	SendTo    string `json:"send_to"`
	Subject   string `json:"subject"`
	Tag       string `json:"tag,omitempty"`
}

func (d *DevSender) SendEmail(_ context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("%w: outbox: %v", ErrFailedToSendEmail, err)
	}

	at := d.now()
	label := params.Tag
	if label == "" {
		label = params.Subject
	}
	base := filepath.Join(d.dir, at.Format("20060102_150405.000000")+"_"+outboxName(label))

	meta, err := json.MarshalIndent(envelope{
		Timestamp: at.Format(time.RFC3339),
		SendTo:    params.SendTo,
		Subject:   params.Subject,
		Tag:       params.Tag,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: outbox: %v", ErrFailedToSendEmail, err)
	}

	for ext, data := range map[string][]byte{".html": []byte(params.BodyHTML), ".json": meta} {
		if err := os.WriteFile(base+ext, data, 0o600); err != nil {
			return fmt.Errorf("%w: outbox: %v", ErrFailedToSendEmail, err)
		}
	}
	return nil
}

// outboxName lowercases s and keeps letters, digits, '-', '_' and '.',
// turning spaces into '_'. The result is at most 100 bytes.
func outboxName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r == ' ':
			b.WriteByte('_')
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("-_.", r)):
			b.WriteRune(r)
		}
		if b.Len() >= 100 {
			break
		}
	}
	if b.Len() == 0 {
		return "email"
	}
	return b.String()
}

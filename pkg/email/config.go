package email

// Provider names accepted in Config.Provider.
const (
	ProviderPostmark = "postmark"
	ProviderResend   = "resend"
	ProviderDev      = "dev"
)

// Config holds email delivery configuration. Only the credentials of the
// selected provider are required.
type Config struct {
	Provider string `env:"EMAIL_PROVIDER" envDefault:"dev"`

	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	ResendAPIKey         string `env:"RESEND_API_KEY"`
	DevDir               string `env:"EMAIL_DEV_DIR" envDefault:"./tmp/emails"`

	// SenderEmail accepts a display name, e.g. "LinkSphinx <licenses@linksphinx.app>".
	SenderEmail  string `env:"LICENSE_FROM_EMAIL" envDefault:"LinkSphinx <no-reply@yourdomain.com>"`
	SupportEmail string `env:"SUPPORT_EMAIL"`
}

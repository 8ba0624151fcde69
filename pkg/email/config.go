package email

// Config holds outbound email configuration.
// The Postmark tokens are optional so that development environments can run
// with the DevSender instead of a live provider. SenderEmail and SupportEmail
// are always required: they establish the from and reply-to identity for
// every confirmation, password reset, and email change notice we send.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL,required"`
	SupportEmail         string `env:"SUPPORT_EMAIL,required"`
}

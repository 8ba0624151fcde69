// Package email provides a provider-agnostic interface for the transactional
// emails the identity flows produce: account confirmations, password resets,
// and email change notices.
//
// The package is built around the EmailSender interface so providers can be
// swapped without touching application code. Two implementations ship here:
//   - NewPostmarkClient for production delivery with open/link tracking
//   - NewDevSender for local development, which saves emails to disk
//
// Both validate SendEmailParams before sending and report failures through
// the package sentinel errors:
//   - ErrInvalidConfig: configuration validation failed
//   - ErrInvalidParams: message parameters validation failed
//   - ErrFailedToSendEmail: delivery failed
//
// Basic usage:
//
//	client, err := email.NewPostmarkClient(cfg)
//	if err != nil {
//	    return err
//	}
//	err = client.SendEmail(ctx, email.SendEmailParams{
//	    SendTo:   "user@example.com",
//	    Subject:  "Confirm your account",
//	    BodyHTML: htmlContent,
//	    Tag:      "confirm",
//	})
//
// The Tag is optional; Postmark uses it for analytics and DevSender uses it
// to name the saved files, so tagging each flow keeps dev output readable.
package email

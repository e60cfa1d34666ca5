package service

import "context"

// EmailSender delivers transactional auth emails.
// The auth flows call it fire-and-forget: returned errors are logged, never surfaced.
type EmailSender interface {
	SendVerificationEmail(ctx context.Context, to, username, verifyURL string) error
	SendPasswordResetEmail(ctx context.Context, to, username, resetURL string) error
	SendWelcomeEmail(ctx context.Context, to, username string) error
	SendPasswordChangeNotification(ctx context.Context, to, username string) error
	SendEmailChangeNotification(ctx context.Context, to, username, newEmail string) error
}

package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/akshayde/account_management_app/internal/core/domain"
	portssvc "github.com/akshayde/account_management_app/internal/core/ports/services"
	"github.com/akshayde/account_management_app/internal/platform/config"
)

// SendgridNotifier sends the "account deleted" notification email. The
// destroy operation treats this as fire-and-forget; errors returned here are
// logged by the caller and never fail the deletion.
type SendgridNotifier struct {
	apiKey    string
	fromEmail string
}

// NewSendgridNotifier creates a notifier from application configuration.
func NewSendgridNotifier(cfg *config.Config) *SendgridNotifier {
	return &SendgridNotifier{
		apiKey:    cfg.SendgridAPIKey,
		fromEmail: cfg.NotifyFromEmail,
	}
}

// Ensure SendgridNotifier implements the port
var _ portssvc.DeletionNotifier = (*SendgridNotifier)(nil)

// NotifyUserDeleted emails the deleted account's address. Without an API key
// the notification is logged only, which keeps local development working.
func (n *SendgridNotifier) NotifyUserDeleted(ctx context.Context, user domain.User) error {
	if n.apiKey == "" {
		slog.Info("Sendgrid not configured; skipping account-deleted notification",
			slog.String("user_id", user.UserID))
		return nil
	}

	from := mail.NewEmail("Account Management", n.fromEmail)
	to := mail.NewEmail(user.Name, user.Email)
	subject := "Your account has been deleted"
	plainText := fmt.Sprintf("Hi %s, your account was deleted. You can restore it by logging in through the account recovery page.", user.Name)
	htmlContent := fmt.Sprintf("<p>Hi %s,</p><p>Your account was deleted. You can restore it through the account recovery page.</p>", user.Name)

	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)
	client := sendgrid.NewSendClient(n.apiKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send account-deleted email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected account-deleted email: status %d", response.StatusCode)
	}
	return nil
}

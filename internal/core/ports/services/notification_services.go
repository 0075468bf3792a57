package services

import (
	"context"

	"github.com/akshayde/account_management_app/internal/core/domain"
)

// DeletionNotifier dispatches the "account deleted" side-channel
// notification. Failures must never block the destroy operation; callers log
// and ignore errors.
type DeletionNotifier interface {
	NotifyUserDeleted(ctx context.Context, user domain.User) error
}

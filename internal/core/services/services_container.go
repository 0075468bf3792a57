package services

import (
	portsrepo "github.com/akshayde/account_management_app/internal/core/ports/repositories"
	portssvc "github.com/akshayde/account_management_app/internal/core/ports/services"
	"github.com/akshayde/account_management_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(
	cfg *config.Config,
	repos portsrepo.RepositoryProvider,
	fileStore portssvc.FileStore,
	notifier portssvc.DeletionNotifier,
) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// User service first; the token service validates refresh tokens against it.
	container.User = NewUserService(repos.UserRepo, fileStore, notifier)
	container.Token = NewTokenService(cfg, container.User, repos.RevocationStore)

	return container
}

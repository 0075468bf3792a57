package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/akshayde/account_management_app/internal/apperrors"
	"github.com/akshayde/account_management_app/internal/core/domain"
	portsrepo "github.com/akshayde/account_management_app/internal/core/ports/repositories"
	portssvc "github.com/akshayde/account_management_app/internal/core/ports/services"
	"github.com/akshayde/account_management_app/internal/dto"
	"github.com/akshayde/account_management_app/internal/middleware"
	"github.com/akshayde/account_management_app/internal/utils"
	"github.com/google/uuid"
)

// allowedAvatarTypes maps the accepted avatar file extensions to their
// content types.
var allowedAvatarTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".bmp":  "image/bmp",
}

// UserService implements the account lifecycle: registration, authentication,
// profile updates, password reset, soft delete and restore.
type UserService struct {
	userRepo  portsrepo.UserRepositoryFacade
	fileStore portssvc.FileStore
	notifier  portssvc.DeletionNotifier
}

// NewUserService creates a new UserService.
func NewUserService(userRepo portsrepo.UserRepositoryFacade, fileStore portssvc.FileStore, notifier portssvc.DeletionNotifier) *UserService {
	return &UserService{
		userRepo:  userRepo,
		fileStore: fileStore,
		notifier:  notifier,
	}
}

// Ensure UserService implements the facade
var _ portssvc.UserSvcFacade = (*UserService)(nil)

// RegisterUser creates a new active account. When an avatar is supplied, the
// image is uploaded first and the object is deleted again if account creation
// fails, so neither a half-created account nor an orphaned upload survives.
func (s *UserService) RegisterUser(ctx context.Context, req dto.RegisterUserRequest, avatar *portssvc.AvatarUpload) (*domain.User, error) {
	email := normalizeEmail(req.Email)

	existing, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}
	if existing != nil {
		return nil, apperrors.NewConflictError("Email already exists")
	}

	var avatarURL *string
	var avatarKey string
	if avatar != nil {
		key, contentType, err := avatarObjectKey(avatar)
		if err != nil {
			return nil, err
		}
		url, err := s.fileStore.PutObject(ctx, key, avatar.Data, contentType)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to upload avatar", err)
		}
		avatarKey = key
		avatarURL = &url
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.cleanupAvatar(ctx, avatarKey)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := domain.User{
		UserID:       uuid.NewString(),
		Name:         req.Name,
		Email:        email,
		PasswordHash: hash,
		AvatarURL:    avatarURL,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		// Compensate: the account was not created, so the uploaded avatar
		// must not be left behind.
		s.cleanupAvatar(ctx, avatarKey)
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.NewConflictError("Email already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// AuthenticateUser verifies the credentials of an active account. A missing
// account and a wrong password fail differently so the transport layer can
// distinguish 404 from 401.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.NewAuthError("invalid credentials for " + user.Email)
	}
	return user, nil
}

// GetUserByID retrieves an active user by ID.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUser applies a partial profile update. Only the fields present in the
// request change; a provided password always goes through the hashing path.
func (s *UserService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != user.Email {
			other, err := s.userRepo.FindUserByEmail(ctx, email)
			if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
			}
			if other != nil && other.UserID != user.UserID {
				return nil, apperrors.NewConflictError("Email already exists")
			}
			user.Email = email
		}
	}
	if req.Password != nil {
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	user.LastUpdatedAt = time.Now()

	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.NewConflictError("Email already exists")
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// ResetPassword replaces the password of the authenticated account. When the
// new password verifies against the current hash the operation short-circuits
// without touching state, and the caller keeps its session.
func (s *UserService) ResetPassword(ctx context.Context, userID string, newPassword string) (bool, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return false, err
	}

	if utils.CheckPasswordHash(newPassword, user.PasswordHash) {
		return false, nil
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	// A password change forces a re-login: the new hash is stored and the
	// refresh token cleared in one transaction, so the old session is never
	// honored against the new password.
	if err := s.userRepo.ReplacePassword(ctx, userID, hash, time.Now()); err != nil {
		return false, fmt.Errorf("failed to store new password: %w", err)
	}

	return true, nil
}

// DestroyUser re-authenticates with the supplied password and soft-deletes
// the account. The deletion notification is fire-and-forget: its failure is
// logged and never blocks the operation.
func (s *UserService) DestroyUser(ctx context.Context, userID string, password string) error {
	if userID == "" {
		// Defensive guard; unreachable when the auth middleware is in place.
		return apperrors.ErrUnauthorized
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return apperrors.NewAuthError("invalid credentials for " + user.Email)
	}

	// The soft-delete marker and the refresh-token clear land in a single
	// transaction; the notification dispatches only once both are committed.
	now := time.Now()
	if err := s.userRepo.MarkUserDeleted(ctx, userID, now); err != nil {
		return fmt.Errorf("failed to soft delete user: %w", err)
	}

	snapshot := *user
	snapshot.DeletedAt = &now

	logger := middleware.GetLoggerFromCtx(ctx)
	go func(u domain.User) {
		notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := s.notifier.NotifyUserDeleted(notifyCtx, u); err != nil {
			logger.Error("Failed to dispatch account-deleted notification",
				slog.String("user_id", u.UserID),
				slog.String("error", err.Error()))
		}
	}(snapshot)

	return nil
}

// RestoreUser brings a soft-deleted account back to the active state. The
// password is verified BEFORE the soft-delete marker is cleared, so a failed
// attempt leaves the account deleted.
func (s *UserService) RestoreUser(ctx context.Context, email string, password string) (*domain.User, error) {
	user, err := s.userRepo.FindDeletedUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up deleted user: %w", err)
	}
	if !user.IsDeleted() {
		// The lookup only matches soft-deleted rows; an active account here
		// means the repository broke that contract.
		return nil, apperrors.ErrNotFound
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.NewAuthError("invalid credentials for " + user.Email)
	}

	now := time.Now()
	if err := s.userRepo.RestoreUser(ctx, user.UserID, now); err != nil {
		return nil, fmt.Errorf("failed to restore user: %w", err)
	}

	user.DeletedAt = nil
	user.LastUpdatedAt = now
	return user, nil
}

// UpdateRefreshToken updates the refresh token details for a user.
func (s *UserService) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error {
	return s.userRepo.UpdateRefreshToken(ctx, userID, refreshTokenHash, refreshTokenExpiryTime)
}

// ClearRefreshToken clears the refresh token for a user.
func (s *UserService) ClearRefreshToken(ctx context.Context, userID string) error {
	return s.userRepo.ClearRefreshToken(ctx, userID)
}

// cleanupAvatar removes an uploaded avatar object after a failed
// registration. Best effort only.
func (s *UserService) cleanupAvatar(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.fileStore.DeleteObject(ctx, key); err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to delete orphaned avatar object",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}

// avatarObjectKey validates the avatar encoding and derives the
// collision-resistant storage key.
func avatarObjectKey(avatar *portssvc.AvatarUpload) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(avatar.FileName))
	contentType, ok := allowedAvatarTypes[ext]
	if !ok {
		return "", "", apperrors.NewValidationFailedError("avatar must be one of: jpg, jpeg, png, bmp")
	}
	key := fmt.Sprintf("avatars/%d_%s%s", time.Now().UnixNano(), uuid.NewString(), ext)
	return key, contentType, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

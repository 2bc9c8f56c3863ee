package service

import (
	"context"
	"fmt"

	"github.com/alexedwards/argon2id"

	"github.com/eventix/eventix/internal/domain"
	"github.com/eventix/eventix/internal/repository"
	"github.com/eventix/eventix/pkg/events"
	"github.com/eventix/eventix/pkg/logger"
)

// UserService owns account self-management: the authenticated user's
// profile, password and account lifecycle, plus the public view of
// other accounts.
type UserService interface {
	Profile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, patch domain.UserPatch) (*domain.User, error)
	ChangePassword(ctx context.Context, userID string, req *domain.PasswordChangeRequest) error
	DeleteAccount(ctx context.Context, userID string) error
	PublicProfile(ctx context.Context, id string) (*domain.PublicProfile, error)
}

type userService struct {
	userRepo repository.UserRepository
	eventBus events.Publisher
}

func NewUserService(userRepo repository.UserRepository, eventBus events.Publisher) UserService {
	return &userService{
		userRepo: userRepo,
		eventBus: eventBus,
	}
}

func (s *userService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, patch domain.UserPatch) (*domain.User, error) {
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.userRepo.UpdateProfile(ctx, userID, patch)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	if err := s.eventBus.Publish(ctx, events.UserUpdated, map[string]string{
		"user_id": user.ID,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish user updated event", "error", err, "user_id", user.ID)
	}

	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID string, req *domain.PasswordChangeRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return domain.ErrUserNotFound
	}

	match, err := argon2id.ComparePasswordAndHash(req.CurrentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		return domain.ErrInvalidCredentials
	}

	passwordHash, err := argon2id.CreateHash(req.NewPassword, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	ok, err := s.userRepo.UpdatePassword(ctx, userID, passwordHash)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *userService) DeleteAccount(ctx context.Context, userID string) error {
	ok, err := s.userRepo.Delete(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrUserNotFound
	}

	if err := s.eventBus.Publish(ctx, events.UserDeleted, map[string]string{
		"user_id": userID,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish user deleted event", "error", err, "user_id", userID)
	}

	return nil
}

func (s *userService) PublicProfile(ctx context.Context, id string) (*domain.PublicProfile, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return &domain.PublicProfile{
		ID:        user.ID,
		Name:      user.Name,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}, nil
}

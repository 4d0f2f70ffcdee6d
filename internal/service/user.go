// Package service contains the business logic: validation, permissions and
// orchestration between the repositories and the supporting stores. Services
// accept primitives and models, never HTTP types.
package service

import (
	"context"
	"log/slog"

	"github.com/aleksej-tulko/foodgram/internal/apperror"
	"github.com/aleksej-tulko/foodgram/internal/auth"
	"github.com/aleksej-tulko/foodgram/internal/model"
	"github.com/aleksej-tulko/foodgram/internal/repository"
	"github.com/aleksej-tulko/foodgram/internal/storage"
	"github.com/aleksej-tulko/foodgram/internal/validate"
)

// UserService handles registration, login, profiles and account settings.
type UserService struct {
	users     repository.UserRepository
	subs      repository.SubscriptionRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	images    *storage.ImageStore
	rules     validate.Rules
	logger    *slog.Logger
}

func NewUserService(
	users repository.UserRepository,
	subs repository.SubscriptionRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	images *storage.ImageStore,
	rules validate.Rules,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		subs:      subs,
		passwords: passwords,
		tokens:    tokens,
		images:    images,
		rules:     rules,
		logger:    logger,
	}
}

// RegisterInput is the signup payload after JSON decoding.
type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// Register validates the input, hashes the password and creates the account.
// Username and email collisions surface as conflicts from the repository.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	if input.Username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if err := s.rules.Username(input.Username); err != nil {
		return nil, err
	}
	email, err := validate.Email(input.Email)
	if err != nil {
		return nil, err
	}
	if input.FirstName == "" || input.LastName == "" {
		return nil, apperror.ValidationFailed("first_name", "first and last name are required")
	}
	if input.Password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	hash, err := s.passwords.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     input.Username,
		Email:        email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login verifies the credentials and issues an access token. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	normalized, err := validate.Email(email)
	if err != nil {
		return "", apperror.Unauthorized("invalid credentials")
	}

	user, err := s.users.GetByEmail(ctx, normalized)
	if err != nil {
		return "", apperror.Unauthorized("invalid credentials")
	}
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return "", apperror.Unauthorized("invalid credentials")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return "", err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return token, nil
}

// Profile returns the read shape of the user with the id, with is_subscribed
// computed relative to the viewer. viewerID may be empty.
func (s *UserService) Profile(ctx context.Context, id, viewerID string) (*model.Profile, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	isSubscribed := false
	if viewerID != "" && viewerID != id {
		isSubscribed, err = s.subs.SubscriptionExists(ctx, viewerID, id)
		if err != nil {
			return nil, err
		}
	}

	p := model.ProfileOf(user, isSubscribed)
	return &p, nil
}

// List returns user profiles ordered by username plus the total count.
func (s *UserService) List(ctx context.Context, viewerID string, opts repository.ListOptions) ([]model.Profile, int, error) {
	users, total, err := s.users.List(ctx, opts)
	if err != nil {
		return nil, 0, err
	}

	profiles := make([]model.Profile, 0, len(users))
	for _, u := range users {
		isSubscribed := false
		if viewerID != "" && viewerID != u.ID {
			isSubscribed, err = s.subs.SubscriptionExists(ctx, viewerID, u.ID)
			if err != nil {
				return nil, 0, err
			}
		}
		profiles = append(profiles, model.ProfileOf(&u, isSubscribed))
	}
	return profiles, total, nil
}

// ChangePassword verifies the current password and stores a hash of the new
// one. The new password must differ from the current.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.passwords.Verify(user.PasswordHash, current); err != nil {
		return apperror.ValidationFailed("current_password", "current password is incorrect")
	}
	if newPassword == "" {
		return apperror.ValidationFailed("new_password", "new password is required")
	}
	if newPassword == current {
		return apperror.ValidationFailed("new_password", "new password must differ from the current one")
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.logger.Info("password changed", "user_id", userID)
	return nil
}

// SetAvatar stores the submitted image and points the account at it,
// discarding any previous avatar file. Returns the stored media path.
func (s *UserService) SetAvatar(ctx context.Context, userID, dataURI string) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	path, err := s.images.SaveDataURI("avatars", dataURI)
	if err != nil {
		return "", err
	}
	if err := s.users.UpdateAvatar(ctx, userID, path); err != nil {
		return "", err
	}

	if user.Avatar != "" {
		if err := s.images.Remove(user.Avatar); err != nil {
			s.logger.Warn("removing replaced avatar", "user_id", userID, "error", err)
		}
	}
	return path, nil
}

// RemoveAvatar clears the account's avatar and deletes the stored file.
func (s *UserService) RemoveAvatar(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.users.UpdateAvatar(ctx, userID, ""); err != nil {
		return err
	}
	if user.Avatar != "" {
		if err := s.images.Remove(user.Avatar); err != nil {
			s.logger.Warn("removing avatar file", "user_id", userID, "error", err)
		}
	}
	return nil
}

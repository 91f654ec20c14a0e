package service

import (
	"context"

	"scratch/internal/models"
	"scratch/internal/repository"
	"scratch/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// CreateUserInput carries the fields for signing up.
type CreateUserInput struct {
	Username string
	Name     string
	Password string
}

// UpdateProfileInput carries the optional profile fields of a PATCH. Nil
// pointers leave the stored value untouched.
type UpdateProfileInput struct {
	Name             *string
	Description      *string
	ProfileImageURL  *string
	ProfileBannerURL *string
}

// UserService implements user and follow-graph business logic.
type UserService struct {
	users repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// Create registers a new account.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	if err := validation.ValidateUsername(input.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(input.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	name := input.Name
	if name == "" {
		name = input.Username
	}
	user := &models.User{
		Username: input.Username,
		Name:     name,
		Password: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies a username/password pair and returns the account. The
// error is identical for an unknown username and a wrong password.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetCredentials(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid username or password")
	}
	return user, nil
}

// Get returns a user profile by id.
func (s *UserService) Get(ctx context.Context, id uint, viewerID uint) (*models.User, error) {
	return s.users.GetByID(ctx, id, viewerID)
}

// GetByUsername returns a user profile by username.
func (s *UserService) GetByUsername(ctx context.Context, username string, viewerID uint) (*models.User, error) {
	return s.users.GetByUsername(ctx, username, viewerID)
}

// UpdateProfile applies a partial profile update.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input UpdateProfileInput) (*models.User, error) {
	if input.Name == nil && input.Description == nil &&
		input.ProfileImageURL == nil && input.ProfileBannerURL == nil {
		return nil, models.NewValidationError("No profile fields to update")
	}
	if input.Description != nil {
		if err := validation.ValidateDescription(*input.Description); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	user, err := s.users.GetByID(ctx, userID, userID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Description != nil {
		user.Description = *input.Description
	}
	if input.ProfileImageURL != nil {
		user.ProfileImageURL = *input.ProfileImageURL
	}
	if input.ProfileBannerURL != nil {
		user.ProfileBannerURL = *input.ProfileBannerURL
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password and stores a new one.
func (s *UserService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	user, err := s.users.GetByID(ctx, userID, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return models.NewUnauthorizedError("Current password is incorrect")
	}
	if err := validation.ValidatePassword(next); err != nil {
		return models.NewValidationError(err.Error())
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.users.UpdatePassword(ctx, userID, string(hash))
}

// Delete removes an account. The follow graph, scratches and engagement rows
// go with it via foreign key cascades.
func (s *UserService) Delete(ctx context.Context, userID uint) error {
	if _, err := s.users.GetByID(ctx, userID, userID); err != nil {
		return err
	}
	return s.users.Delete(ctx, userID)
}

// Search returns users whose username or name matches the query, ordered by
// username.
func (s *UserService) Search(ctx context.Context, query string, limit int, after string, viewerID uint) (*UserPage, error) {
	limit = normalizeLimit(limit)
	users, err := s.users.Search(ctx, query, limit+1, after, viewerID)
	if err != nil {
		return nil, err
	}
	return userPage(users, limit), nil
}

// Suggested returns accounts the viewer may want to follow.
func (s *UserService) Suggested(ctx context.Context, viewerID uint, limit int) ([]*models.User, error) {
	return s.users.Suggested(ctx, viewerID, normalizeLimit(limit))
}

// Follow makes the caller follow the target user.
func (s *UserService) Follow(ctx context.Context, followerID, followedID uint) error {
	if followerID == followedID {
		return models.NewValidationError("Cannot follow yourself")
	}
	if _, err := s.users.GetByID(ctx, followedID, followerID); err != nil {
		return err
	}
	return s.users.Follow(ctx, followerID, followedID)
}

// Unfollow removes the caller's follow of the target user.
func (s *UserService) Unfollow(ctx context.Context, followerID, followedID uint) error {
	if _, err := s.users.GetByID(ctx, followedID, followerID); err != nil {
		return err
	}
	removed, err := s.users.Unfollow(ctx, followerID, followedID)
	if err != nil {
		return err
	}
	if !removed {
		return models.NewValidationError("Not following this user")
	}
	return nil
}

// Followers returns users who follow the given user.
func (s *UserService) Followers(ctx context.Context, userID uint, limit int, after uint, viewerID uint) (*UserPage, error) {
	if _, err := s.users.GetByID(ctx, userID, viewerID); err != nil {
		return nil, err
	}
	limit = normalizeLimit(limit)
	users, err := s.users.Followers(ctx, userID, limit+1, after, viewerID)
	if err != nil {
		return nil, err
	}
	return userPage(users, limit), nil
}

// Followed returns users the given user follows.
func (s *UserService) Followed(ctx context.Context, userID uint, limit int, after uint, viewerID uint) (*UserPage, error) {
	if _, err := s.users.GetByID(ctx, userID, viewerID); err != nil {
		return nil, err
	}
	limit = normalizeLimit(limit)
	users, err := s.users.Followed(ctx, userID, limit+1, after, viewerID)
	if err != nil {
		return nil, err
	}
	return userPage(users, limit), nil
}

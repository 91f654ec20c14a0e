package service

import (
	"context"
	"testing"

	"scratch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_CreateValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name     string
		input    CreateUserInput
		wantCode string
	}{
		{"username too short", CreateUserInput{Username: "abc", Password: "Sturdy1pass"}, models.CodeValidation},
		{"username with symbols", CreateUserInput{Username: "not_allowed", Password: "Sturdy1pass"}, models.CodeValidation},
		{"password too short", CreateUserInput{Username: "newuser1", Password: "Ab1"}, models.CodeValidation},
		{"password without digit", CreateUserInput{Username: "newuser1", Password: "NoDigitsHere"}, models.CodeValidation},
		{"password without upper", CreateUserInput{Username: "newuser1", Password: "alllower1"}, models.CodeValidation},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := NewUserService(&userRepoStub{})
			_, err := svc.Create(ctx, tt.input)
			assertErrCode(t, err, tt.wantCode)
		})
	}
}

func TestUserService_CreateHashesPassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var stored *models.User
	repo := &userRepoStub{
		createFn: func(ctx context.Context, user *models.User) error {
			user.ID = 1
			stored = user
			return nil
		},
	}
	svc := NewUserService(repo)

	user, err := svc.Create(ctx, CreateUserInput{Username: "newuser1", Password: "Sturdy1pass"})
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)
	assert.Equal(t, "newuser1", stored.Name)
	assert.NotEqual(t, "Sturdy1pass", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("Sturdy1pass")))
}

func TestUserService_Authenticate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("Sturdy1pass"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &userRepoStub{
		getCredentialsFn: func(ctx context.Context, username string) (*models.User, error) {
			if username == "known001" {
				return &models.User{ID: 1, Username: username, Password: string(hash)}, nil
			}
			return nil, nil
		},
	}
	svc := NewUserService(repo)

	user, err := svc.Authenticate(ctx, "known001", "Sturdy1pass")
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)

	_, err = svc.Authenticate(ctx, "known001", "WrongPass1")
	assertErrCode(t, err, models.CodeUnauthorized)

	_, err = svc.Authenticate(ctx, "unknown1", "Sturdy1pass")
	assertErrCode(t, err, models.CodeUnauthorized)
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewUserService(&userRepoStub{})

	_, err := svc.UpdateProfile(ctx, 1, UpdateProfileInput{})
	assertErrCode(t, err, models.CodeValidation)

	longDesc := make([]byte, 161)
	for i := range longDesc {
		longDesc[i] = 'x'
	}
	desc := string(longDesc)
	_, err = svc.UpdateProfile(ctx, 1, UpdateProfileInput{Description: &desc})
	assertErrCode(t, err, models.CodeValidation)

	var saved *models.User
	repo := &userRepoStub{
		getByIDFn: func(ctx context.Context, id uint, viewerID uint) (*models.User, error) {
			return &models.User{ID: id, Name: "old name", Description: "old"}, nil
		},
		updateFn: func(ctx context.Context, user *models.User) error {
			saved = user
			return nil
		},
	}
	svc = NewUserService(repo)

	newName := "new name"
	updated, err := svc.UpdateProfile(ctx, 1, UpdateProfileInput{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "new name", updated.Name)
	assert.Equal(t, "old", saved.Description)
}

func TestUserService_ChangePassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("Current1pass"), bcrypt.MinCost)
	require.NoError(t, err)

	var newHash string
	repo := &userRepoStub{
		getByIDFn: func(ctx context.Context, id uint, viewerID uint) (*models.User, error) {
			return &models.User{ID: id, Password: string(hash)}, nil
		},
		updatePasswordFn: func(ctx context.Context, id uint, passwordHash string) error {
			newHash = passwordHash
			return nil
		},
	}
	svc := NewUserService(repo)

	err = svc.ChangePassword(ctx, 1, "WrongPass1", "Another1pass")
	assertErrCode(t, err, models.CodeUnauthorized)

	err = svc.ChangePassword(ctx, 1, "Current1pass", "weak")
	assertErrCode(t, err, models.CodeValidation)

	require.NoError(t, svc.ChangePassword(ctx, 1, "Current1pass", "Another1pass"))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(newHash), []byte("Another1pass")))
}

func TestUserService_FollowSelf(t *testing.T) {
	t.Parallel()

	svc := NewUserService(&userRepoStub{})
	err := svc.Follow(context.Background(), 3, 3)
	assertErrCode(t, err, models.CodeValidation)
}

func TestUserService_FollowTargetMissing(t *testing.T) {
	t.Parallel()

	repo := &userRepoStub{
		getByIDFn: func(ctx context.Context, id uint, viewerID uint) (*models.User, error) {
			return nil, models.NewNotFoundError("User", id)
		},
	}
	svc := NewUserService(repo)

	err := svc.Follow(context.Background(), 1, 2)
	assertErrCode(t, err, models.CodeNotFound)
}

func TestUserService_UnfollowNotFollowing(t *testing.T) {
	t.Parallel()

	repo := &userRepoStub{
		unfollowFn: func(ctx context.Context, followerID, followedID uint) (bool, error) {
			return false, nil
		},
	}
	svc := NewUserService(repo)

	err := svc.Unfollow(context.Background(), 1, 2)
	assertErrCode(t, err, models.CodeValidation)
}

func TestUserService_SearchPage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var gotLimit int
	repo := &userRepoStub{
		searchFn: func(ctx context.Context, query string, limit int, after string, viewerID uint) ([]*models.User, error) {
			gotLimit = limit
			out := make([]*models.User, limit)
			for i := range out {
				out[i] = &models.User{ID: uint(i + 1)}
			}
			return out, nil
		},
	}
	svc := NewUserService(repo)

	page, err := svc.Search(ctx, "query", 2, "", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, gotLimit)
	assert.Len(t, page.Users, 2)
	assert.False(t, page.IsFinished)
}

func TestUserService_FollowersFinished(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := &userRepoStub{
		followersFn: func(ctx context.Context, userID uint, limit int, after uint, viewerID uint) ([]*models.User, error) {
			return []*models.User{{ID: 9}}, nil
		},
	}
	svc := NewUserService(repo)

	page, err := svc.Followers(ctx, 1, 10, 0, 0)
	require.NoError(t, err)
	assert.Len(t, page.Users, 1)
	assert.True(t, page.IsFinished)
}

package service

import (
	"context"

	"scratch/internal/models"
)

// scratchRepoStub implements repository.ScratchRepository with overridable
// function fields. Unset fields return zero values.
type scratchRepoStub struct {
	createFn              func(ctx context.Context, scratch *models.Scratch) error
	getByIDFn             func(ctx context.Context, id uint, viewerID uint) (*models.Scratch, error)
	getByIDsFn            func(ctx context.Context, ids []uint, viewerID uint) ([]*models.Scratch, error)
	deleteFn              func(ctx context.Context, id uint) error
	repliesFn             func(ctx context.Context, parentID uint, viewerID uint) ([]*models.Scratch, error)
	searchFn              func(ctx context.Context, query string, limit int, after uint, viewerID uint) ([]*models.Scratch, error)
	homeTimelineFn        func(ctx context.Context, userID uint, limit int, after uint) ([]*models.Scratch, error)
	userTimelineFn        func(ctx context.Context, userID uint, limit int, after uint, viewerID uint) ([]*models.Scratch, error)
	bookmarkedFn          func(ctx context.Context, userID uint, limit int, after uint) ([]*models.Scratch, error)
	likedFn               func(ctx context.Context, userID uint, limit int, after uint, viewerID uint) ([]*models.Scratch, error)
	findDirectRescratchFn func(ctx context.Context, authorID, targetID uint) (*models.Scratch, error)
	likersFn              func(ctx context.Context, scratchID uint, limit int, after uint, viewerID uint) ([]*models.User, error)
	rescratchersFn        func(ctx context.Context, scratchID uint, limit int, after uint, viewerID uint) ([]*models.User, error)
	likeFn                func(ctx context.Context, userID, scratchID uint) error
	unlikeFn              func(ctx context.Context, userID, scratchID uint) (bool, error)
	bookmarkFn            func(ctx context.Context, userID, scratchID uint) error
	unbookmarkFn          func(ctx context.Context, userID, scratchID uint) (bool, error)
}

func (s *scratchRepoStub) Create(ctx context.Context, scratch *models.Scratch) error {
	if s.createFn != nil {
		return s.createFn(ctx, scratch)
	}
	return nil
}

func (s *scratchRepoStub) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Scratch, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id, viewerID)
	}
	return &models.Scratch{ID: id, Body: "stub body"}, nil
}

func (s *scratchRepoStub) GetByIDs(ctx context.Context, ids []uint, viewerID uint) ([]*models.Scratch, error) {
	if s.getByIDsFn != nil {
		return s.getByIDsFn(ctx, ids, viewerID)
	}
	return nil, nil
}

func (s *scratchRepoStub) Delete(ctx context.Context, id uint) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func (s *scratchRepoStub) Replies(ctx context.Context, parentID uint, viewerID uint) ([]*models.Scratch, error) {
	if s.repliesFn != nil {
		return s.repliesFn(ctx, parentID, viewerID)
	}
	return nil, nil
}

func (s *scratchRepoStub) Search(ctx context.Context, query string, limit int, after uint, viewerID uint) ([]*models.Scratch, error) {
	if s.searchFn != nil {
		return s.searchFn(ctx, query, limit, after, viewerID)
	}
	return nil, nil
}

func (s *scratchRepoStub) HomeTimeline(ctx context.Context, userID uint, limit int, after uint) ([]*models.Scratch, error) {
	if s.homeTimelineFn != nil {
		return s.homeTimelineFn(ctx, userID, limit, after)
	}
	return nil, nil
}

func (s *scratchRepoStub) UserTimeline(ctx context.Context, userID uint, limit int, after uint, viewerID uint) ([]*models.Scratch, error) {
	if s.userTimelineFn != nil {
		return s.userTimelineFn(ctx, userID, limit, after, viewerID)
	}
	return nil, nil
}

func (s *scratchRepoStub) Bookmarked(ctx context.Context, userID uint, limit int, after uint) ([]*models.Scratch, error) {
	if s.bookmarkedFn != nil {
		return s.bookmarkedFn(ctx, userID, limit, after)
	}
	return nil, nil
}

func (s *scratchRepoStub) Liked(ctx context.Context, userID uint, limit int, after uint, viewerID uint) ([]*models.Scratch, error) {
	if s.likedFn != nil {
		return s.likedFn(ctx, userID, limit, after, viewerID)
	}
	return nil, nil
}

func (s *scratchRepoStub) FindDirectRescratch(ctx context.Context, authorID, targetID uint) (*models.Scratch, error) {
	if s.findDirectRescratchFn != nil {
		return s.findDirectRescratchFn(ctx, authorID, targetID)
	}
	return nil, nil
}

func (s *scratchRepoStub) Likers(ctx context.Context, scratchID uint, limit int, after uint, viewerID uint) ([]*models.User, error) {
	if s.likersFn != nil {
		return s.likersFn(ctx, scratchID, limit, after, viewerID)
	}
	return nil, nil
}

func (s *scratchRepoStub) Rescratchers(ctx context.Context, scratchID uint, limit int, after uint, viewerID uint) ([]*models.User, error) {
	if s.rescratchersFn != nil {
		return s.rescratchersFn(ctx, scratchID, limit, after, viewerID)
	}
	return nil, nil
}

func (s *scratchRepoStub) Like(ctx context.Context, userID, scratchID uint) error {
	if s.likeFn != nil {
		return s.likeFn(ctx, userID, scratchID)
	}
	return nil
}

func (s *scratchRepoStub) Unlike(ctx context.Context, userID, scratchID uint) (bool, error) {
	if s.unlikeFn != nil {
		return s.unlikeFn(ctx, userID, scratchID)
	}
	return true, nil
}

func (s *scratchRepoStub) Bookmark(ctx context.Context, userID, scratchID uint) error {
	if s.bookmarkFn != nil {
		return s.bookmarkFn(ctx, userID, scratchID)
	}
	return nil
}

func (s *scratchRepoStub) Unbookmark(ctx context.Context, userID, scratchID uint) (bool, error) {
	if s.unbookmarkFn != nil {
		return s.unbookmarkFn(ctx, userID, scratchID)
	}
	return true, nil
}

// userRepoStub implements repository.UserRepository with overridable function
// fields. Unset fields return zero values.
type userRepoStub struct {
	createFn         func(ctx context.Context, user *models.User) error
	getByIDFn        func(ctx context.Context, id uint, viewerID uint) (*models.User, error)
	getByUsernameFn  func(ctx context.Context, username string, viewerID uint) (*models.User, error)
	getCredentialsFn func(ctx context.Context, username string) (*models.User, error)
	updateFn         func(ctx context.Context, user *models.User) error
	updatePasswordFn func(ctx context.Context, id uint, passwordHash string) error
	deleteFn         func(ctx context.Context, id uint) error
	searchFn         func(ctx context.Context, query string, limit int, after string, viewerID uint) ([]*models.User, error)
	followersFn      func(ctx context.Context, userID uint, limit int, after uint, viewerID uint) ([]*models.User, error)
	followedFn       func(ctx context.Context, userID uint, limit int, after uint, viewerID uint) ([]*models.User, error)
	followFn         func(ctx context.Context, followerID, followedID uint) error
	unfollowFn       func(ctx context.Context, followerID, followedID uint) (bool, error)
	suggestedFn      func(ctx context.Context, viewerID uint, limit int) ([]*models.User, error)
	setPinnedFn      func(ctx context.Context, userID uint, scratchID *uint) error
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	if s.createFn != nil {
		return s.createFn(ctx, user)
	}
	return nil
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint, viewerID uint) (*models.User, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id, viewerID)
	}
	return &models.User{ID: id}, nil
}

func (s *userRepoStub) GetByUsername(ctx context.Context, username string, viewerID uint) (*models.User, error) {
	if s.getByUsernameFn != nil {
		return s.getByUsernameFn(ctx, username, viewerID)
	}
	return &models.User{Username: username}, nil
}

func (s *userRepoStub) GetCredentials(ctx context.Context, username string) (*models.User, error) {
	if s.getCredentialsFn != nil {
		return s.getCredentialsFn(ctx, username)
	}
	return nil, nil
}

func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, user)
	}
	return nil
}

func (s *userRepoStub) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	if s.updatePasswordFn != nil {
		return s.updatePasswordFn(ctx, id, passwordHash)
	}
	return nil
}

func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func (s *userRepoStub) Search(ctx context.Context, query string, limit int, after string, viewerID uint) ([]*models.User, error) {
	if s.searchFn != nil {
		return s.searchFn(ctx, query, limit, after, viewerID)
	}
	return nil, nil
}

func (s *userRepoStub) Followers(ctx context.Context, userID uint, limit int, after uint, viewerID uint) ([]*models.User, error) {
	if s.followersFn != nil {
		return s.followersFn(ctx, userID, limit, after, viewerID)
	}
	return nil, nil
}

func (s *userRepoStub) Followed(ctx context.Context, userID uint, limit int, after uint, viewerID uint) ([]*models.User, error) {
	if s.followedFn != nil {
		return s.followedFn(ctx, userID, limit, after, viewerID)
	}
	return nil, nil
}

func (s *userRepoStub) Follow(ctx context.Context, followerID, followedID uint) error {
	if s.followFn != nil {
		return s.followFn(ctx, followerID, followedID)
	}
	return nil
}

func (s *userRepoStub) Unfollow(ctx context.Context, followerID, followedID uint) (bool, error) {
	if s.unfollowFn != nil {
		return s.unfollowFn(ctx, followerID, followedID)
	}
	return true, nil
}

func (s *userRepoStub) Suggested(ctx context.Context, viewerID uint, limit int) ([]*models.User, error) {
	if s.suggestedFn != nil {
		return s.suggestedFn(ctx, viewerID, limit)
	}
	return nil, nil
}

func (s *userRepoStub) SetPinned(ctx context.Context, userID uint, scratchID *uint) error {
	if s.setPinnedFn != nil {
		return s.setPinnedFn(ctx, userID, scratchID)
	}
	return nil
}

package repository

import (
	"context"
	"errors"

	"scratch/internal/cache"
	"scratch/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users and the follow graph.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string, viewerID uint) (*models.User, error)
	GetCredentials(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, limit int, after string, viewerID uint) ([]*models.User, error)
	Followers(ctx context.Context, userID uint, limit int, after uint, viewerID uint) ([]*models.User, error)
	Followed(ctx context.Context, userID uint, limit int, after uint, viewerID uint) ([]*models.User, error)
	Follow(ctx context.Context, followerID, followedID uint) error
	Unfollow(ctx context.Context, followerID, followedID uint) (bool, error)
	Suggested(ctx context.Context, viewerID uint, limit int) ([]*models.User, error)
	SetPinned(ctx context.Context, userID uint, scratchID *uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Username already taken")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.User, error) {
	var user models.User

	fetch := func() error {
		if err := applyUserDetails(r.db.WithContext(ctx), viewerID).
			First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	}

	var err error
	if viewerID == 0 {
		err = cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string, viewerID uint) (*models.User, error) {
	var user models.User
	if err := applyUserDetails(r.db.WithContext(ctx), viewerID).
		Where("users.username = ?", username).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", username)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// GetCredentials looks a user up for authentication. It returns (nil, nil)
// when the username is unknown so callers can produce a uniform
// invalid-credentials response.
func (r *userRepository) GetCredentials(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("password", passwordHash).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.User{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) Search(ctx context.Context, query string, limit int, after string, viewerID uint) ([]*models.User, error) {
	db := r.db.WithContext(ctx)
	like := "%" + query + "%"
	q := applyUserDetails(db, viewerID).
		Where("users.username "+likeOperator(db)+" ? OR users.name "+likeOperator(db)+" ?", like, like)
	if after != "" {
		q = q.Where("users.username > ?", after)
	}
	var users []*models.User
	if err := q.Order("users.username ASC").Limit(limit).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) Followers(ctx context.Context, userID uint, limit int, after uint, viewerID uint) ([]*models.User, error) {
	return r.listFollowUsers(ctx,
		"EXISTS(SELECT 1 FROM follows WHERE follows.follower_id = users.id AND follows.followed_id = ?)",
		userID, limit, after, viewerID)
}

func (r *userRepository) Followed(ctx context.Context, userID uint, limit int, after uint, viewerID uint) ([]*models.User, error) {
	return r.listFollowUsers(ctx,
		"EXISTS(SELECT 1 FROM follows WHERE follows.followed_id = users.id AND follows.follower_id = ?)",
		userID, limit, after, viewerID)
}

func (r *userRepository) listFollowUsers(ctx context.Context, cond string, userID uint, limit int, after uint, viewerID uint) ([]*models.User, error) {
	db := applyUserDetails(r.db.WithContext(ctx), viewerID).Where(cond, userID)
	if after > 0 {
		db = db.Where("users.id < ?", after)
	}
	var users []*models.User
	if err := db.Order("users.id DESC").Limit(limit).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) Follow(ctx context.Context, followerID, followedID uint) error {
	err := r.db.WithContext(ctx).Create(&models.Follow{FollowerID: followerID, FollowedID: followedID}).Error
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Already following this user")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, followerID)
	cache.InvalidateUser(ctx, followedID)
	return nil
}

func (r *userRepository) Unfollow(ctx context.Context, followerID, followedID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		cache.InvalidateUser(ctx, followerID)
		cache.InvalidateUser(ctx, followedID)
	}
	return res.RowsAffected > 0, nil
}

// Suggested returns accounts the viewer might want to follow: people followed
// by those the viewer follows, excluding the viewer and anyone already
// followed, padded with arbitrary accounts when the graph is too sparse.
func (r *userRepository) Suggested(ctx context.Context, viewerID uint, limit int) ([]*models.User, error) {
	var users []*models.User

	if viewerID == 0 {
		if err := applyUserDetails(r.db.WithContext(ctx), 0).
			Order("users.id DESC").
			Limit(limit).
			Find(&users).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		return users, nil
	}

	base := func() *gorm.DB {
		return applyUserDetails(r.db.WithContext(ctx), viewerID).
			Where("users.id <> ?", viewerID).
			Where("users.id NOT IN (SELECT followed_id FROM follows WHERE follower_id = ?)", viewerID)
	}

	if err := base().
		Where("users.id IN (SELECT f2.followed_id FROM follows f2 WHERE f2.follower_id IN (SELECT followed_id FROM follows WHERE follower_id = ?))", viewerID).
		Order("users.id DESC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	if len(users) < limit {
		seen := make([]uint, 0, len(users))
		for _, u := range users {
			seen = append(seen, u.ID)
		}
		pad := base()
		if len(seen) > 0 {
			pad = pad.Where("users.id NOT IN ?", seen)
		}
		var extra []*models.User
		if err := pad.
			Order("users.id DESC").
			Limit(limit - len(users)).
			Find(&extra).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		users = append(users, extra...)
	}

	return users, nil
}

func (r *userRepository) SetPinned(ctx context.Context, userID uint, scratchID *uint) error {
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("pinned_id", scratchID).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, userID)
	return nil
}

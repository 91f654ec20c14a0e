package repository

import (
	"context"
	"errors"

	"scratch/internal/cache"
	"scratch/internal/models"

	"gorm.io/gorm"
)

// ScratchRepository defines persistence operations for scratches and their
// engagement edges (likes, bookmarks, reshares).
type ScratchRepository interface {
	Create(ctx context.Context, scratch *models.Scratch) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Scratch, error)
	GetByIDs(ctx context.Context, ids []uint, viewerID uint) ([]*models.Scratch, error)
	Delete(ctx context.Context, id uint) error
	Replies(ctx context.Context, parentID uint, viewerID uint) ([]*models.Scratch, error)
	Search(ctx context.Context, query string, limit int, after uint, viewerID uint) ([]*models.Scratch, error)
	HomeTimeline(ctx context.Context, userID uint, limit int, after uint) ([]*models.Scratch, error)
	UserTimeline(ctx context.Context, userID uint, limit int, after uint, viewerID uint) ([]*models.Scratch, error)
	Bookmarked(ctx context.Context, userID uint, limit int, after uint) ([]*models.Scratch, error)
	Liked(ctx context.Context, userID uint, limit int, after uint, viewerID uint) ([]*models.Scratch, error)
	FindDirectRescratch(ctx context.Context, authorID, targetID uint) (*models.Scratch, error)
	Likers(ctx context.Context, scratchID uint, limit int, after uint, viewerID uint) ([]*models.User, error)
	Rescratchers(ctx context.Context, scratchID uint, limit int, after uint, viewerID uint) ([]*models.User, error)
	Like(ctx context.Context, userID, scratchID uint) error
	Unlike(ctx context.Context, userID, scratchID uint) (bool, error)
	Bookmark(ctx context.Context, userID, scratchID uint) error
	Unbookmark(ctx context.Context, userID, scratchID uint) (bool, error)
}

type scratchRepository struct {
	db *gorm.DB
}

// NewScratchRepository returns a new ScratchRepository implementation.
func NewScratchRepository(db *gorm.DB) ScratchRepository {
	return &scratchRepository{db: db}
}

func (r *scratchRepository) Create(ctx context.Context, scratch *models.Scratch) error {
	if err := r.db.WithContext(ctx).Create(scratch).Error; err != nil {
		return models.NewInternalError(err)
	}
	// counts of the referenced scratches changed
	if scratch.RescratchedID != nil {
		cache.InvalidateScratch(ctx, *scratch.RescratchedID)
	}
	if scratch.ParentID != nil {
		cache.InvalidateScratch(ctx, *scratch.ParentID)
	}
	return nil
}

func (r *scratchRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Scratch, error) {
	var scratch models.Scratch

	fetch := func() error {
		if err := applyScratchDetails(r.db.WithContext(ctx), viewerID).
			Preload("Author").
			First(&scratch, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Scratch", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	}

	var err error
	if viewerID == 0 {
		err = cache.Aside(ctx, cache.ScratchKey(id), &scratch, cache.ScratchTTL, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return nil, err
	}

	r.finalize(&scratch)
	return &scratch, nil
}

func (r *scratchRepository) GetByIDs(ctx context.Context, ids []uint, viewerID uint) ([]*models.Scratch, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var scratches []*models.Scratch
	if err := applyScratchDetails(r.db.WithContext(ctx), viewerID).
		Preload("Author").
		Where("scratches.id IN ?", ids).
		Find(&scratches).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, s := range scratches {
		r.finalize(s)
	}
	return scratches, nil
}

func (r *scratchRepository) Delete(ctx context.Context, id uint) error {
	// A deleted scratch can no longer be pinned; the FK cascade handles
	// replies, reshares, likes and bookmarks.
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("pinned_id = ?", id).
		Update("pinned_id", nil).Error; err != nil {
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Delete(&models.Scratch{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateScratch(ctx, id)
	return nil
}

func (r *scratchRepository) Replies(ctx context.Context, parentID uint, viewerID uint) ([]*models.Scratch, error) {
	var scratches []*models.Scratch
	if err := applyScratchDetails(r.db.WithContext(ctx), viewerID).
		Preload("Author").
		Where("scratches.parent_id = ?", parentID).
		Order("scratches.id DESC").
		Find(&scratches).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, s := range scratches {
		r.finalize(s)
	}
	return scratches, nil
}

func (r *scratchRepository) Search(ctx context.Context, query string, limit int, after uint, viewerID uint) ([]*models.Scratch, error) {
	db := r.db.WithContext(ctx)
	like := "%" + query + "%"
	return r.listScratches(
		applyScratchDetails(db, viewerID).
			Where("scratches.body "+likeOperator(db)+" ?", like),
		limit, after)
}

func (r *scratchRepository) HomeTimeline(ctx context.Context, userID uint, limit int, after uint) ([]*models.Scratch, error) {
	return r.listScratches(
		applyScratchDetails(r.db.WithContext(ctx), userID).
			Where("scratches.author_id = ? OR scratches.author_id IN (SELECT followed_id FROM follows WHERE follower_id = ?)",
				userID, userID),
		limit, after)
}

func (r *scratchRepository) UserTimeline(ctx context.Context, userID uint, limit int, after uint, viewerID uint) ([]*models.Scratch, error) {
	return r.listScratches(
		applyScratchDetails(r.db.WithContext(ctx), viewerID).
			Where("scratches.author_id = ?", userID),
		limit, after)
}

func (r *scratchRepository) Bookmarked(ctx context.Context, userID uint, limit int, after uint) ([]*models.Scratch, error) {
	return r.listScratches(
		applyScratchDetails(r.db.WithContext(ctx), userID).
			Where("EXISTS(SELECT 1 FROM bookmarks WHERE bookmarks.scratch_id = scratches.id AND bookmarks.user_id = ?)", userID),
		limit, after)
}

func (r *scratchRepository) Liked(ctx context.Context, userID uint, limit int, after uint, viewerID uint) ([]*models.Scratch, error) {
	return r.listScratches(
		applyScratchDetails(r.db.WithContext(ctx), viewerID).
			Where("EXISTS(SELECT 1 FROM likes WHERE likes.scratch_id = scratches.id AND likes.user_id = ?)", userID),
		limit, after)
}

// listScratches applies the id-descending keyset cursor and runs the query.
func (r *scratchRepository) listScratches(db *gorm.DB, limit int, after uint) ([]*models.Scratch, error) {
	if after > 0 {
		db = db.Where("scratches.id < ?", after)
	}
	var scratches []*models.Scratch
	if err := db.
		Preload("Author").
		Order("scratches.id DESC").
		Limit(limit).
		Find(&scratches).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, s := range scratches {
		r.finalize(s)
	}
	return scratches, nil
}

// finalize computes derived fields that are not expressible as SQL aliases.
func (r *scratchRepository) finalize(s *models.Scratch) {
	s.ClassifyRescratch()
}

func (r *scratchRepository) FindDirectRescratch(ctx context.Context, authorID, targetID uint) (*models.Scratch, error) {
	var scratch models.Scratch
	err := r.db.WithContext(ctx).
		Where("author_id = ? AND rescratched_id = ? AND TRIM(body) = '' AND media_url = ''", authorID, targetID).
		First(&scratch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	scratch.ClassifyRescratch()
	return &scratch, nil
}

func (r *scratchRepository) Likers(ctx context.Context, scratchID uint, limit int, after uint, viewerID uint) ([]*models.User, error) {
	return r.listEngagedUsers(ctx,
		"EXISTS(SELECT 1 FROM likes WHERE likes.user_id = users.id AND likes.scratch_id = ?)",
		scratchID, limit, after, viewerID)
}

func (r *scratchRepository) Rescratchers(ctx context.Context, scratchID uint, limit int, after uint, viewerID uint) ([]*models.User, error) {
	return r.listEngagedUsers(ctx,
		"EXISTS(SELECT 1 FROM scratches WHERE scratches.author_id = users.id AND scratches.rescratched_id = ?)",
		scratchID, limit, after, viewerID)
}

func (r *scratchRepository) listEngagedUsers(ctx context.Context, cond string, scratchID uint, limit int, after uint, viewerID uint) ([]*models.User, error) {
	db := applyUserDetails(r.db.WithContext(ctx), viewerID).Where(cond, scratchID)
	if after > 0 {
		db = db.Where("users.id < ?", after)
	}
	var users []*models.User
	if err := db.Order("users.id DESC").Limit(limit).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *scratchRepository) Like(ctx context.Context, userID, scratchID uint) error {
	err := r.db.WithContext(ctx).Create(&models.Like{UserID: userID, ScratchID: scratchID}).Error
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Scratch already liked")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateScratch(ctx, scratchID)
	return nil
}

func (r *scratchRepository) Unlike(ctx context.Context, userID, scratchID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND scratch_id = ?", userID, scratchID).
		Delete(&models.Like{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		cache.InvalidateScratch(ctx, scratchID)
	}
	return res.RowsAffected > 0, nil
}

func (r *scratchRepository) Bookmark(ctx context.Context, userID, scratchID uint) error {
	err := r.db.WithContext(ctx).Create(&models.Bookmark{UserID: userID, ScratchID: scratchID}).Error
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Scratch already bookmarked")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *scratchRepository) Unbookmark(ctx context.Context, userID, scratchID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND scratch_id = ?", userID, scratchID).
		Delete(&models.Bookmark{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Package service contains the business logic between handlers and repositories.
package service

import (
	"context"
	"errors"
	"strings"

	"scratch/internal/models"
	"scratch/internal/observability"
	"scratch/internal/repository"
	"scratch/internal/validation"
)

// maxExpandDepth bounds how many reshare hops get resolved into extras: a
// quote of a quote resolves, anything deeper is left as an unresolved id.
const maxExpandDepth = 2

// maxConversationDepth bounds the parent chain walk so a corrupted
// self-referencing chain cannot loop forever.
const maxConversationDepth = 50

// ScratchPage is one page of scratches plus the reshared scratches referenced
// by them that are not in the page itself.
type ScratchPage struct {
	Scratches  []*models.Scratch        `json:"scratches"`
	IsFinished bool                     `json:"isFinished"`
	Extra      map[uint]*models.Scratch `json:"extraScratches"`
}

// UserPage is one page of users.
type UserPage struct {
	Users      []*models.User `json:"users"`
	IsFinished bool           `json:"isFinished"`
}

// Conversation is a scratch in context: its ancestor chain (root first), the
// scratch itself, and its direct replies newest first.
type Conversation struct {
	ParentChain []*models.Scratch        `json:"parentChain"`
	Scratch     *models.Scratch          `json:"scratch"`
	Replies     []*models.Scratch        `json:"replies"`
	Extra       map[uint]*models.Scratch `json:"extraScratches"`
}

// CreateScratchInput carries the fields for posting a new scratch.
type CreateScratchInput struct {
	AuthorID      uint
	Body          string
	MediaURL      string
	ParentID      *uint
	RescratchedID *uint
}

// ScratchService implements scratch business logic.
type ScratchService struct {
	scratches repository.ScratchRepository
	users     repository.UserRepository
}

// NewScratchService creates a new ScratchService.
func NewScratchService(scratches repository.ScratchRepository, users repository.UserRepository) *ScratchService {
	return &ScratchService{scratches: scratches, users: users}
}

// normalizeLimit applies the default page size and the hard cap.
func normalizeLimit(limit int) int {
	if limit <= 0 {
		return repository.DefaultPageLimit
	}
	if limit > repository.MaxPageLimit {
		return repository.MaxPageLimit
	}
	return limit
}

// Get returns a single scratch with its reshare targets resolved.
func (s *ScratchService) Get(ctx context.Context, id uint, viewerID uint) (*models.Scratch, map[uint]*models.Scratch, error) {
	scratch, err := s.scratches.GetByID(ctx, id, viewerID)
	if err != nil {
		return nil, nil, err
	}
	extra, err := s.collectExtra(ctx, []*models.Scratch{scratch}, viewerID)
	if err != nil {
		return nil, nil, err
	}
	return scratch, extra, nil
}

// Create validates and stores a new scratch.
func (s *ScratchService) Create(ctx context.Context, input CreateScratchInput) (*models.Scratch, error) {
	// Bodies are stored trimmed; classification and direct-reshare dedup
	// already treat whitespace-only bodies as empty.
	scratch := &models.Scratch{
		AuthorID:      input.AuthorID,
		Body:          strings.TrimSpace(input.Body),
		MediaURL:      input.MediaURL,
		ParentID:      input.ParentID,
		RescratchedID: input.RescratchedID,
	}

	if err := validation.ValidateScratchBody(scratch.Body); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if !scratch.HasContent() && scratch.RescratchedID == nil {
		return nil, models.NewValidationError("Scratch must have a body, media, or reshare another scratch")
	}

	if scratch.ParentID != nil {
		if _, err := s.scratches.GetByID(ctx, *scratch.ParentID, input.AuthorID); err != nil {
			return nil, err
		}
	}
	if scratch.RescratchedID != nil {
		target, err := s.scratches.GetByID(ctx, *scratch.RescratchedID, input.AuthorID)
		if err != nil {
			return nil, err
		}
		if !target.HasContent() {
			return nil, models.NewValidationError("Cannot rescratch a scratch without its own content")
		}
		if !scratch.HasContent() {
			existing, err := s.scratches.FindDirectRescratch(ctx, input.AuthorID, *scratch.RescratchedID)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, models.NewConflictError("Scratch already rescratched")
			}
		}
	}

	if err := s.scratches.Create(ctx, scratch); err != nil {
		return nil, err
	}

	scratch.ClassifyRescratch()
	observability.ScratchesCreated.WithLabelValues(scratch.RescratchType).Inc()
	return scratch, nil
}

// Delete removes a scratch. Only its author may delete it.
func (s *ScratchService) Delete(ctx context.Context, userID, scratchID uint) error {
	scratch, err := s.scratches.GetByID(ctx, scratchID, userID)
	if err != nil {
		return err
	}
	if scratch.AuthorID != userID {
		return models.NewUnauthorizedError("Only the author can delete a scratch")
	}
	return s.scratches.Delete(ctx, scratchID)
}

// DeleteDirectRescratch removes the caller's plain reshare of the given scratch.
func (s *ScratchService) DeleteDirectRescratch(ctx context.Context, userID, targetID uint) error {
	existing, err := s.scratches.FindDirectRescratch(ctx, userID, targetID)
	if err != nil {
		return err
	}
	if existing == nil {
		return models.NewNotFoundError("Rescratch of scratch", targetID)
	}
	return s.scratches.Delete(ctx, existing.ID)
}

// Conversation assembles the thread around a scratch.
func (s *ScratchService) Conversation(ctx context.Context, id uint, viewerID uint) (*Conversation, error) {
	scratch, err := s.scratches.GetByID(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}

	var chain []*models.Scratch
	parentID := scratch.ParentID
	for depth := 0; parentID != nil; depth++ {
		if depth >= maxConversationDepth {
			return nil, models.NewInternalError(errors.New("reply chain exceeds maximum depth"))
		}
		parent, err := s.scratches.GetByID(ctx, *parentID, viewerID)
		if err != nil {
			return nil, err
		}
		// prepend so the root ends up first
		chain = append([]*models.Scratch{parent}, chain...)
		parentID = parent.ParentID
	}

	replies, err := s.scratches.Replies(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}

	all := make([]*models.Scratch, 0, len(chain)+1+len(replies))
	all = append(all, chain...)
	all = append(all, scratch)
	all = append(all, replies...)
	extra, err := s.collectExtra(ctx, all, viewerID)
	if err != nil {
		return nil, err
	}

	return &Conversation{
		ParentChain: chain,
		Scratch:     scratch,
		Replies:     replies,
		Extra:       extra,
	}, nil
}

// Search returns scratches whose body matches the query, newest first.
func (s *ScratchService) Search(ctx context.Context, query string, limit int, after uint, viewerID uint) (*ScratchPage, error) {
	limit = normalizeLimit(limit)
	return s.page(ctx, limit, viewerID, func(fetchLimit int) ([]*models.Scratch, error) {
		return s.scratches.Search(ctx, query, fetchLimit, after, viewerID)
	})
}

// HomeTimeline returns the caller's own scratches plus those of everyone they
// follow.
func (s *ScratchService) HomeTimeline(ctx context.Context, userID uint, limit int, after uint) (*ScratchPage, error) {
	observability.TimelineRequests.WithLabelValues("home").Inc()
	limit = normalizeLimit(limit)
	return s.page(ctx, limit, userID, func(fetchLimit int) ([]*models.Scratch, error) {
		return s.scratches.HomeTimeline(ctx, userID, fetchLimit, after)
	})
}

// UserTimeline returns scratches authored by a user.
func (s *ScratchService) UserTimeline(ctx context.Context, userID uint, limit int, after uint, viewerID uint) (*ScratchPage, error) {
	observability.TimelineRequests.WithLabelValues("user").Inc()
	if _, err := s.users.GetByID(ctx, userID, viewerID); err != nil {
		return nil, err
	}
	limit = normalizeLimit(limit)
	return s.page(ctx, limit, viewerID, func(fetchLimit int) ([]*models.Scratch, error) {
		return s.scratches.UserTimeline(ctx, userID, fetchLimit, after, viewerID)
	})
}

// Bookmarks returns the caller's bookmarked scratches.
func (s *ScratchService) Bookmarks(ctx context.Context, userID uint, limit int, after uint) (*ScratchPage, error) {
	limit = normalizeLimit(limit)
	return s.page(ctx, limit, userID, func(fetchLimit int) ([]*models.Scratch, error) {
		return s.scratches.Bookmarked(ctx, userID, fetchLimit, after)
	})
}

// Liked returns scratches a user has liked.
func (s *ScratchService) Liked(ctx context.Context, userID uint, limit int, after uint, viewerID uint) (*ScratchPage, error) {
	if _, err := s.users.GetByID(ctx, userID, viewerID); err != nil {
		return nil, err
	}
	limit = normalizeLimit(limit)
	return s.page(ctx, limit, viewerID, func(fetchLimit int) ([]*models.Scratch, error) {
		return s.scratches.Liked(ctx, userID, fetchLimit, after, viewerID)
	})
}

// Likers returns users who liked a scratch.
func (s *ScratchService) Likers(ctx context.Context, scratchID uint, limit int, after uint, viewerID uint) (*UserPage, error) {
	if _, err := s.scratches.GetByID(ctx, scratchID, viewerID); err != nil {
		return nil, err
	}
	limit = normalizeLimit(limit)
	users, err := s.scratches.Likers(ctx, scratchID, limit+1, after, viewerID)
	if err != nil {
		return nil, err
	}
	return userPage(users, limit), nil
}

// Rescratchers returns users who reshared a scratch.
func (s *ScratchService) Rescratchers(ctx context.Context, scratchID uint, limit int, after uint, viewerID uint) (*UserPage, error) {
	if _, err := s.scratches.GetByID(ctx, scratchID, viewerID); err != nil {
		return nil, err
	}
	limit = normalizeLimit(limit)
	users, err := s.scratches.Rescratchers(ctx, scratchID, limit+1, after, viewerID)
	if err != nil {
		return nil, err
	}
	return userPage(users, limit), nil
}

// Like records the user's like of a scratch.
func (s *ScratchService) Like(ctx context.Context, userID, scratchID uint) error {
	if _, err := s.scratches.GetByID(ctx, scratchID, userID); err != nil {
		return err
	}
	return s.scratches.Like(ctx, userID, scratchID)
}

// Unlike removes the user's like of a scratch.
func (s *ScratchService) Unlike(ctx context.Context, userID, scratchID uint) error {
	if _, err := s.scratches.GetByID(ctx, scratchID, userID); err != nil {
		return err
	}
	removed, err := s.scratches.Unlike(ctx, userID, scratchID)
	if err != nil {
		return err
	}
	if !removed {
		return models.NewValidationError("Scratch is not liked")
	}
	return nil
}

// Bookmark saves a scratch for the user.
func (s *ScratchService) Bookmark(ctx context.Context, userID, scratchID uint) error {
	if _, err := s.scratches.GetByID(ctx, scratchID, userID); err != nil {
		return err
	}
	return s.scratches.Bookmark(ctx, userID, scratchID)
}

// Unbookmark removes a saved scratch for the user.
func (s *ScratchService) Unbookmark(ctx context.Context, userID, scratchID uint) error {
	if _, err := s.scratches.GetByID(ctx, scratchID, userID); err != nil {
		return err
	}
	removed, err := s.scratches.Unbookmark(ctx, userID, scratchID)
	if err != nil {
		return err
	}
	if !removed {
		return models.NewValidationError("Scratch is not bookmarked")
	}
	return nil
}

// Pin marks one of the user's own scratches as pinned on their profile.
func (s *ScratchService) Pin(ctx context.Context, userID, scratchID uint) error {
	scratch, err := s.scratches.GetByID(ctx, scratchID, userID)
	if err != nil {
		return err
	}
	if scratch.AuthorID != userID {
		return models.NewUnauthorizedError("Only your own scratch can be pinned")
	}
	return s.users.SetPinned(ctx, userID, &scratchID)
}

// Unpin clears the user's pinned scratch.
func (s *ScratchService) Unpin(ctx context.Context, userID, scratchID uint) error {
	user, err := s.users.GetByID(ctx, userID, userID)
	if err != nil {
		return err
	}
	if user.PinnedID == nil || *user.PinnedID != scratchID {
		return models.NewValidationError("Scratch is not pinned")
	}
	return s.users.SetPinned(ctx, userID, nil)
}

// page fetches one extra row to detect the end of the result set, trims it,
// and resolves reshared extras.
func (s *ScratchService) page(ctx context.Context, limit int, viewerID uint, fetch func(int) ([]*models.Scratch, error)) (*ScratchPage, error) {
	scratches, err := fetch(limit + 1)
	if err != nil {
		return nil, err
	}
	isFinished := len(scratches) <= limit
	if !isFinished {
		scratches = scratches[:limit]
	}
	extra, err := s.collectExtra(ctx, scratches, viewerID)
	if err != nil {
		return nil, err
	}
	if scratches == nil {
		scratches = []*models.Scratch{}
	}
	return &ScratchPage{Scratches: scratches, IsFinished: isFinished, Extra: extra}, nil
}

func userPage(users []*models.User, limit int) *UserPage {
	isFinished := len(users) <= limit
	if !isFinished {
		users = users[:limit]
	}
	if users == nil {
		users = []*models.User{}
	}
	return &UserPage{Users: users, IsFinished: isFinished}
}

// collectExtra resolves the reshare targets referenced by the given scratches
// that are not already among them, following reshare chains up to
// maxExpandDepth hops. The result is keyed by scratch id so a target reshared
// by several scratches in a batch is resolved and embedded once.
func (s *ScratchService) collectExtra(ctx context.Context, scratches []*models.Scratch, viewerID uint) (map[uint]*models.Scratch, error) {
	known := make(map[uint]bool, len(scratches))
	for _, sc := range scratches {
		known[sc.ID] = true
	}

	extra := map[uint]*models.Scratch{}
	frontier := scratches
	for depth := 0; depth < maxExpandDepth && len(frontier) > 0; depth++ {
		var missing []uint
		for _, sc := range frontier {
			if sc.RescratchedID != nil && !known[*sc.RescratchedID] {
				known[*sc.RescratchedID] = true
				missing = append(missing, *sc.RescratchedID)
			}
		}
		if len(missing) == 0 {
			break
		}
		batch, err := s.scratches.GetByIDs(ctx, missing, viewerID)
		if err != nil {
			return nil, err
		}
		for _, sc := range batch {
			extra[sc.ID] = sc
		}
		frontier = batch
	}
	return extra, nil
}

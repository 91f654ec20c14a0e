// Package repository provides data access layer implementations for the application.
package repository

import (
	"strings"

	"gorm.io/gorm"
)

// DefaultPageLimit is the page size used when the caller does not specify one.
const DefaultPageLimit = 50

// MaxPageLimit caps the page size a caller may request.
const MaxPageLimit = 100

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505; sqlite reports its own phrase
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

// likeOperator returns the case-insensitive pattern match operator for the
// connected dialect. Postgres needs ILIKE; sqlite LIKE is already
// case-insensitive for ASCII.
func likeOperator(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "ILIKE"
	}
	return "LIKE"
}

// applyUserDetails adds subqueries to fetch follow counts and the viewer's
// follow status in a single query.
func applyUserDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "users.*, " +
		"(SELECT COUNT(*) FROM follows WHERE follows.followed_id = users.id) as follower_count, " +
		"(SELECT COUNT(*) FROM follows WHERE follows.follower_id = users.id) as followed_count"

	if viewerID != 0 {
		return db.Select(selectQuery+
			", EXISTS(SELECT 1 FROM follows WHERE follows.followed_id = users.id AND follows.follower_id = ?) as is_following",
			viewerID)
	}

	return db.Select(selectQuery + ", FALSE as is_following")
}

// applyScratchDetails adds subqueries to fetch counts and the viewer's
// engagement flags in a single query. is_rescratched counts only the viewer's
// direct reshares; a quote is its own scratch and does not set the flag.
func applyScratchDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "scratches.*, " +
		"(SELECT COUNT(*) FROM scratches replies WHERE replies.parent_id = scratches.id) as reply_count, " +
		"(SELECT COUNT(*) FROM scratches shares WHERE shares.rescratched_id = scratches.id) as rescratch_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.scratch_id = scratches.id) as like_count"

	if viewerID != 0 {
		return db.Select(selectQuery+
			", EXISTS(SELECT 1 FROM scratches viewer_shares WHERE viewer_shares.rescratched_id = scratches.id AND viewer_shares.author_id = ? AND TRIM(viewer_shares.body) = '' AND viewer_shares.media_url = '') as is_rescratched"+
			", EXISTS(SELECT 1 FROM likes WHERE likes.scratch_id = scratches.id AND likes.user_id = ?) as is_liked"+
			", EXISTS(SELECT 1 FROM bookmarks WHERE bookmarks.scratch_id = scratches.id AND bookmarks.user_id = ?) as is_bookmarked",
			viewerID, viewerID, viewerID)
	}

	return db.Select(selectQuery + ", FALSE as is_rescratched, FALSE as is_liked, FALSE as is_bookmarked")
}

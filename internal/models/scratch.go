package models

import (
	"strings"
	"time"
)

// Rescratch classification values. A scratch that reshares another scratch is
// either a "direct" reshare (no content of its own) or a "quote" (reshare plus
// its own body or media). Everything else is "none".
const (
	RescratchTypeNone   = "none"
	RescratchTypeDirect = "direct"
	RescratchTypeQuote  = "quote"
)

// Scratch represents a post. A scratch can be a reply (ParentID set), a
// reshare of another scratch (RescratchedID set), or both.
type Scratch struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AuthorID      uint      `gorm:"not null;index" json:"authorId"`
	Author        *User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	ParentID      *uint     `gorm:"index" json:"parentId"`
	Parent        *Scratch  `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"-"`
	RescratchedID *uint     `gorm:"index" json:"rescratchedId"`
	Rescratched   *Scratch  `gorm:"foreignKey:RescratchedID;constraint:OnDelete:CASCADE" json:"-"`
	Body          string    `json:"body"`
	MediaURL      string    `json:"mediaUrl"`
	CreatedAt     time.Time `json:"createdAt"`

	// ReplyCount is not persisted; computed at query time
	ReplyCount int `gorm:"->;-:migration" json:"replyCount"`
	// RescratchCount is not persisted; computed at query time
	RescratchCount int `gorm:"->;-:migration" json:"rescratchCount"`
	// LikeCount is not persisted; computed at query time
	LikeCount int `gorm:"->;-:migration" json:"likeCount"`
	// IsRescratched indicates whether the requesting user reshared this scratch (computed)
	IsRescratched bool `gorm:"->;-:migration" json:"isRescratched"`
	// IsLiked indicates whether the requesting user liked this scratch (computed)
	IsLiked bool `gorm:"->;-:migration" json:"isLiked"`
	// IsBookmarked indicates whether the requesting user bookmarked this scratch (computed)
	IsBookmarked  bool   `gorm:"->;-:migration" json:"isBookmarked"`
	RescratchType string `gorm:"-" json:"rescratchType"`
}

// HasContent reports whether the scratch carries its own body or media.
func (s *Scratch) HasContent() bool {
	return strings.TrimSpace(s.Body) != "" || s.MediaURL != ""
}

// ClassifyRescratch sets RescratchType. A reshare with no body and no media
// is "direct"; a reshare with either is "quote"; a non-reshare is "none".
func (s *Scratch) ClassifyRescratch() {
	switch {
	case s.RescratchedID == nil:
		s.RescratchType = RescratchTypeNone
	case !s.HasContent():
		s.RescratchType = RescratchTypeDirect
	default:
		s.RescratchType = RescratchTypeQuote
	}
}

// Like marks a scratch as liked by a user.
type Like struct {
	UserID    uint      `gorm:"primaryKey" json:"userId"`
	ScratchID uint      `gorm:"primaryKey" json:"scratchId"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Scratch   *Scratch  `gorm:"foreignKey:ScratchID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// Bookmark marks a scratch as saved by a user. Bookmarks are private.
type Bookmark struct {
	UserID    uint      `gorm:"primaryKey" json:"userId"`
	ScratchID uint      `gorm:"primaryKey" json:"scratchId"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Scratch   *Scratch  `gorm:"foreignKey:ScratchID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered account. Usernames are immutable after signup;
// the display name, description and image URLs can be edited.
type User struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Username         string    `gorm:"uniqueIndex;not null" json:"username"`
	Name             string    `json:"name"`
	Password         string    `gorm:"not null" json:"-"`
	Description      string    `json:"description"`
	PinnedID         *uint     `gorm:"index" json:"pinnedId"`
	// Pinned carries the FK so a cascade-deleted scratch clears the pin in
	// the store. Created after AutoMigrate (see database.Connect): users and
	// scratches reference each other, so the constraint cannot be part of
	// table creation.
	Pinned *Scratch `gorm:"foreignKey:PinnedID;constraint:OnDelete:SET NULL;-:migration" json:"-"`
	ProfileImageURL  string    `json:"profileImageUrl"`
	ProfileBannerURL string    `json:"profileBannerUrl"`
	CreatedAt        time.Time `json:"createdAt"`

	// FollowerCount is not persisted; computed at query time
	FollowerCount int `gorm:"->;-:migration" json:"followerCount"`
	// FollowedCount is not persisted; computed at query time
	FollowedCount int `gorm:"->;-:migration" json:"followedCount"`
	// IsFollowing indicates whether the requesting user follows this user (computed)
	IsFollowing bool `gorm:"->;-:migration" json:"isFollowing"`
}

// Follow is an edge in the social graph: follower follows followed.
type Follow struct {
	FollowerID uint      `gorm:"primaryKey" json:"followerId"`
	FollowedID uint      `gorm:"primaryKey" json:"followedId"`
	Follower   *User     `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	Followed   *User     `gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
}

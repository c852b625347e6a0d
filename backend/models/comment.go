package models

import "time"

// Comment is casual course discussion, independent of ratings.
type Comment struct {
	ID           string `gorm:"primaryKey"`
	CourseID     uint   `gorm:"index"`
	UserEmail    string `gorm:"index"`
	UserName     string
	UserInitials string
	UserType     string
	Content      string
	Likes        int
	Edited       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Replies      []CommentReply
}

type CommentReply struct {
	ID           string `gorm:"primaryKey"`
	CommentID    string `gorm:"index"`
	UserEmail    string
	UserName     string
	UserInitials string
	Content      string
	CreatedAt    time.Time
}

// CommentLike is a plain boolean toggle, one row per (comment, user).
// Unlike hard-deletes the row so the pair can like again later.
type CommentLike struct {
	ID        uint   `gorm:"primaryKey"`
	CommentID string `gorm:"uniqueIndex:idx_comment_like_identity;not null"`
	UserEmail string `gorm:"uniqueIndex:idx_comment_like_identity;not null"`
	CreatedAt time.Time
}

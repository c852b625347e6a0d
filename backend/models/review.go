package models

import "time"

const (
	VoteUp   = "up"
	VoteDown = "down"
)

// Rating is one user's star value for a subject. VideoID is empty for
// course-level ratings. Values are continuous in [0,5]; the latest
// write overwrites. No DeletedAt so the upsert never collides with a
// soft-deleted row in the unique index.
type Rating struct {
	ID        uint   `gorm:"primaryKey"`
	CourseID  uint   `gorm:"uniqueIndex:idx_rating_identity;not null"`
	VideoID   string `gorm:"uniqueIndex:idx_rating_identity;default:''"`
	UserEmail string `gorm:"uniqueIndex:idx_rating_identity;not null"`
	Value     float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Review snapshots the author and their star value at submission time.
// One review per (course, author), enforced at write time.
type Review struct {
	ID           string `gorm:"primaryKey"`
	CourseID     uint   `gorm:"index"`
	UserEmail    string `gorm:"index"`
	UserName     string
	UserInitials string
	UserType     string
	Content      string
	Stars        int // 1-5, sourced from the author's Rating
	Edited       bool
	HelpfulUp    int
	HelpfulDown  int
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Replies      []ReviewReply
}

// ReviewReply is a teacher's response to a review. Only teacher-role
// users who did not author the review may reply.
type ReviewReply struct {
	ID           string `gorm:"primaryKey"`
	ReviewID     string `gorm:"index"`
	UserEmail    string
	UserName     string
	UserInitials string
	Content      string
	CreatedAt    time.Time
}

// HelpfulVote is tri-state per (review, user): a row with up or down,
// or no row at all. Clearing a vote hard-deletes the row, so the pair
// stays free to vote again.
type HelpfulVote struct {
	ID        uint   `gorm:"primaryKey"`
	ReviewID  string `gorm:"uniqueIndex:idx_helpful_identity;not null"`
	UserEmail string `gorm:"uniqueIndex:idx_helpful_identity;not null"`
	Vote      string // up, down
	CreatedAt time.Time
	UpdatedAt time.Time
}

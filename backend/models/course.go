package models

import (
	"time"

	"gorm.io/gorm"
)

type Course struct {
	gorm.Model
	Title        string
	Description  string
	Category     string // Web Development, Data Science, Design, Programming
	Level        string // Beginner, Intermediate, Advanced
	Thumbnail    string
	CreatorEmail string `gorm:"index"`
	CreatorName  string
	Published    bool `gorm:"default:false"`
	Videos       []Video
}

// Video rows use opaque string IDs because they double as object-store
// path components.
type Video struct {
	ID              string `gorm:"primaryKey"`
	CourseID        uint   `gorm:"index"`
	Name            string
	VideoURL        string
	Thumbnail       string
	SizeBytes       int64
	DurationSeconds float64
	Position        int // 0-based ordering key within the course
	CreatedAt       time.Time
}

// Enrollment is hard-deleted on unenroll; a DeletedAt column would keep
// the row in the unique index and break re-enrollment.
type Enrollment struct {
	ID        uint   `gorm:"primaryKey"`
	UserEmail string `gorm:"uniqueIndex:idx_enrollment_identity;not null"`
	CourseID  uint   `gorm:"uniqueIndex:idx_enrollment_identity;not null"`
	CreatedAt time.Time
}

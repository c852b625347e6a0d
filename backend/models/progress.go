package models

import "time"

// VideoProgress holds the last known playback state for one
// (user, course, video) triple. Upsert semantics: at most one row per
// identity, latest write wins. No DeletedAt: a soft-deleted row would
// still occupy the unique index and block the next upsert.
type VideoProgress struct {
	ID           uint    `gorm:"primaryKey"`
	UserEmail    string  `gorm:"uniqueIndex:idx_progress_identity;not null"`
	CourseID     uint    `gorm:"uniqueIndex:idx_progress_identity;not null"`
	VideoID      string  `gorm:"uniqueIndex:idx_progress_identity;not null"`
	TimePosition float64 // seconds
	Duration     float64 // seconds
	Percentage   float64 // derived, clamped to [0,100]
	LastUpdated  time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

package services

import (
	"errors"
	"log"
	"skillforge/backend/models"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// A user may review a course once they have watched at least half
	// of it overall.
	ReviewEligibilityPercent = 50.0
	// A video shows a "done" checkmark at 90%. Intentionally stricter
	// than the review threshold.
	VideoCompletePercent = 90.0
	// Cadence the player uses for background progress saves.
	AutoSaveIntervalSeconds = 10
)

type ProgressService struct {
	DB  *gorm.DB
	Log *log.Logger
}

func NewProgressService(db *gorm.DB, logger *log.Logger) *ProgressService {
	return &ProgressService{DB: db, Log: logger}
}

// RecordTick upserts the playback position for one video. Progress
// writes are fire-and-forget: a failed write is logged and the
// computed record is still returned, so the player keeps rendering
// optimistically. There is no retry queue.
func (s *ProgressService) RecordTick(userEmail string, courseID uint, videoID string, currentTime, duration float64) models.VideoProgress {
	percentage := 0.0
	if duration > 0 {
		percentage = clampPercent(currentTime / duration * 100)
	}

	record := models.VideoProgress{
		UserEmail:    userEmail,
		CourseID:     courseID,
		VideoID:      videoID,
		TimePosition: currentTime,
		Duration:     duration,
		Percentage:   percentage,
		LastUpdated:  time.Now(),
	}

	err := s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_email"}, {Name: "course_id"}, {Name: "video_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"time_position", "duration", "percentage", "last_updated", "updated_at",
		}),
	}).Create(&record).Error
	if err != nil {
		s.Log.Printf("progress save failed for %s course=%d video=%s: %v", userEmail, courseID, videoID, err)
	}

	return record
}

// Progress returns the stored record, or a zero-value record when none
// exists. Read failures degrade to the zero value.
func (s *ProgressService) Progress(userEmail string, courseID uint, videoID string) models.VideoProgress {
	var record models.VideoProgress
	err := s.DB.Where("user_email = ? AND course_id = ? AND video_id = ?", userEmail, courseID, videoID).
		First(&record).Error
	if err != nil {
		if !isNotFound(err) {
			s.Log.Printf("progress read failed for %s course=%d video=%s: %v", userEmail, courseID, videoID, err)
		}
		return models.VideoProgress{
			UserEmail: userEmail,
			CourseID:  courseID,
			VideoID:   videoID,
		}
	}
	return record
}

// CourseProgress averages progress over ALL of a course's videos:
// videos with no record contribute 0, so the divisor is the course's
// video count rather than the record count.
func (s *ProgressService) CourseProgress(userEmail string, courseID uint) float64 {
	var videoCount int64
	if err := s.DB.Model(&models.Video{}).Where("course_id = ?", courseID).Count(&videoCount).Error; err != nil {
		s.Log.Printf("video count failed for course=%d: %v", courseID, err)
		return 0
	}
	if videoCount == 0 {
		return 0
	}

	var total float64
	err := s.DB.Model(&models.VideoProgress{}).
		Where("user_email = ? AND course_id = ?", userEmail, courseID).
		Select("COALESCE(SUM(percentage), 0)").
		Scan(&total).Error
	if err != nil {
		s.Log.Printf("progress sum failed for %s course=%d: %v", userEmail, courseID, err)
		return 0
	}

	return clampPercent(total / float64(videoCount))
}

// VideoComplete reports whether a percentage counts as a finished
// video for list display.
func VideoComplete(percentage float64) bool {
	return percentage >= VideoCompletePercent
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

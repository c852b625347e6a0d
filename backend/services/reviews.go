package services

import (
	"log"
	"math"
	"skillforge/backend/models"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	ReviewMinLength = 10
	ReviewMaxLength = 5000
	ReplyMinLength  = 5
)

type ReviewService struct {
	DB       *gorm.DB
	Log      *log.Logger
	Progress *ProgressService
}

func NewReviewService(db *gorm.DB, logger *log.Logger, progress *ProgressService) *ReviewService {
	return &ReviewService{DB: db, Log: logger, Progress: progress}
}

// RatingStats is the aggregate shown on a course page: the mean over
// all ratings plus a 1-5 star distribution of rounded values.
type RatingStats struct {
	Average      float64      `json:"average"`
	Count        int          `json:"count"`
	Distribution [5]RatingBin `json:"distribution"` // index 0 = 1 star
}

type RatingBin struct {
	Star       int     `json:"star"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// SetRating stores one user's rating for a course, or for a single
// video when videoID is non-empty. The latest write overwrites.
// Enrollment/ownership gating is the caller's job via CanRate; keeping
// the write ungated leaves room for admin overrides.
func (s *ReviewService) SetRating(courseID uint, videoID, userEmail string, value float64) error {
	if value < 0 || value > 5 {
		return &ValidationError{Msg: "Rating must be between 0 and 5"}
	}

	rating := models.Rating{
		CourseID:  courseID,
		VideoID:   videoID,
		UserEmail: userEmail,
		Value:     value,
	}

	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "course_id"}, {Name: "video_id"}, {Name: "user_email"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rating).Error
}

// UserRating returns the caller's rating for a subject, 0 when unrated.
func (s *ReviewService) UserRating(courseID uint, videoID, userEmail string) float64 {
	var rating models.Rating
	err := s.DB.Where("course_id = ? AND video_id = ? AND user_email = ?", courseID, videoID, userEmail).
		First(&rating).Error
	if err != nil {
		return 0
	}
	return rating.Value
}

// AverageRating is the arithmetic mean over all ratings for a subject,
// with an explicit 0 when none exist.
func (s *ReviewService) AverageRating(courseID uint, videoID string) float64 {
	var avg float64
	err := s.DB.Model(&models.Rating{}).
		Where("course_id = ? AND video_id = ?", courseID, videoID).
		Select("COALESCE(AVG(value), 0)").
		Scan(&avg).Error
	if err != nil {
		s.Log.Printf("rating average failed for course=%d video=%q: %v", courseID, videoID, err)
		return 0
	}
	return avg
}

// CourseRatingStats buckets course-level ratings by their rounded
// value. Sub-0.5 ratings clamp into the 1-star bin.
func (s *ReviewService) CourseRatingStats(courseID uint) RatingStats {
	var values []float64
	err := s.DB.Model(&models.Rating{}).
		Where("course_id = ? AND video_id = ''", courseID).
		Pluck("value", &values).Error
	if err != nil {
		s.Log.Printf("rating stats failed for course=%d: %v", courseID, err)
		values = nil
	}

	stats := RatingStats{Count: len(values)}
	for i := range stats.Distribution {
		stats.Distribution[i].Star = i + 1
	}

	if len(values) == 0 {
		return stats
	}

	sum := 0.0
	for _, v := range values {
		sum += v
		bin := int(math.Round(v))
		if bin < 1 {
			bin = 1
		}
		if bin > 5 {
			bin = 5
		}
		stats.Distribution[bin-1].Count++
	}

	stats.Average = sum / float64(len(values))
	for i := range stats.Distribution {
		stats.Distribution[i].Percentage = float64(stats.Distribution[i].Count) / float64(len(values)) * 100
	}
	return stats
}

// CanRate implements the single eligibility policy for rating a
// course: the course must exist, its creator can never rate it,
// teachers may rate any other teacher's course, students must be
// enrolled.
func (s *ReviewService) CanRate(courseID uint, userEmail string) bool {
	course, err := s.course(courseID)
	if err != nil {
		return false
	}
	if course.CreatorEmail == userEmail {
		return false
	}

	user, err := s.user(userEmail)
	if err != nil {
		return false
	}
	if user.UserType == models.UserTypeStudent {
		return s.enrolled(userEmail, courseID)
	}
	return true
}

// CanWriteReview layers two more rules onto CanRate: one review per
// user per course, and students must have watched at least half of the
// course. Teachers are not enrolled and never accrue progress, so the
// progress gate does not apply to them.
func (s *ReviewService) CanWriteReview(courseID uint, userEmail string) bool {
	if !s.CanRate(courseID, userEmail) {
		return false
	}

	var count int64
	s.DB.Model(&models.Review{}).
		Where("course_id = ? AND user_email = ?", courseID, userEmail).
		Count(&count)
	if count > 0 {
		return false
	}

	user, err := s.user(userEmail)
	if err != nil {
		return false
	}
	if user.UserType == models.UserTypeStudent {
		return s.Progress.CourseProgress(userEmail, courseID) >= ReviewEligibilityPercent
	}
	return true
}

// SubmitReview creates a review whose stars snapshot the author's
// current course rating. Later rating changes do not touch it.
func (s *ReviewService) SubmitReview(courseID uint, userEmail, text string) (*models.Review, error) {
	text = strings.TrimSpace(text)
	if err := validateReviewText(text); err != nil {
		return nil, err
	}

	if !s.CanWriteReview(courseID, userEmail) {
		return nil, &EligibilityError{Msg: "You cannot review this course"}
	}

	rating := s.UserRating(courseID, "", userEmail)
	if rating <= 0 {
		return nil, &MissingRatingError{Msg: "Rate the course before submitting a review"}
	}

	user, err := s.user(userEmail)
	if err != nil {
		return nil, err
	}

	stars := int(math.Round(rating))
	if stars < 1 {
		stars = 1
	}
	if stars > 5 {
		stars = 5
	}

	review := models.Review{
		ID:           uuid.NewString(),
		CourseID:     courseID,
		UserEmail:    userEmail,
		UserName:     user.FullName(),
		UserInitials: user.Initials(),
		UserType:     user.UserType,
		Content:      text,
		Stars:        stars,
	}

	if err := s.DB.Create(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// ListReviews returns a course's reviews newest first, optionally
// filtered to one star value (1-5; 0 means all).
func (s *ReviewService) ListReviews(courseID uint, stars int) ([]models.Review, error) {
	query := s.DB.Preload("Replies").Where("course_id = ?", courseID)
	if stars >= 1 && stars <= 5 {
		query = query.Where("stars = ?", stars)
	}

	var reviews []models.Review
	if err := query.Order("created_at DESC").Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// EditReview re-validates the content and marks the review edited.
// Only the author may edit.
func (s *ReviewService) EditReview(reviewID, userEmail, text string) (*models.Review, error) {
	text = strings.TrimSpace(text)
	if err := validateReviewText(text); err != nil {
		return nil, err
	}

	review, err := s.review(reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserEmail != userEmail {
		return nil, &EligibilityError{Msg: "Only the author can edit a review"}
	}

	review.Content = text
	review.Edited = true
	if err := s.DB.Save(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// DeleteReview removes a review together with its replies and votes.
func (s *ReviewService) DeleteReview(reviewID, userEmail string) error {
	review, err := s.review(reviewID)
	if err != nil {
		return err
	}
	if review.UserEmail != userEmail {
		return &EligibilityError{Msg: "Only the author can delete a review"}
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", reviewID).Delete(&models.ReviewReply{}).Error; err != nil {
			return err
		}
		if err := tx.Where("review_id = ?", reviewID).Delete(&models.HelpfulVote{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Review{}, "id = ?", reviewID).Error
	})
}

// MarkHelpful toggles a tri-state vote: voting the same value again
// clears it, switching moves the tally between counters.
func (s *ReviewService) MarkHelpful(reviewID, userEmail, vote string) (*models.Review, error) {
	if vote != models.VoteUp && vote != models.VoteDown {
		return nil, &ValidationError{Msg: "Vote must be up or down"}
	}

	var review models.Review
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&review, "id = ?", reviewID).Error; err != nil {
			if isNotFound(err) {
				return &NotFoundError{Msg: "Review not found"}
			}
			return err
		}

		var existing models.HelpfulVote
		err := tx.Where("review_id = ? AND user_email = ?", reviewID, userEmail).First(&existing).Error
		switch {
		case err == nil && existing.Vote == vote:
			// Toggle off.
			s.adjustVote(&review, vote, -1)
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		case err == nil:
			// Switch sides.
			s.adjustVote(&review, existing.Vote, -1)
			s.adjustVote(&review, vote, +1)
			existing.Vote = vote
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
		case isNotFound(err):
			s.adjustVote(&review, vote, +1)
			newVote := models.HelpfulVote{ReviewID: reviewID, UserEmail: userEmail, Vote: vote}
			if err := tx.Create(&newVote).Error; err != nil {
				return err
			}
		default:
			return err
		}

		return tx.Model(&models.Review{}).Where("id = ?", reviewID).
			Updates(map[string]interface{}{
				"helpful_up":   review.HelpfulUp,
				"helpful_down": review.HelpfulDown,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// UserHelpfulVote reports the caller's current vote, "" when none.
func (s *ReviewService) UserHelpfulVote(reviewID, userEmail string) string {
	var vote models.HelpfulVote
	err := s.DB.Where("review_id = ? AND user_email = ?", reviewID, userEmail).First(&vote).Error
	if err != nil {
		return ""
	}
	return vote.Vote
}

// ReplyToReview lets teachers respond to reviews on any course, except
// reviews they wrote themselves.
func (s *ReviewService) ReplyToReview(reviewID, userEmail, text string) (*models.ReviewReply, error) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < ReplyMinLength {
		return nil, &ValidationError{Msg: "Reply must be at least 5 characters long"}
	}

	user, err := s.user(userEmail)
	if err != nil {
		return nil, err
	}
	if !user.IsTeacher() {
		return nil, &EligibilityError{Msg: "Only teachers can reply to reviews"}
	}

	review, err := s.review(reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserEmail == userEmail {
		return nil, &EligibilityError{Msg: "You cannot reply to your own review"}
	}

	reply := models.ReviewReply{
		ID:           uuid.NewString(),
		ReviewID:     reviewID,
		UserEmail:    userEmail,
		UserName:     user.FullName(),
		UserInitials: user.Initials(),
		Content:      text,
		CreatedAt:    time.Now(),
	}
	if err := s.DB.Create(&reply).Error; err != nil {
		return nil, err
	}
	return &reply, nil
}

// Length limits count characters, not bytes.
func validateReviewText(text string) error {
	runes := utf8.RuneCountInString(text)
	if runes < ReviewMinLength {
		return &ValidationError{Msg: "Review must be at least 10 characters long"}
	}
	if runes > ReviewMaxLength {
		return &ValidationError{Msg: "Review must be at most 5000 characters long"}
	}
	return nil
}

func (s *ReviewService) adjustVote(review *models.Review, vote string, delta int) {
	if vote == models.VoteUp {
		review.HelpfulUp += delta
	} else {
		review.HelpfulDown += delta
	}
}

func (s *ReviewService) user(email string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if isNotFound(err) {
			return nil, &NotFoundError{Msg: "User not found"}
		}
		return nil, err
	}
	return &user, nil
}

func (s *ReviewService) course(courseID uint) (*models.Course, error) {
	var course models.Course
	if err := s.DB.First(&course, courseID).Error; err != nil {
		if isNotFound(err) {
			return nil, &NotFoundError{Msg: "Course not found"}
		}
		return nil, err
	}
	return &course, nil
}

func (s *ReviewService) review(reviewID string) (*models.Review, error) {
	var review models.Review
	if err := s.DB.First(&review, "id = ?", reviewID).Error; err != nil {
		if isNotFound(err) {
			return nil, &NotFoundError{Msg: "Review not found"}
		}
		return nil, err
	}
	return &review, nil
}

func (s *ReviewService) enrolled(userEmail string, courseID uint) bool {
	var count int64
	s.DB.Model(&models.Enrollment{}).
		Where("user_email = ? AND course_id = ?", userEmail, courseID).
		Count(&count)
	return count > 0
}

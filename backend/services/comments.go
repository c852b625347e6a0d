package services

import (
	"log"
	"skillforge/backend/models"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CommentMinLength      = 3
	CommentMaxLength      = 2000
	CommentReplyMinLength = 3
)

// Comment sort orders.
const (
	SortNewest = "newest"
	SortOldest = "oldest"
	SortLiked  = "popular" // most liked, ties broken by insertion order
)

type CommentService struct {
	DB  *gorm.DB
	Log *log.Logger
}

func NewCommentService(db *gorm.DB, logger *log.Logger) *CommentService {
	return &CommentService{DB: db, Log: logger}
}

// PostComment adds a flat comment to a course. Any authenticated user
// may comment; there is no rating requirement.
func (s *CommentService) PostComment(courseID uint, user *models.User, text string) (*models.Comment, error) {
	if err := validateCommentText(text); err != nil {
		return nil, err
	}

	var count int64
	s.DB.Model(&models.Course{}).Where("id = ?", courseID).Count(&count)
	if count == 0 {
		return nil, &NotFoundError{Msg: "Course not found"}
	}

	comment := models.Comment{
		ID:           uuid.NewString(),
		CourseID:     courseID,
		UserEmail:    user.Email,
		UserName:     user.FullName(),
		UserInitials: user.Initials(),
		UserType:     user.UserType,
		Content:      text,
	}
	if err := s.DB.Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListComments supports the three sort orders the discussion tab
// offers. Like-count ties keep insertion order.
func (s *CommentService) ListComments(courseID uint, sortBy string) ([]models.Comment, error) {
	query := s.DB.Preload("Replies").Where("course_id = ?", courseID)

	switch sortBy {
	case SortOldest:
		query = query.Order("created_at ASC")
	case SortLiked:
		query = query.Order("likes DESC").Order("created_at ASC")
	default:
		query = query.Order("created_at DESC")
	}

	var comments []models.Comment
	if err := query.Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// EditComment is author-only and re-validates the content.
func (s *CommentService) EditComment(commentID, userEmail, text string) (*models.Comment, error) {
	if err := validateCommentText(text); err != nil {
		return nil, err
	}

	comment, err := s.comment(commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserEmail != userEmail {
		return nil, &EligibilityError{Msg: "Only the author can edit a comment"}
	}

	comment.Content = text
	comment.Edited = true
	if err := s.DB.Save(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment is author-only and cascades the comment's replies and
// likes.
func (s *CommentService) DeleteComment(commentID, userEmail string) error {
	comment, err := s.comment(commentID)
	if err != nil {
		return err
	}
	if comment.UserEmail != userEmail {
		return &EligibilityError{Msg: "Only the author can delete a comment"}
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", commentID).Delete(&models.CommentReply{}).Error; err != nil {
			return err
		}
		if err := tx.Where("comment_id = ?", commentID).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Comment{}, "id = ?", commentID).Error
	})
}

// LikeComment toggles a per-user like and returns the new state and
// count.
func (s *CommentService) LikeComment(commentID, userEmail string) (liked bool, likes int, err error) {
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.First(&comment, "id = ?", commentID).Error; err != nil {
			if isNotFound(err) {
				return &NotFoundError{Msg: "Comment not found"}
			}
			return err
		}

		var existing models.CommentLike
		findErr := tx.Where("comment_id = ? AND user_email = ?", commentID, userEmail).First(&existing).Error
		switch {
		case findErr == nil:
			comment.Likes--
			liked = false
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		case isNotFound(findErr):
			comment.Likes++
			liked = true
			like := models.CommentLike{CommentID: commentID, UserEmail: userEmail}
			if err := tx.Create(&like).Error; err != nil {
				return err
			}
		default:
			return findErr
		}

		likes = comment.Likes
		return tx.Model(&models.Comment{}).Where("id = ?", commentID).
			Update("likes", comment.Likes).Error
	})
	return liked, likes, err
}

// HasLiked reports whether the user currently likes the comment.
func (s *CommentService) HasLiked(commentID, userEmail string) bool {
	var count int64
	s.DB.Model(&models.CommentLike{}).
		Where("comment_id = ? AND user_email = ?", commentID, userEmail).
		Count(&count)
	return count > 0
}

// ReplyToComment has no role gate: any authenticated user may reply.
func (s *CommentService) ReplyToComment(commentID string, user *models.User, text string) (*models.CommentReply, error) {
	if utf8.RuneCountInString(text) < CommentReplyMinLength {
		return nil, &ValidationError{Msg: "Reply must be at least 3 characters long"}
	}

	if _, err := s.comment(commentID); err != nil {
		return nil, err
	}

	reply := models.CommentReply{
		ID:           uuid.NewString(),
		CommentID:    commentID,
		UserEmail:    user.Email,
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

func (s *CommentService) comment(commentID string) (*models.Comment, error) {
	var comment models.Comment
	if err := s.DB.First(&comment, "id = ?", commentID).Error; err != nil {
		if isNotFound(err) {
			return nil, &NotFoundError{Msg: "Comment not found"}
		}
		return nil, err
	}
	return &comment, nil
}

// Length limits count characters, not bytes.
func validateCommentText(text string) error {
	runes := utf8.RuneCountInString(text)
	if runes < CommentMinLength {
		return &ValidationError{Msg: "Comment must be at least 3 characters long"}
	}
	if runes > CommentMaxLength {
		return &ValidationError{Msg: "Comment must be at most 2000 characters long"}
	}
	return nil
}

package controllers

import (
	"log"
	"skillforge/backend/config"
	"skillforge/backend/middleware"
	"skillforge/backend/services"
	"skillforge/backend/utils"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ReviewsController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Log     *log.Logger
	Reviews *services.ReviewService
}

func NewReviewsController(db *gorm.DB, cfg *config.Config, logger *log.Logger,
	reviews *services.ReviewService) *ReviewsController {
	return &ReviewsController{DB: db, Cfg: cfg, Log: logger, Reviews: reviews}
}

// SetRating godoc
// @Summary Rate a course or a single video
// @Description Latest rating overwrites; pass video_id for per-video ratings
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/rating [put]
func (rc *ReviewsController) SetRating(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input struct {
		Value   float64 `json:"value"`
		VideoID string  `json:"video_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if !rc.Reviews.CanRate(uint(courseID), user.Email) {
		return utils.Forbidden(c, "You cannot rate this course")
	}

	if err := rc.Reviews.SetRating(uint(courseID), input.VideoID, user.Email, input.Value); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Rating saved",
		"average": rc.Reviews.AverageRating(uint(courseID), input.VideoID),
	})
}

// GetRatingStats godoc
// @Summary Rating aggregate for a course
// @Description Mean, count, star distribution, plus the caller's own rating and review eligibility
// @Tags reviews
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /courses/{id}/rating [get]
func (rc *ReviewsController) GetRatingStats(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	stats := rc.Reviews.CourseRatingStats(uint(courseID))

	return c.JSON(fiber.Map{
		"stats":            stats,
		"user_rating":      rc.Reviews.UserRating(uint(courseID), "", user.Email),
		"can_rate":         rc.Reviews.CanRate(uint(courseID), user.Email),
		"can_write_review": rc.Reviews.CanWriteReview(uint(courseID), user.Email),
	})
}

// ListReviews godoc
// @Summary List course reviews
// @Tags reviews
// @Produce json
// @Param id path int true "Course ID"
// @Param stars query int false "Filter to one star value (1-5)"
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /courses/{id}/reviews [get]
func (rc *ReviewsController) ListReviews(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	stars, _ := strconv.Atoi(c.Query("stars"))

	reviews, err := rc.Reviews.ListReviews(uint(courseID), stars)
	if err != nil {
		return serviceError(c, err)
	}

	now := time.Now()
	items := make([]fiber.Map, 0, len(reviews))
	for i := range reviews {
		items = append(items, fiber.Map{
			"review": reviews[i],
			"posted": utils.RelativeTime(reviews[i].CreatedAt, now),
		})
	}

	return c.JSON(fiber.Map{
		"reviews": items,
		"total":   len(items),
	})
}

// SubmitReview godoc
// @Summary Submit a course review
// @Description Requires eligibility and a prior rating; stars snapshot the rating at submit time
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/reviews [post]
func (rc *ReviewsController) SubmitReview(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	review, err := rc.Reviews.SubmitReview(uint(courseID), user.Email, input.Content)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Review submitted",
		"review":  review,
	})
}

// EditReview godoc
// @Summary Edit own review
// @Tags reviews
// @Accept json
// @Produce json
// @Param reviewId path string true "Review ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /reviews/{reviewId} [put]
func (rc *ReviewsController) EditReview(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var input struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	review, err := rc.Reviews.EditReview(c.Params("reviewId"), user.Email, input.Content)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Review updated",
		"review":  review,
	})
}

// DeleteReview godoc
// @Summary Delete own review
// @Tags reviews
// @Produce json
// @Param reviewId path string true "Review ID"
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /reviews/{reviewId} [delete]
func (rc *ReviewsController) DeleteReview(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	if err := rc.Reviews.DeleteReview(c.Params("reviewId"), user.Email); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Review deleted"})
}

// MarkHelpful godoc
// @Summary Vote a review helpful or unhelpful
// @Description Re-sending the same vote clears it; the opposite vote switches sides
// @Tags reviews
// @Accept json
// @Produce json
// @Param reviewId path string true "Review ID"
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /reviews/{reviewId}/helpful [post]
func (rc *ReviewsController) MarkHelpful(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var input struct {
		Vote string `json:"vote"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	review, err := rc.Reviews.MarkHelpful(c.Params("reviewId"), user.Email, input.Vote)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"helpful_up":   review.HelpfulUp,
		"helpful_down": review.HelpfulDown,
		"user_vote":    rc.Reviews.UserHelpfulVote(review.ID, user.Email),
	})
}

// ReplyToReview godoc
// @Summary Teacher reply to a review
// @Tags reviews
// @Accept json
// @Produce json
// @Param reviewId path string true "Review ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /reviews/{reviewId}/replies [post]
func (rc *ReviewsController) ReplyToReview(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var input struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	reply, err := rc.Reviews.ReplyToReview(c.Params("reviewId"), user.Email, input.Content)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Reply posted",
		"reply":   reply,
	})
}

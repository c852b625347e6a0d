package controllers

import (
	"log"
	"skillforge/backend/config"
	"skillforge/backend/middleware"
	"skillforge/backend/services"
	"skillforge/backend/utils"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProgressController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Log      *log.Logger
	Progress *services.ProgressService
}

func NewProgressController(db *gorm.DB, cfg *config.Config, logger *log.Logger,
	progress *services.ProgressService) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg, Log: logger, Progress: progress}
}

// RecordTick godoc
// @Summary Save playback position
// @Description Upserts the caller's position in a video; a failed save still responds 200
// @Tags progress
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param videoId path string true "Video ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/videos/{videoId}/progress [put]
func (pc *ProgressController) RecordTick(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input struct {
		CurrentTime float64 `json:"current_time"`
		Duration    float64 `json:"duration"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	record := pc.Progress.RecordTick(user.Email, uint(courseID), c.Params("videoId"),
		input.CurrentTime, input.Duration)

	return c.JSON(fiber.Map{
		"percentage": record.Percentage,
		"completed":  services.VideoComplete(record.Percentage),
	})
}

// GetVideoProgress godoc
// @Summary Get saved position for a video
// @Tags progress
// @Produce json
// @Param id path int true "Course ID"
// @Param videoId path string true "Video ID"
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /courses/{id}/videos/{videoId}/progress [get]
func (pc *ProgressController) GetVideoProgress(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	record := pc.Progress.Progress(user.Email, uint(courseID), c.Params("videoId"))

	return c.JSON(fiber.Map{
		"time_position": record.TimePosition,
		"duration":      record.Duration,
		"percentage":    record.Percentage,
		"completed":     services.VideoComplete(record.Percentage),
	})
}

// GetCourseProgress godoc
// @Summary Overall course progress
// @Description Average over all course videos; unwatched videos count as zero
// @Tags progress
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /courses/{id}/progress [get]
func (pc *ProgressController) GetCourseProgress(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	percentage := pc.Progress.CourseProgress(user.Email, uint(courseID))

	return c.JSON(fiber.Map{
		"percentage":      percentage,
		"review_eligible": percentage >= services.ReviewEligibilityPercent,
	})
}

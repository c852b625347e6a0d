package controllers

import (
	"errors"
	"log"
	"skillforge/backend/config"
	"skillforge/backend/middleware"
	"skillforge/backend/models"
	"skillforge/backend/services"
	"skillforge/backend/storage"
	"skillforge/backend/utils"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxVideoUploadBytes caps a single video upload at 100 MB.
const MaxVideoUploadBytes = 100 * 1024 * 1024

type VideosController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Log      *log.Logger
	Progress *services.ProgressService
	Store    storage.Store
}

func NewVideosController(db *gorm.DB, cfg *config.Config, logger *log.Logger,
	progress *services.ProgressService, store storage.Store) *VideosController {
	return &VideosController{DB: db, Cfg: cfg, Log: logger, Progress: progress, Store: store}
}

// UploadVideo godoc
// @Summary Upload a video into a course
// @Description Accepts a multipart video file up to 100MB and appends it to the course
// @Tags videos
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/videos [post]
func (vc *VideosController) UploadVideo(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := vc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	if course.CreatorEmail != user.Email && !user.IsAdmin() {
		return utils.Forbidden(c, "You don't have permission to edit this course")
	}

	fileHeader, err := c.FormFile("video")
	if err != nil {
		return utils.BadRequest(c, "A video file is required")
	}
	if fileHeader.Size > MaxVideoUploadBytes {
		return utils.BadRequest(c, "Video must be smaller than 100MB")
	}
	if !strings.HasPrefix(fileHeader.Header.Get("Content-Type"), "video/") {
		return utils.BadRequest(c, "Only video files are accepted")
	}

	duration, _ := strconv.ParseFloat(c.FormValue("duration"), 64)

	file, err := fileHeader.Open()
	if err != nil {
		return utils.InternalServerError(c, "Could not read upload")
	}
	defer file.Close()

	videoID := uuid.NewString()
	objectPath := storage.VideoObjectPath(course.CreatorEmail, videoID, fileHeader.Filename)
	if err := vc.Store.Upload(objectPath, file); err != nil {
		vc.Log.Printf("video upload failed for course=%d: %v", course.ID, err)
		return utils.InternalServerError(c, "Could not store video")
	}

	var position int64
	vc.DB.Model(&models.Video{}).Where("course_id = ?", course.ID).Count(&position)

	video := models.Video{
		ID:              videoID,
		CourseID:        course.ID,
		Name:            fileHeader.Filename,
		VideoURL:        vc.Store.PublicURL(objectPath),
		SizeBytes:       fileHeader.Size,
		DurationSeconds: duration,
		Position:        int(position),
		CreatedAt:       time.Now(),
	}
	if err := vc.DB.Create(&video).Error; err != nil {
		if removeErr := vc.Store.Remove(objectPath); removeErr != nil {
			vc.Log.Printf("orphaned object %s after failed insert: %v", objectPath, removeErr)
		}
		return utils.InternalServerError(c, "Could not save video")
	}

	return c.JSON(fiber.Map{
		"message": "Video uploaded",
		"video":   video,
	})
}

// DeleteVideo godoc
// @Summary Delete a video from a course
// @Tags videos
// @Produce json
// @Param id path int true "Course ID"
// @Param videoId path string true "Video ID"
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /courses/{id}/videos/{videoId} [delete]
func (vc *VideosController) DeleteVideo(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}
	videoID := c.Params("videoId")

	var course models.Course
	if err := vc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	if course.CreatorEmail != user.Email && !user.IsAdmin() {
		return utils.Forbidden(c, "You don't have permission to edit this course")
	}

	var video models.Video
	if err := vc.DB.Where("course_id = ?", course.ID).First(&video, "id = ?", videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Video not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	err = vc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ? AND video_id = ?", course.ID, video.ID).
			Delete(&models.VideoProgress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ? AND video_id = ?", course.ID, video.ID).
			Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		return tx.Delete(&video).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not delete video")
	}

	objectPath := storage.VideoObjectPath(course.CreatorEmail, video.ID, video.Name)
	if err := vc.Store.Remove(objectPath); err != nil {
		vc.Log.Printf("could not remove stored video %s: %v", objectPath, err)
	}

	return c.JSON(fiber.Map{"message": "Video deleted"})
}

// PlayerContent godoc
// @Summary Player payload for a course
// @Description Ordered videos with per-video progress, resume positions and completion flags
// @Tags videos
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/player [get]
func (vc *VideosController) PlayerContent(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := vc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var videos []models.Video
	if err := vc.DB.Where("course_id = ?", course.ID).Order("position ASC").Find(&videos).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	items := make([]fiber.Map, 0, len(videos))
	for _, video := range videos {
		record := vc.Progress.Progress(user.Email, course.ID, video.ID)
		items = append(items, fiber.Map{
			"video":           video,
			"percentage":      record.Percentage,
			"resume_position": record.TimePosition,
			"completed":       services.VideoComplete(record.Percentage),
		})
	}

	return c.JSON(fiber.Map{
		"course":                    course,
		"videos":                    items,
		"course_progress":           vc.Progress.CourseProgress(user.Email, course.ID),
		"autosave_interval_seconds": services.AutoSaveIntervalSeconds,
	})
}

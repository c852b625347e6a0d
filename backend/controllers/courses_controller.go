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

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CoursesController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Log     *log.Logger
	Catalog *services.CatalogService
	Reviews *services.ReviewService
	Store   storage.Store
}

func NewCoursesController(db *gorm.DB, cfg *config.Config, logger *log.Logger,
	catalog *services.CatalogService, reviews *services.ReviewService, store storage.Store) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg, Log: logger, Catalog: catalog, Reviews: reviews, Store: store}
}

// SearchCatalog godoc
// @Summary Search published courses
// @Description Filtered, sorted read-only view over the catalog
// @Tags courses
// @Produce json
// @Param query query string false "Free-text query"
// @Param category query string false "Category filter"
// @Param level query string false "Level filter"
// @Param sort query string false "newest | rating | title"
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /courses/catalog [get]
func (cc *CoursesController) SearchCatalog(c *fiber.Ctx) error {
	entries := cc.Catalog.Search(
		c.Query("query"),
		c.Query("category"),
		c.Query("level"),
		c.Query("sort"),
	)

	return c.JSON(fiber.Map{
		"courses": entries,
		"total":   len(entries),
	})
}

// GetCourse godoc
// @Summary Get course details
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id} [get]
func (cc *CoursesController) GetCourse(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.Preload("Videos", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var enrolled int64
	cc.DB.Model(&models.Enrollment{}).
		Where("user_email = ? AND course_id = ?", user.Email, course.ID).
		Count(&enrolled)

	return c.JSON(fiber.Map{
		"course":           course,
		"enrolled":         enrolled > 0,
		"rating_stats":     cc.Reviews.CourseRatingStats(course.ID),
		"can_rate":         cc.Reviews.CanRate(course.ID, user.Email),
		"can_write_review": cc.Reviews.CanWriteReview(course.ID, user.Email),
	})
}

// CreateCourse godoc
// @Summary Create a course
// @Description Teachers create draft courses; publish is a separate step
// @Tags courses
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses [post]
func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Level       string `json:"level"`
		Thumbnail   string `json:"thumbnail"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" {
		return utils.BadRequest(c, "Title is required")
	}

	course := models.Course{
		Title:        input.Title,
		Description:  input.Description,
		Category:     input.Category,
		Level:        input.Level,
		Thumbnail:    input.Thumbnail,
		CreatorEmail: user.Email,
		CreatorName:  user.FullName(),
		Published:    false,
	}

	if err := cc.DB.Create(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not create course")
	}

	return c.JSON(fiber.Map{
		"message": "Course created",
		"course":  course,
	})
}

// UpdateCourse godoc
// @Summary Update course fields
// @Tags courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id} [put]
func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	course, err := cc.ownedCourse(c)
	if err != nil {
		return err
	}

	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Level       string `json:"level"`
		Thumbnail   string `json:"thumbnail"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Title != "" {
		course.Title = input.Title
	}
	if input.Description != "" {
		course.Description = input.Description
	}
	if input.Category != "" {
		course.Category = input.Category
	}
	if input.Level != "" {
		course.Level = input.Level
	}
	if input.Thumbnail != "" {
		course.Thumbnail = input.Thumbnail
	}

	if err := cc.DB.Save(course).Error; err != nil {
		return utils.InternalServerError(c, "Could not update course")
	}

	return c.JSON(fiber.Map{
		"message": "Course updated",
		"course":  course,
	})
}

// SetPublished godoc
// @Summary Publish or unpublish a course
// @Tags courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /courses/{id}/published [put]
func (cc *CoursesController) SetPublished(c *fiber.Ctx) error {
	course, err := cc.ownedCourse(c)
	if err != nil {
		return err
	}

	var input struct {
		Published bool `json:"published"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	course.Published = input.Published
	if err := cc.DB.Save(course).Error; err != nil {
		return utils.InternalServerError(c, "Could not update course")
	}

	return c.JSON(fiber.Map{
		"message":   "Course updated",
		"published": course.Published,
	})
}

// DeleteCourse godoc
// @Summary Delete a course and its dependent rows
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /courses/{id} [delete]
func (cc *CoursesController) DeleteCourse(c *fiber.Ctx) error {
	course, err := cc.ownedCourse(c)
	if err != nil {
		return err
	}

	if err := cc.deleteCourse(course); err != nil {
		return utils.InternalServerError(c, "Could not delete course")
	}

	return c.JSON(fiber.Map{"message": "Course deleted"})
}

// deleteCourse removes a course, all dependent rows and its stored
// video objects. Object removal failures are logged, not surfaced:
// the database rows are the authoritative state.
func (cc *CoursesController) deleteCourse(course *models.Course) error {
	var videos []models.Video
	cc.DB.Where("course_id = ?", course.ID).Find(&videos)

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		var reviews []models.Review
		tx.Where("course_id = ?", course.ID).Find(&reviews)
		for _, review := range reviews {
			if err := tx.Where("review_id = ?", review.ID).Delete(&models.ReviewReply{}).Error; err != nil {
				return err
			}
			if err := tx.Where("review_id = ?", review.ID).Delete(&models.HelpfulVote{}).Error; err != nil {
				return err
			}
		}

		var comments []models.Comment
		tx.Where("course_id = ?", course.ID).Find(&comments)
		for _, comment := range comments {
			if err := tx.Where("comment_id = ?", comment.ID).Delete(&models.CommentReply{}).Error; err != nil {
				return err
			}
			if err := tx.Where("comment_id = ?", comment.ID).Delete(&models.CommentLike{}).Error; err != nil {
				return err
			}
		}

		for _, model := range []interface{}{
			&models.Review{}, &models.Comment{}, &models.Rating{},
			&models.VideoProgress{}, &models.Enrollment{}, &models.Video{},
		} {
			if err := tx.Where("course_id = ?", course.ID).Delete(model).Error; err != nil {
				return err
			}
		}

		return tx.Delete(course).Error
	})
	if err != nil {
		return err
	}

	for _, video := range videos {
		path := storage.VideoObjectPath(course.CreatorEmail, video.ID, video.Name)
		if err := cc.Store.Remove(path); err != nil {
			cc.Log.Printf("could not remove stored video %s: %v", path, err)
		}
	}
	return nil
}

// Enroll godoc
// @Summary Enroll in a course
// @Description Duplicate enrollment responds as success
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/enroll [post]
func (cc *CoursesController) Enroll(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	enrollment := models.Enrollment{
		UserEmail: user.Email,
		CourseID:  course.ID,
	}
	if err := cc.DB.Create(&enrollment).Error; err != nil {
		// Double enrollment is idempotent success, not a conflict.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.JSON(fiber.Map{"message": "Already enrolled in this course"})
		}
		return utils.InternalServerError(c, "Could not enroll")
	}

	return c.JSON(fiber.Map{"message": "Successfully enrolled in course"})
}

// Unenroll godoc
// @Summary Unenroll from a course
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /courses/{id}/enroll [delete]
func (cc *CoursesController) Unenroll(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	if err := cc.DB.Where("user_email = ? AND course_id = ?", user.Email, courseID).
		Delete(&models.Enrollment{}).Error; err != nil {
		return utils.InternalServerError(c, "Could not unenroll")
	}

	return c.JSON(fiber.Map{"message": "Unenrolled from course"})
}

// TeacherStats godoc
// @Summary Per-course stats for the teacher dashboard
// @Tags courses
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /teacher/stats [get]
func (cc *CoursesController) TeacherStats(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	return c.JSON(fiber.Map{
		"courses": cc.Catalog.TeacherStats(user.Email),
	})
}

// ownedCourse loads the course from the :id param and checks the
// caller owns it (admins may act on any course).
func (cc *CoursesController) ownedCourse(c *fiber.Ctx) (*models.Course, error) {
	user := middleware.CurrentUser(c)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound(c, "Course not found")
		}
		return nil, utils.InternalServerError(c, "Could not query database")
	}

	if course.CreatorEmail != user.Email && !user.IsAdmin() {
		return nil, utils.Forbidden(c, "You don't have permission to edit this course")
	}

	return &course, nil
}

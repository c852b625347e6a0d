package controllers

import (
	"errors"
	"log"
	"skillforge/backend/config"
	"skillforge/backend/middleware"
	"skillforge/backend/models"
	"skillforge/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AdminController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Log *log.Logger
}

func NewAdminController(db *gorm.DB, cfg *config.Config, logger *log.Logger) *AdminController {
	return &AdminController{DB: db, Cfg: cfg, Log: logger}
}

// ListUsers godoc
// @Summary List platform users
// @Tags admin
// @Produce json
// @Param status query string false "active | suspended"
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /admin/users [get]
func (ac *AdminController) ListUsers(c *fiber.Ctx) error {
	query := ac.DB.Model(&models.User{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var users []models.User
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	out := make([]fiber.Map, 0, len(users))
	for i := range users {
		out = append(out, publicUser(&users[i]))
	}

	return c.JSON(fiber.Map{
		"users": out,
		"total": len(out),
	})
}

// SetUserStatus godoc
// @Summary Suspend or reactivate a user
// @Description Suspended users fail login and every authenticated request
// @Tags admin
// @Accept json
// @Produce json
// @Param email path string true "User email"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/users/{email}/status [put]
func (ac *AdminController) SetUserStatus(c *fiber.Ctx) error {
	admin := middleware.CurrentUser(c)

	var input struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Status != models.UserStatusActive && input.Status != models.UserStatusSuspended {
		return utils.BadRequest(c, "Status must be active or suspended")
	}

	email := c.Params("email")
	if email == admin.Email {
		return utils.BadRequest(c, "You cannot change your own status")
	}

	var user models.User
	if err := ac.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	user.Status = input.Status
	if err := ac.DB.Save(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not update user")
	}

	return c.JSON(fiber.Map{
		"message": "User updated",
		"user":    publicUser(&user),
	})
}

// ListCourses godoc
// @Summary List all courses, drafts included
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /admin/courses [get]
func (ac *AdminController) ListCourses(c *fiber.Ctx) error {
	var courses []models.Course
	if err := ac.DB.Order("created_at DESC").Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{
		"courses": courses,
		"total":   len(courses),
	})
}

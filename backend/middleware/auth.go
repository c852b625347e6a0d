package middleware

import (
	"errors"
	"skillforge/backend/config"
	"skillforge/backend/models"
	"skillforge/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const userLocalKey = "currentUser"

// AuthMiddleware resolves the token to a user row and stores it on the
// request context. Suspended accounts are rejected on every call, so an
// admin suspension takes effect on the user's next request.
func AuthMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email, err := utils.ExtractEmailFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Authentication required")
		}

		var user models.User
		if err := db.Where("email = ?", email).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.Unauthorized(c, "Authentication required")
			}
			return utils.InternalServerError(c, "Could not query database")
		}

		if user.IsSuspended() {
			return utils.Forbidden(c, "Account suspended")
		}

		c.Locals(userLocalKey, &user)
		return c.Next()
	}
}

// CurrentUser returns the authenticated user set by AuthMiddleware.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userLocalKey).(*models.User)
	return user
}

// TeacherMiddleware gates course-authoring routes.
func TeacherMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || (!user.IsTeacher() && !user.IsAdmin()) {
			return utils.Forbidden(c, "Teacher access required")
		}
		return c.Next()
	}
}

func AdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			return utils.Forbidden(c, "Admin access required")
		}
		return c.Next()
	}
}

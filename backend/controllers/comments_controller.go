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

type CommentsController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Log      *log.Logger
	Comments *services.CommentService
}

func NewCommentsController(db *gorm.DB, cfg *config.Config, logger *log.Logger,
	comments *services.CommentService) *CommentsController {
	return &CommentsController{DB: db, Cfg: cfg, Log: logger, Comments: comments}
}

// PostComment godoc
// @Summary Comment on a course
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/comments [post]
func (cc *CommentsController) PostComment(c *fiber.Ctx) error {
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

	comment, err := cc.Comments.PostComment(uint(courseID), user, input.Content)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Comment posted",
		"comment": comment,
	})
}

// ListComments godoc
// @Summary List course comments
// @Tags comments
// @Produce json
// @Param id path int true "Course ID"
// @Param sort query string false "newest | oldest | popular"
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /courses/{id}/comments [get]
func (cc *CommentsController) ListComments(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	comments, err := cc.Comments.ListComments(uint(courseID), c.Query("sort"))
	if err != nil {
		return serviceError(c, err)
	}

	now := time.Now()
	items := make([]fiber.Map, 0, len(comments))
	for i := range comments {
		items = append(items, fiber.Map{
			"comment": comments[i],
			"posted":  utils.RelativeTime(comments[i].CreatedAt, now),
		})
	}

	return c.JSON(fiber.Map{
		"comments": items,
		"total":    len(items),
	})
}

// EditComment godoc
// @Summary Edit own comment
// @Tags comments
// @Accept json
// @Produce json
// @Param commentId path string true "Comment ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /comments/{commentId} [put]
func (cc *CommentsController) EditComment(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var input struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	comment, err := cc.Comments.EditComment(c.Params("commentId"), user.Email, input.Content)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Comment updated",
		"comment": comment,
	})
}

// DeleteComment godoc
// @Summary Delete own comment
// @Tags comments
// @Produce json
// @Param commentId path string true "Comment ID"
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /comments/{commentId} [delete]
func (cc *CommentsController) DeleteComment(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	if err := cc.Comments.DeleteComment(c.Params("commentId"), user.Email); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Comment deleted"})
}

// LikeComment godoc
// @Summary Toggle a like on a comment
// @Tags comments
// @Produce json
// @Param commentId path string true "Comment ID"
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /comments/{commentId}/like [post]
func (cc *CommentsController) LikeComment(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	liked, likes, err := cc.Comments.LikeComment(c.Params("commentId"), user.Email)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"liked": liked,
		"likes": likes,
	})
}

// ReplyToComment godoc
// @Summary Reply to a comment
// @Tags comments
// @Accept json
// @Produce json
// @Param commentId path string true "Comment ID"
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /comments/{commentId}/replies [post]
func (cc *CommentsController) ReplyToComment(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var input struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	reply, err := cc.Comments.ReplyToComment(c.Params("commentId"), user, input.Content)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Reply posted",
		"reply":   reply,
	})
}

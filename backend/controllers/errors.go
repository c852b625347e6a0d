package controllers

import (
	"errors"
	"skillforge/backend/services"
	"skillforge/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// serviceError maps the business-layer taxonomy onto HTTP statuses.
// Anything unrecognized is a store failure.
func serviceError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	var eligibilityErr *services.EligibilityError
	var notFoundErr *services.NotFoundError
	var conflictErr *services.ConflictError
	var missingRatingErr *services.MissingRatingError

	switch {
	case errors.As(err, &validationErr):
		return utils.BadRequest(c, validationErr.Msg)
	case errors.As(err, &missingRatingErr):
		return utils.BadRequest(c, missingRatingErr.Msg)
	case errors.As(err, &eligibilityErr):
		return utils.Forbidden(c, eligibilityErr.Msg)
	case errors.As(err, &notFoundErr):
		return utils.NotFound(c, notFoundErr.Msg)
	case errors.As(err, &conflictErr):
		return utils.Conflict(c, conflictErr.Msg)
	default:
		return utils.InternalServerError(c, "Could not complete the request")
	}
}

package handler

import (
	"errors"

	"go-inventory-pos/internal/apperr"
	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// actorFrom builds the acting identity from the locals RequireAuth sets.
// Unauthenticated requests act as the system.
func actorFrom(c *fiber.Ctx) service.Actor {
	var actor service.Actor
	if id, ok := c.Locals("user_id").(string); ok {
		if parsed, err := uuid.Parse(id); err == nil {
			actor.ID = parsed
		}
	}
	if name, ok := c.Locals("user_name").(string); ok {
		actor.Name = name
	}
	if email, ok := c.Locals("user_email").(string); ok {
		actor.Email = email
	}
	return actor
}

// Helper untuk parse UUID dari path param
func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(name))
}

// dateWindow reads the optional start_date / end_date query pair
func dateWindow(c *fiber.Ctx) (*model.DateRange, error) {
	window, err := model.ParseDateRange(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		return nil, apperr.Validation("", "%s", err.Error())
	}
	return window, nil
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindConflict:
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// respondError maps a service error onto its HTTP status and the {"error","kind","entity"} body
func respondError(c *fiber.Ctx, err error) error {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.Persistence(err, "Internal Server Error")
	}

	body := fiber.Map{
		"error": appErr.Message,
		"kind":  appErr.Kind,
	}
	if appErr.Entity != "" {
		body["entity"] = appErr.Entity
	}
	return c.Status(statusFor(appErr.Kind)).JSON(body)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return respondError(c, apperr.Validation("", "%s", msg))
}

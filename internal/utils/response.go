package utils

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fintrackeasy/user-service/internal/apperror"
)

func JSONMessage(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"message": msg})
}

func JSONValidation(c *fiber.Ctx, fields []apperror.FieldError) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fields})
}

func JSONInternal(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msg})
}

package utils

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Success writes the standard success envelope.
func Success(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// SuccessList writes the success envelope with a pagination block.
func SuccessList(c fiber.Ctx, message string, data any, pagination Pagination) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":    true,
		"message":    message,
		"data":       data,
		"pagination": pagination,
	})
}

// Error writes the standard error envelope.
func Error(c fiber.Ctx, status int, message string, errs ...string) error {
	body := fiber.Map{
		"success": false,
		"message": message,
	}
	if len(errs) > 0 {
		body["errors"] = errs
	}
	return c.Status(status).JSON(body)
}

// BadRequest writes a 400 error envelope.
func BadRequest(c fiber.Ctx, message string, errs ...string) error {
	return Error(c, fiber.StatusBadRequest, message, errs...)
}

// Unauthorized writes a 401 error envelope.
func Unauthorized(c fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, message)
}

// Forbidden writes a 403 error envelope.
func Forbidden(c fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, message)
}

// NotFound writes a 404 error envelope.
func NotFound(c fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, message)
}

// ServerError writes a 500 error envelope.
func ServerError(c fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

// IsNoRows reports whether err is pgx's empty-result sentinel.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505), used to translate duplicate keys to 400s.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

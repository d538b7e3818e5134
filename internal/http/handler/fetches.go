package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"arxivimg/internal/service"
)

// ListFetches returns paginated fetch audit records.
//
// @Summary List fetch records
// @Tags fetches
// @Param limit query int false "Page size" default(10)
// @Param offset query int false "Page offset" default(0)
// @Produce json
// @Success 200 {object} service.FetchListResult
// @Failure 400 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /fetches [get]
func ListFetches(svc service.ImageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limitStr := c.Query("limit", "10")
		offsetStr := c.Query("offset", "0")
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.ListFetches(c.UserContext(), limit, offset)
		if err != nil {
			if errors.Is(err, service.ErrAuditDisabled) {
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "fetch audit log is not configured")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetFetch returns a single fetch audit record by ID. The record carries
// a presigned download URL when the figure cache holds the object.
//
// @Summary Get a fetch record
// @Tags fetches
// @Param id path string true "Fetch record ID (UUID)"
// @Produce json
// @Success 200 {object} service.FetchDetail
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /fetches/{id} [get]
func GetFetch(svc service.ImageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		f, err := svc.GetFetch(c.UserContext(), id)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "fetch record not found")
			case errors.Is(err, service.ErrAuditDisabled):
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "fetch audit log is not configured")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.JSON(f)
	}
}

// DeleteFetch purges the cached figure and removes the audit record.
//
// @Summary Delete a fetch record
// @Tags fetches
// @Param id path string true "Fetch record ID (UUID)"
// @Success 204
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /fetches/{id} [delete]
func DeleteFetch(svc service.ImageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.DeleteFetch(c.UserContext(), id); err != nil {
			switch {
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "fetch record not found")
			case errors.Is(err, service.ErrAuditDisabled):
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "fetch audit log is not configured")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

package handler

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"arxivimg/internal/arxiv"
	"arxivimg/internal/model"
	"arxivimg/internal/service"
)

// GetSingleArxivImage serves one figure PNG from an arXiv HTML abstract page.
//
// @Summary Get a single arXiv image
// @Description Provide an arXiv HTML URL and an image index (1-4) to fetch the corresponding PNG image.
// @Tags images
// @Param url query string true "Full URL of the arXiv HTML page (e.g. https://arxiv.org/html/2504.07491v1)"
// @Param index query int true "Index of the image to fetch (1-4)"
// @Produce png
// @Success 200 {file} binary "PNG image"
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Failure 504 {object} errorPayload
// @Router /get_single_arxiv_image [get]
func GetSingleArxivImage(svc service.ImageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pageURL := c.Query("url")
		if pageURL == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_URL", "url query parameter is required")
		}

		indexStr := c.Query("index")
		if indexStr == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INDEX", "index query parameter is required")
		}
		index, err := strconv.Atoi(indexStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INDEX", "index must be an integer")
		}

		res, err := svc.FetchImage(c.UserContext(), pageURL, index)
		if err != nil {
			return writeFetchError(c, err, index)
		}

		if res.Source == model.SourceCache {
			c.Set("X-Cache", "HIT")
		} else {
			c.Set("X-Cache", "MISS")
		}
		c.Set(fiber.HeaderContentType, res.ContentType)
		return c.Status(fiber.StatusOK).Send(res.Data)
	}
}

// writeFetchError translates fetch pipeline errors into HTTP responses.
func writeFetchError(c *fiber.Ctx, err error, index int) error {
	var se *arxiv.UpstreamStatusError

	switch {
	case errors.Is(err, arxiv.ErrInvalidPageURL):
		return writeError(c, fiber.StatusBadRequest, "INVALID_URL", "url must be an arXiv HTML page URL")
	case errors.Is(err, arxiv.ErrInvalidIndex):
		return writeError(c, fiber.StatusBadRequest, "INVALID_INDEX",
			fmt.Sprintf("index must be between %d and %d", arxiv.MinIndex, arxiv.MaxIndex))
	case errors.Is(err, arxiv.ErrNotPNG):
		return writeError(c, fiber.StatusBadRequest, "NOT_PNG",
			fmt.Sprintf("resource found at index %d, but it is not a PNG image", index))
	case errors.Is(err, arxiv.ErrImageNotFound):
		return writeError(c, fiber.StatusNotFound, "IMAGE_NOT_FOUND",
			fmt.Sprintf("image index %d not found for this URL", index))
	case errors.As(err, &se):
		return writeError(c, fiber.StatusBadGateway, "UPSTREAM_ERROR",
			fmt.Sprintf("failed to fetch image from arXiv (status %d)", se.StatusCode))
	case errors.Is(err, arxiv.ErrRedirectBlocked):
		return writeError(c, fiber.StatusBadGateway, "UPSTREAM_ERROR", "arXiv redirected to a disallowed host")
	case errors.Is(err, arxiv.ErrTooLarge):
		return writeError(c, fiber.StatusBadGateway, "IMAGE_TOO_LARGE", "image exceeds the configured size limit")
	case errors.Is(err, arxiv.ErrUnreachable):
		return writeError(c, fiber.StatusServiceUnavailable, "UPSTREAM_UNREACHABLE", "could not connect to arXiv server")
	case errors.Is(err, arxiv.ErrTimeout):
		return writeError(c, fiber.StatusGatewayTimeout, "UPSTREAM_TIMEOUT", "timeout while fetching image from arXiv")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

package server

import (
	"errors"

	"booklink/internal/authz"
	"booklink/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const (
	defaultPageLimit   = 10
	maxPaginationLimit = 100
)

// Pagination holds parsed 1-indexed page and limit query parameters.
type Pagination struct {
	Page  int
	Limit int
}

// parsePagination extracts page and limit query parameters. Page is
// 1-indexed; out-of-range values fall back to the defaults.
func parsePagination(c *fiber.Ctx) Pagination {
	page := c.QueryInt("page", 1)
	if page <= 0 {
		page = 1
	}

	limit := c.QueryInt("limit", defaultPageLimit)
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	return Pagination{Page: page, Limit: limit}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
func humanizeParam(param string) string {
	switch param {
	case "id":
		return "ID"
	case "bookId":
		return "book ID"
	default:
		return param
	}
}

// identity returns the authenticated identity resolved by AuthRequired, or
// nil when the request is unauthenticated.
func (s *Server) identity(c *fiber.Ctx) *authz.Identity {
	if v := c.Locals("identity"); v != nil {
		if id, ok := v.(*authz.Identity); ok {
			return id
		}
	}
	return nil
}

// currentReaderID returns the authenticated reader's ID. It is only valid
// behind AuthRequired.
func (s *Server) currentReaderID(c *fiber.Ctx) uint {
	if v := c.Locals("readerID"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

package httputil

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Pagination bounds shared by every list endpoint.
const (
	DefaultLimit = 50
	MaxLimit     = 100
)

var (
	errInvalidOffset = errors.New("invalid offset parameter: must be a non-negative integer")
	errInvalidLimit  = errors.New("invalid limit parameter: must be between 1 and 100")
	errInvalidPage   = errors.New("invalid page parameter: must be a positive integer")
	errPageAndOffset = errors.New("offset and page parameters are mutually exclusive")
)

// ParsePagination reads offset and limit query parameters. Dashboards that page by
// number may send page (1-based) instead of offset; it is converted using limit.
func ParsePagination(c *gin.Context) (offset, limit int, err error) {
	limit, err = queryInt(c, "limit", DefaultLimit)
	if err != nil || limit < 1 || limit > MaxLimit {
		return 0, 0, errInvalidLimit
	}

	rawOffset, hasOffset := c.GetQuery("offset")
	rawPage, hasPage := c.GetQuery("page")

	switch {
	case hasOffset && hasPage:
		return 0, 0, errPageAndOffset
	case hasPage:
		page, err := strconv.Atoi(rawPage)
		if err != nil || page < 1 {
			return 0, 0, errInvalidPage
		}
		return (page - 1) * limit, limit, nil
	case hasOffset:
		offset, err = strconv.Atoi(rawOffset)
		if err != nil || offset < 0 {
			return 0, 0, errInvalidOffset
		}
	}

	return offset, limit, nil
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

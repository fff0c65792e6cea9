package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/interfaces/http/dto"
)

// optionalUUIDQuery parses an optional UUID query parameter. The first
// non-empty name wins, so camelCase and snake_case spellings both work.
func (h *BaseHandler) optionalUUIDQuery(c *gin.Context, names ...string) (*uuid.UUID, bool) {
	for _, name := range names {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid "+name+": must be a UUID")
			return nil, false
		}
		return &id, true
	}
	return nil, true
}

// optionalDateQuery parses an optional YYYY-MM-DD query parameter as a UTC date
func (h *BaseHandler) optionalDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid "+name+": expected YYYY-MM-DD")
		return nil, false
	}
	return &d, true
}

// firstQuery returns the first non-empty query value among names
func firstQuery(c *gin.Context, names ...string) string {
	for _, name := range names {
		if v := c.Query(name); v != "" {
			return v
		}
	}
	return ""
}

// pageQuery holds pagination parameters shared by list endpoints
type pageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

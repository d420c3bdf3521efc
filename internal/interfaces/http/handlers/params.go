package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	domainerrors "property-registry.backend/internal/domain/errors"
	"property-registry.backend/pkg/utils"
)

// propertyID reads the :id path parameter
func propertyID(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, domainerrors.BadRequest("Invalid property ID")
	}
	return id, nil
}

// pagination reads page and limit query parameters; malformed values fall
// back to the defaults
func pagination(c *gin.Context) utils.PageRequest {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	return utils.ParsePageRequest(page, limit)
}

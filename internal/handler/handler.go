// Package handler exposes the services over HTTP with gin.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/theoboldt/juvem-sub001/internal/dto"
	"github.com/theoboldt/juvem-sub001/internal/service"
	"github.com/theoboldt/juvem-sub001/pkg/middleware"
	"github.com/theoboldt/juvem-sub001/pkg/response"
)

// actorFrom builds the service actor from the JWT claims
func actorFrom(c *gin.Context) service.Actor {
	userID, _ := middleware.GetUserID(c)
	return service.Actor{UserID: userID, IsAdmin: middleware.IsAdmin(c)}
}

// bindJSON decodes the body into req and answers 400 on failure
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return false
	}
	return true
}

// bindQuery decodes pagination parameters and applies defaults
func bindQuery(c *gin.Context) (*dto.ListQuery, bool) {
	var query dto.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid query parameters"))
		return nil, false
	}
	query.SetDefaults()
	return &query, true
}

// locale picks the document language from ?locale= or Accept-Language
func locale(c *gin.Context, fallback string) string {
	if l := c.Query("locale"); l != "" {
		return l
	}
	if l := c.GetHeader("Accept-Language"); len(l) >= 2 {
		return l[:2]
	}
	return fallback
}

func deleted(c *gin.Context, what string) {
	c.JSON(http.StatusOK, response.Success(map[string]string{"message": what + " deleted successfully"}))
}

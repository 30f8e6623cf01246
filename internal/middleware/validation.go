package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/placementportal/internal/app/models/dto"
)

var validate = validator.New()

// BindJSON binds and validates the request body into obj. On failure it writes
// a 400 response and reports false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return false
	}
	return true
}

// BindQuery binds query parameters into obj
func BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return false
	}
	return true
}

// ValidateStruct validates a value that did not come through gin binding,
// using the same `binding` tags.
func ValidateStruct(obj interface{}) error {
	return validate.Struct(obj)
}

func init() {
	validate.SetTagName("binding")
}

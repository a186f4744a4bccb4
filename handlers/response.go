package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope for every API response.
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorInfo  `json:"error,omitempty"`
	RequestID string      `json:"request_id"`
}

// ErrorInfo describes a failed call. Code is the numeric registry code and
// is omitted for failures that do not come from the registry.
type ErrorInfo struct {
	Code    uint32 `json:"code,omitempty"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success:   true,
		Data:      data,
		RequestID: GetRequestID(c),
	})
}

func failure(c *gin.Context, status int, info ErrorInfo) {
	c.AbortWithStatusJSON(status, Response{
		Success:   false,
		Error:     &info,
		RequestID: GetRequestID(c),
	})
}

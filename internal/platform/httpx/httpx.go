// Package httpx holds the JSON error envelope and request helpers shared by the gin handlers.
package httpx

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gemini-observatory/backend/internal/logging"
	"gemini-observatory/backend/internal/platform/rbac"
	"gemini-observatory/backend/internal/platform/validation"
)

// ErrorBody is the response body of every failed request.
type ErrorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// Error aborts the request with status and message.
func Error(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorBody{Error: msg})
}

// Fail maps errors common to every handler: validation problems (400), forbidden (403).
// Anything else is logged and reported as 500 with msg.
func Fail(c *gin.Context, err error, msg string) {
	var ve *validation.Error
	switch {
	case errors.As(err, &ve):
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorBody{Error: "validation failed", Details: ve.Problems})
	case errors.Is(err, rbac.ErrForbidden):
		Error(c, http.StatusForbidden, "forbidden")
	default:
		logging.FromContext(c.Request.Context()).WithError(err).Error(msg)
		Error(c, http.StatusInternalServerError, msg)
	}
}

// BindJSON decodes the body into v, writing 400 on malformed input.
func BindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// Principal returns the authenticated caller set by the auth middleware.
func Principal(c *gin.Context) rbac.Principal {
	p, _ := rbac.PrincipalFrom(c.Request.Context())
	return p
}

// Page reads limit and offset query parameters, clamping limit to 1..max.
func Page(c *gin.Context, def, max int) (limit, offset int) {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	offset, err = strconv.Atoi(c.Query("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

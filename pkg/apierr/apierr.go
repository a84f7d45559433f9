// Package apierr defines the error responses sent by the API. Every error
// body carries a stable code, a message and the request ID.
package apierr

import (
	"bitwise74/roleplay-api/pkg/validators"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeTokenExpired    = "TOKEN_EXPIRED"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)

type Error struct {
	Status  int               `json:"-"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Errors  validators.Errors `json:"errors,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// BadRequest covers malformed input and broken business rules. Conflicts,
// missing rows and validation failures use the same code with a different
// status.
func BadRequest(status int, msg string) *Error {
	return &Error{Status: status, Code: CodeBadRequest, Message: msg}
}

func NotFound(msg string) *Error {
	return BadRequest(http.StatusNotFound, msg)
}

func Conflict(msg string) *Error {
	return BadRequest(http.StatusConflict, msg)
}

func Validation(errs validators.Errors) *Error {
	return &Error{
		Status:  http.StatusUnprocessableEntity,
		Code:    CodeBadRequest,
		Message: "validation failed",
		Errors:  errs,
	}
}

func Forbidden(msg string) *Error {
	return &Error{Status: http.StatusForbidden, Code: CodeForbidden, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: CodeUnauthorized, Message: msg}
}

func TokenExpired(msg string) *Error {
	return &Error{Status: http.StatusGone, Code: CodeTokenExpired, Message: msg}
}

func TooManyRequests(msg string) *Error {
	return &Error{Status: http.StatusTooManyRequests, Code: CodeTooManyRequests, Message: msg}
}

// Abort writes e and stops the handler chain
func Abort(c *gin.Context, e *Error) {
	body := gin.H{
		"code":      e.Code,
		"message":   e.Message,
		"requestID": c.GetString("requestID"),
	}

	if len(e.Errors) > 0 {
		body["errors"] = e.Errors
	}

	c.AbortWithStatusJSON(e.Status, body)
}

// Internal logs err and answers with a generic 500. The cause is never sent
// to the client.
func Internal(c *gin.Context, err error, msg string) {
	requestID := c.GetString("requestID")

	zap.L().Error(msg, zap.Error(err), zap.String("requestID", requestID))

	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"code":      CodeInternal,
		"message":   "Internal server error",
		"requestID": requestID,
	})
}

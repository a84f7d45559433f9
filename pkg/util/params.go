package util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParamUint reads the path parameter name as a positive integer. ok is false
// when the value is missing or not a number.
func ParamUint(c *gin.Context, name string) (uint, bool) {
	return ParseUint(c.Param(name))
}

// ParseUint parses s as a positive integer ID
func ParseUint(s string) (uint, bool) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}

	return uint(n), true
}

package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetUintParam parses a numeric path parameter.
func GetUintParam(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)

	if raw == "" {
		return 0, errors.New(name + " not found")
	}

	value, err := strconv.ParseUint(raw, 10, 32)

	if err != nil {
		return 0, errors.New("invalid " + name)
	}

	return uint(value), nil
}

// GetIntQuery parses an optional numeric query parameter, falling back to a
// default.
func GetIntQuery(ctx *gin.Context, name string, fallback int) int {
	raw := ctx.Query(name)
	if raw == "" {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

package utils

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

func getUintParam(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)

	if raw == "" {
		return 0, errors.New("missing " + name)
	}

	id, err := strconv.ParseUint(raw, 10, 32)

	if err != nil {
		return 0, errors.New("invalid " + name)
	}

	return uint(id), nil
}

func GetProjectID(ctx *gin.Context) (uint, error) {
	return getUintParam(ctx, "project_id")
}

func GetTaskID(ctx *gin.Context) (uint, error) {
	return getUintParam(ctx, "task_id")
}

func GetExpenseID(ctx *gin.Context) (uint, error) {
	return getUintParam(ctx, "expense_id")
}

func GetUserIDParam(ctx *gin.Context) (uint, error) {
	return getUintParam(ctx, "user_id")
}

func GetNotificationID(ctx *gin.Context) (uint, error) {
	return getUintParam(ctx, "id")
}

// ParseDate accepts the date-only form clients send, falling back to RFC3339.
func ParseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

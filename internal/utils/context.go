package utils

import (
	"fmt"

	"github.com/budgetboard-dev/budgetboard/internal/middleware"
	"github.com/budgetboard-dev/budgetboard/internal/types"
	"github.com/gin-gonic/gin"
)

func GetCurrentUser(ctx *gin.Context) (middleware.AuthenticatedUser, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return middleware.AuthenticatedUser{}, fmt.Errorf("User not authenticated")
	}

	authenticatedUser, ok := user.(middleware.AuthenticatedUser)

	if !ok {
		return middleware.AuthenticatedUser{}, fmt.Errorf("Invalid user type in context")
	}

	return authenticatedUser, nil
}

func GetCurrentUserID(ctx *gin.Context) (uint, error) {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return 0, err
	}

	return user.ID, nil
}

// GetProjectRole returns the caller's role in the project scoped by the
// current route. It is only set after RequireProjectRole has run.
func GetProjectRole(ctx *gin.Context) string {
	role, exists := ctx.Get(types.ContextProjectRoleKey)

	if !exists {
		return ""
	}

	if r, ok := role.(string); ok {
		return r
	}

	return ""
}

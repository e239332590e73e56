package handlers

import (
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// respondDBError maps store-level failures onto the API error taxonomy by
// inspecting the translated gorm error instead of pre-validating constraints.
func respondDBError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondError(ctx, http.StatusNotFound, "Record not found.", err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		respondError(ctx, http.StatusConflict, "A record with this data already exists.", err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		respondError(ctx, http.StatusBadRequest, "Referenced record does not exist.", err)
	default:
		respondError(ctx, http.StatusInternalServerError, "Internal server error", err)
	}
}

func respondError(ctx *gin.Context, status int, message string, err error) {
	if err != nil {
		log.Printf("%s %s failed: %v", ctx.Request.Method, ctx.Request.URL.Path, err)
	}

	body := gin.H{"message": message}

	// Error detail leaves the process only in development mode.
	if err != nil && os.Getenv("APP_ENV") == "development" {
		body["error"] = err.Error()
	}

	ctx.JSON(status, body)
}

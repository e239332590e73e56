package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/budgetboard-dev/budgetboard/db"
	"github.com/budgetboard-dev/budgetboard/internal/models"
	"github.com/budgetboard-dev/budgetboard/internal/utils"
	"github.com/gin-gonic/gin"
)

type ActivityResponse struct {
	ID         uint            `json:"id"`
	TaskID     *uint           `json:"task_id"`
	UserID     *uint           `json:"user_id"`
	UserName   string          `json:"user_name"`
	UserAvatar string          `json:"user_avatar"`
	Action     string          `json:"action"`
	Details    json.RawMessage `json:"details"`
	CreatedAt  time.Time       `json:"created_at"`
}

func ListActivities(ctx *gin.Context) {
	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid project ID.", err)
		return
	}

	var activities []models.Activity

	err = db.DB.Preload("User").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Limit(50).
		Find(&activities).Error

	if err != nil {
		respondDBError(ctx, err)
		return
	}

	response := make([]ActivityResponse, 0, len(activities))

	for _, entry := range activities {
		item := ActivityResponse{
			ID:        entry.ID,
			TaskID:    entry.TaskID,
			UserID:    entry.UserID,
			Action:    entry.Action,
			Details:   json.RawMessage(entry.Details),
			CreatedAt: entry.CreatedAt,
		}

		if entry.User != nil {
			item.UserName = entry.User.Name
			item.UserAvatar = entry.User.Avatar
		}

		response = append(response, item)
	}

	ctx.JSON(http.StatusOK, response)
}

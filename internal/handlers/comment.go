package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/budgetboard-dev/budgetboard/db"
	"github.com/budgetboard-dev/budgetboard/internal/activity"
	"github.com/budgetboard-dev/budgetboard/internal/models"
	"github.com/budgetboard-dev/budgetboard/internal/utils"
	"github.com/gin-gonic/gin"
)

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type CommentResponse struct {
	ID         uint      `json:"id"`
	TaskID     uint      `json:"task_id"`
	UserID     uint      `json:"user_id"`
	UserName   string    `json:"user_name"`
	UserAvatar string    `json:"user_avatar"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

func ListComments(ctx *gin.Context) {
	taskID, err := utils.GetTaskID(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid task ID.", err)
		return
	}

	var comments []models.Comment

	err = db.DB.Preload("User").
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&comments).Error

	if err != nil {
		respondDBError(ctx, err)
		return
	}

	response := make([]CommentResponse, 0, len(comments))

	for _, comment := range comments {
		response = append(response, CommentResponse{
			ID:         comment.ID,
			TaskID:     comment.TaskID,
			UserID:     comment.UserID,
			UserName:   comment.User.Name,
			UserAvatar: comment.User.Avatar,
			Content:    comment.Content,
			CreatedAt:  comment.CreatedAt,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func CreateComment(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "User not authenticated", err)
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid project ID.", err)
		return
	}

	taskID, err := utils.GetTaskID(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid task ID.", err)
		return
	}

	var req CreateCommentRequest

	if err := ctx.BindJSON(&req); err != nil {
		respondError(ctx, http.StatusBadRequest, "Comment content is required.", err)
		return
	}

	var task models.Task

	err = db.DB.Where("id = ? AND project_id = ?", taskID, projectID).First(&task).Error

	if err != nil {
		respondDBError(ctx, err)
		return
	}

	comment := models.Comment{
		TaskID:  taskID,
		UserID:  currentUser.ID,
		Content: req.Content,
	}

	if err := db.DB.Create(&comment).Error; err != nil {
		respondDBError(ctx, err)
		return
	}

	activity.Log(projectID, &taskID, &currentUser.ID, fmt.Sprintf("Commented on %q", task.Title), nil)

	ctx.JSON(http.StatusCreated, CommentResponse{
		ID:         comment.ID,
		TaskID:     comment.TaskID,
		UserID:     comment.UserID,
		UserName:   currentUser.Name,
		UserAvatar: currentUser.Avatar,
		Content:    comment.Content,
		CreatedAt:  comment.CreatedAt,
	})
}

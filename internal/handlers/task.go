package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/budgetboard-dev/budgetboard/db"
	"github.com/budgetboard-dev/budgetboard/internal/activity"
	"github.com/budgetboard-dev/budgetboard/internal/budget"
	"github.com/budgetboard-dev/budgetboard/internal/models"
	"github.com/budgetboard-dev/budgetboard/internal/types"
	"github.com/budgetboard-dev/budgetboard/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CreateTaskRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	AssignedTo  *uint   `json:"assigned_to"`
	DueDate     *string `json:"due_date"`
	Priority    string  `json:"priority"`
	Position    int     `json:"position"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Progress    *int    `json:"progress" binding:"omitempty,min=0,max=100"`
	AssignedTo  *uint   `json:"assigned_to"`
	DueDate     *string `json:"due_date"`
	Priority    *string `json:"priority"`
	Position    *int    `json:"position"`
}

type TaskResponse struct {
	ID               uint            `json:"id"`
	ProjectID        uint            `json:"project_id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Status           string          `json:"status"`
	Progress         int             `json:"progress"`
	AssignedTo       *uint           `json:"assigned_to"`
	AssignedToName   string          `json:"assigned_to_name,omitempty"`
	AssignedToAvatar string          `json:"assigned_to_avatar,omitempty"`
	CreatedBy        *uint           `json:"created_by"`
	CreatedByName    string          `json:"created_by_name,omitempty"`
	DueDate          *time.Time      `json:"due_date"`
	Priority         string          `json:"priority"`
	Position         int             `json:"position"`
	CostUsed         decimal.Decimal `json:"cost_used"`
	CommentCount     int64           `json:"comment_count"`
	CreatedAt        time.Time       `json:"created_at"`
}

func taskResponse(task *models.Task) (TaskResponse, error) {
	cost, err := budget.TaskCost(task.ID)

	if err != nil {
		return TaskResponse{}, err
	}

	var commentCount int64

	if err := db.DB.Model(&models.Comment{}).Where("task_id = ?", task.ID).Count(&commentCount).Error; err != nil {
		return TaskResponse{}, err
	}

	response := TaskResponse{
		ID:           task.ID,
		ProjectID:    task.ProjectID,
		Title:        task.Title,
		Description:  task.Description,
		Status:       task.Status,
		Progress:     task.Progress,
		AssignedTo:   task.AssignedTo,
		CreatedBy:    task.CreatedBy,
		DueDate:      task.DueDate,
		Priority:     task.Priority,
		Position:     task.Position,
		CostUsed:     cost,
		CommentCount: commentCount,
		CreatedAt:    task.CreatedAt,
	}

	if task.Assignee != nil {
		response.AssignedToName = task.Assignee.Name
		response.AssignedToAvatar = task.Assignee.Avatar
	}

	if task.Creator != nil {
		response.CreatedByName = task.Creator.Name
	}

	return response, nil
}

func ListTasks(ctx *gin.Context) {
	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid project ID.", err)
		return
	}

	var tasks []models.Task

	err = db.DB.Preload("Assignee").Preload("Creator").
		Where("project_id = ?", projectID).
		Order("status, position, created_at").
		Find(&tasks).Error

	if err != nil {
		respondDBError(ctx, err)
		return
	}

	response := make([]TaskResponse, 0, len(tasks))

	for i := range tasks {
		item, err := taskResponse(&tasks[i])

		if err != nil {
			respondDBError(ctx, err)
			return
		}

		response = append(response, item)
	}

	ctx.JSON(http.StatusOK, response)
}

func CreateTask(ctx *gin.Context) {
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

	var req CreateTaskRequest

	if err := ctx.BindJSON(&req); err != nil {
		respondError(ctx, http.StatusBadRequest, "Task title is required.", err)
		return
	}

	status := types.TaskStatusTodo
	if types.IsTaskStatus(req.Status) {
		status = req.Status
	}

	priority := types.PriorityMedium
	if req.Priority == types.PriorityLow || req.Priority == types.PriorityHigh {
		priority = req.Priority
	}

	creatorID := currentUser.ID

	task := models.Task{
		ProjectID:   projectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		AssignedTo:  req.AssignedTo,
		Priority:    priority,
		Position:    req.Position,
		CreatedBy:   &creatorID,
	}

	if req.DueDate != nil {
		due, err := utils.ParseDate(*req.DueDate)

		if err != nil {
			respondError(ctx, http.StatusBadRequest, "Invalid due date.", err)
			return
		}

		task.DueDate = &due
	}

	if err := db.DB.Create(&task).Error; err != nil {
		respondDBError(ctx, err)
		return
	}

	if task.AssignedTo != nil && *task.AssignedTo != currentUser.ID {
		notification := models.Notification{
			UserID:    *task.AssignedTo,
			ProjectID: &projectID,
			Type:      types.NotificationTaskAssigned,
			Message:   fmt.Sprintf("%s assigned you a task: %q", currentUser.Name, task.Title),
		}

		if err := db.DB.Create(&notification).Error; err != nil {
			respondDBError(ctx, err)
			return
		}
	}

	activity.Log(projectID, &task.ID, &currentUser.ID, fmt.Sprintf("Created task %q", task.Title), nil)
	BroadcastBoardRefresh(projectID)

	response, err := taskResponse(&task)

	if err != nil {
		respondDBError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, response)
}

func UpdateTask(ctx *gin.Context) {
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

	var req UpdateTaskRequest

	if err := ctx.BindJSON(&req); err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid request", err)
		return
	}

	var old models.Task

	err = db.DB.Where("id = ? AND project_id = ?", taskID, projectID).First(&old).Error

	if err != nil {
		respondDBError(ctx, err)
		return
	}

	updates := make(map[string]interface{})

	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != nil {
		if !types.IsTaskStatus(*req.Status) {
			respondError(ctx, http.StatusBadRequest, "Invalid status.", nil)
			return
		}
		updates["status"] = *req.Status
	}
	if req.Progress != nil {
		updates["progress"] = *req.Progress
	}
	if req.AssignedTo != nil {
		updates["assigned_to"] = *req.AssignedTo
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if req.Position != nil {
		updates["position"] = *req.Position
	}
	if req.DueDate != nil {
		due, err := utils.ParseDate(*req.DueDate)

		if err != nil {
			respondError(ctx, http.StatusBadRequest, "Invalid due date.", err)
			return
		}

		updates["due_date"] = due
	}

	// Updates writes the map values back into the receiver struct, so the
	// pre-update values must be captured before the call.
	prevStatus := old.Status
	prevProgress := old.Progress

	if len(updates) > 0 {
		if err := db.DB.Model(&old).Updates(updates).Error; err != nil {
			respondDBError(ctx, err)
			return
		}
	}

	var task models.Task

	if err := db.DB.Preload("Assignee").Preload("Creator").First(&task, taskID).Error; err != nil {
		respondDBError(ctx, err)
		return
	}

	// One activity line per update: a status change wins over a progress change.
	if prevStatus != task.Status {
		activity.Log(projectID, &task.ID, &currentUser.ID,
			fmt.Sprintf("Moved %q to %s", task.Title, strings.ReplaceAll(task.Status, "_", " ")), nil)
	} else if prevProgress != task.Progress {
		activity.Log(projectID, &task.ID, &currentUser.ID,
			fmt.Sprintf("Updated progress of %q to %d%%", task.Title, task.Progress), nil)
	}

	BroadcastBoardRefresh(projectID)

	response, err := taskResponse(&task)

	if err != nil {
		respondDBError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

func DeleteTask(ctx *gin.Context) {
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

	var task models.Task

	err = db.DB.Where("id = ? AND project_id = ?", taskID, projectID).First(&task).Error

	if err != nil {
		respondDBError(ctx, err)
		return
	}

	if err := db.DB.Unscoped().Delete(&task).Error; err != nil {
		respondDBError(ctx, err)
		return
	}

	activity.Log(projectID, nil, &currentUser.ID, fmt.Sprintf("Deleted task %q", task.Title), nil)
	BroadcastBoardRefresh(projectID)

	ctx.JSON(http.StatusOK, gin.H{"message": "Task deleted."})
}

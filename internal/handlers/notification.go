package handlers

import (
	"net/http"
	"time"

	"github.com/budgetboard-dev/budgetboard/db"
	"github.com/budgetboard-dev/budgetboard/internal/budget"
	"github.com/budgetboard-dev/budgetboard/internal/models"
	"github.com/budgetboard-dev/budgetboard/internal/types"
	"github.com/budgetboard-dev/budgetboard/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type NotificationResponse struct {
	ID          uint      `json:"id"`
	ProjectID   *uint     `json:"project_id"`
	ProjectName string    `json:"project_name,omitempty"`
	Type        string    `json:"type"`
	Message     string    `json:"message"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

type DueSoonTask struct {
	Title       string     `json:"title"`
	DueDate     *time.Time `json:"due_date"`
	Status      string     `json:"status"`
	ProjectName string     `json:"project_name"`
}

type BudgetWarning struct {
	Name        string          `json:"name"`
	TotalBudget decimal.Decimal `json:"total_budget"`
	Used        decimal.Decimal `json:"used"`
}

func ListNotifications(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "User not authenticated", err)
		return
	}

	var notifications []models.Notification

	err = db.DB.Preload("Project").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(30).
		Find(&notifications).Error

	if err != nil {
		respondDBError(ctx, err)
		return
	}

	response := make([]NotificationResponse, 0, len(notifications))
	unread := 0

	for _, notification := range notifications {
		item := NotificationResponse{
			ID:        notification.ID,
			ProjectID: notification.ProjectID,
			Type:      notification.Type,
			Message:   notification.Message,
			IsRead:    notification.IsRead,
			CreatedAt: notification.CreatedAt,
		}

		if notification.Project != nil {
			item.ProjectName = notification.Project.Name
		}

		if !notification.IsRead {
			unread++
		}

		response = append(response, item)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"notifications": response,
		"unread_count":  unread,
	})
}

func MarkAllNotificationsRead(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "User not authenticated", err)
		return
	}

	err = db.DB.Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Update("is_read", true).Error

	if err != nil {
		respondDBError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read."})
}

func MarkNotificationRead(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "User not authenticated", err)
		return
	}

	notificationID, err := utils.GetNotificationID(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid notification ID.", err)
		return
	}

	err = db.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true).Error

	if err != nil {
		respondDBError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Notification marked as read."})
}

func DeleteNotification(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "User not authenticated", err)
		return
	}

	notificationID, err := utils.GetNotificationID(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid notification ID.", err)
		return
	}

	err = db.DB.Unscoped().
		Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&models.Notification{}).Error

	if err != nil {
		respondDBError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Notification deleted."})
}

// Dashboard summarizes the caller's workload: membership count, tasks due
// within three days and projects past 75% of budget.
func Dashboard(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "User not authenticated", err)
		return
	}

	var projectCount int64

	if err := db.DB.Model(&models.ProjectMember{}).Where("user_id = ?", userID).Count(&projectCount).Error; err != nil {
		respondDBError(ctx, err)
		return
	}

	var memberships []models.ProjectMember

	if err := db.DB.Preload("Project").Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		respondDBError(ctx, err)
		return
	}

	projectIDs := make([]uint, 0, len(memberships))
	projectNames := make(map[uint]string, len(memberships))

	for _, membership := range memberships {
		projectIDs = append(projectIDs, membership.ProjectID)
		projectNames[membership.ProjectID] = membership.Project.Name
	}

	dueSoon := make([]DueSoonTask, 0)

	if len(projectIDs) > 0 {
		horizon := time.Now().AddDate(0, 0, 3)

		var tasks []models.Task

		err = db.DB.Where("project_id IN ? AND status != ? AND due_date IS NOT NULL AND due_date <= ?",
			projectIDs, types.TaskStatusCompleted, horizon).
			Order("due_date ASC").
			Limit(5).
			Find(&tasks).Error

		if err != nil {
			respondDBError(ctx, err)
			return
		}

		for _, task := range tasks {
			dueSoon = append(dueSoon, DueSoonTask{
				Title:       task.Title,
				DueDate:     task.DueDate,
				Status:      task.Status,
				ProjectName: projectNames[task.ProjectID],
			})
		}
	}

	warnings := make([]BudgetWarning, 0)
	threshold := decimal.NewFromFloat(0.75)

	for _, membership := range memberships {
		project := membership.Project

		if !project.TotalBudget.IsPositive() {
			continue
		}

		used, err := budget.UsedBudget(project.ID)

		if err != nil {
			respondDBError(ctx, err)
			return
		}

		if used.Div(project.TotalBudget).GreaterThanOrEqual(threshold) {
			warnings = append(warnings, BudgetWarning{
				Name:        project.Name,
				TotalBudget: project.TotalBudget,
				Used:        used,
			})
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"project_count":   projectCount,
		"tasks_due_soon":  dueSoon,
		"budget_warnings": warnings,
	})
}

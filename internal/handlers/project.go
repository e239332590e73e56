package handlers

import (
	"net/http"
	"time"

	"github.com/budgetboard-dev/budgetboard/db"
	"github.com/budgetboard-dev/budgetboard/internal/activity"
	"github.com/budgetboard-dev/budgetboard/internal/budget"
	"github.com/budgetboard-dev/budgetboard/internal/models"
	"github.com/budgetboard-dev/budgetboard/internal/types"
	"github.com/budgetboard-dev/budgetboard/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateProjectRequest struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	TotalBudget *decimal.Decimal `json:"total_budget"`
	Currency    string           `json:"currency"`
	DueDate     *string          `json:"due_date"`
}

type UpdateProjectRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	TotalBudget *decimal.Decimal `json:"total_budget"`
	Currency    *string          `json:"currency"`
	DueDate     *string          `json:"due_date"`
	Status      *string          `json:"status"`
}

type ProjectResponse struct {
	ID             uint            `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	TotalBudget    decimal.Decimal `json:"total_budget"`
	UsedBudget     decimal.Decimal `json:"used_budget"`
	Currency       string          `json:"currency"`
	Status         string          `json:"status"`
	OwnerID        uint            `json:"owner_id"`
	OwnerName      string          `json:"owner_name"`
	DueDate        *time.Time      `json:"due_date"`
	UserRole       string          `json:"user_role"`
	TaskCount      int64           `json:"task_count"`
	CompletedTasks int64           `json:"completed_tasks"`
	MemberCount    int64           `json:"member_count"`
	CreatedAt      time.Time       `json:"created_at"`
}

func projectResponse(project *models.Project, role string) (ProjectResponse, error) {
	var taskCount, completedTasks, memberCount int64

	if err := db.DB.Model(&models.Task{}).Where("project_id = ?", project.ID).Count(&taskCount).Error; err != nil {
		return ProjectResponse{}, err
	}

	if err := db.DB.Model(&models.Task{}).
		Where("project_id = ? AND status = ?", project.ID, types.TaskStatusCompleted).
		Count(&completedTasks).Error; err != nil {
		return ProjectResponse{}, err
	}

	if err := db.DB.Model(&models.ProjectMember{}).Where("project_id = ?", project.ID).Count(&memberCount).Error; err != nil {
		return ProjectResponse{}, err
	}

	used, err := budget.UsedBudget(project.ID)

	if err != nil {
		return ProjectResponse{}, err
	}

	ownerName := project.Owner.Name
	if ownerName == "" {
		var owner models.User
		if err := db.DB.First(&owner, project.OwnerID).Error; err == nil {
			ownerName = owner.Name
		}
	}

	return ProjectResponse{
		ID:             project.ID,
		Name:           project.Name,
		Description:    project.Description,
		TotalBudget:    project.TotalBudget,
		UsedBudget:     used,
		Currency:       project.Currency,
		Status:         project.Status,
		OwnerID:        project.OwnerID,
		OwnerName:      ownerName,
		DueDate:        project.DueDate,
		UserRole:       role,
		TaskCount:      taskCount,
		CompletedTasks: completedTasks,
		MemberCount:    memberCount,
		CreatedAt:      project.CreatedAt,
	}, nil
}

func ListProjects(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "User not authenticated", err)
		return
	}

	var memberships []models.ProjectMember

	err = db.DB.Preload("Project").Preload("Project.Owner").
		Where("user_id = ?", userID).
		Find(&memberships).Error

	if err != nil {
		respondDBError(ctx, err)
		return
	}

	response := make([]ProjectResponse, 0, len(memberships))

	for _, membership := range memberships {
		project := membership.Project
		item, err := projectResponse(&project, membership.Role)

		if err != nil {
			respondDBError(ctx, err)
			return
		}

		response = append(response, item)
	}

	ctx.JSON(http.StatusOK, response)
}

func GetProject(ctx *gin.Context) {
	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid project ID.", err)
		return
	}

	var project models.Project

	if err := db.DB.Preload("Owner").First(&project, projectID).Error; err != nil {
		respondDBError(ctx, err)
		return
	}

	response, err := projectResponse(&project, utils.GetProjectRole(ctx))

	if err != nil {
		respondDBError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

func CreateProject(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "User not authenticated", err)
		return
	}

	var req CreateProjectRequest

	if err := ctx.BindJSON(&req); err != nil {
		respondError(ctx, http.StatusBadRequest, "Project name is required.", err)
		return
	}

	project := models.Project{
		Name:        req.Name,
		Description: req.Description,
		Currency:    "RWF",
		Status:      "active",
		OwnerID:     currentUser.ID,
	}

	if req.TotalBudget != nil {
		if req.TotalBudget.IsNegative() {
			respondError(ctx, http.StatusBadRequest, "Budget cannot be negative.", nil)
			return
		}
		project.TotalBudget = *req.TotalBudget
	}

	if req.Currency != "" {
		project.Currency = req.Currency
	}

	if req.DueDate != nil {
		due, err := utils.ParseDate(*req.DueDate)

		if err != nil {
			respondError(ctx, http.StatusBadRequest, "Invalid due date.", err)
			return
		}

		project.DueDate = &due
	}

	// The owner membership is created in the same transaction: no project
	// may exist without its owner's membership row.
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		membership := models.ProjectMember{
			ProjectID: project.ID,
			UserID:    currentUser.ID,
			Role:      types.RoleOwner,
			JoinedAt:  time.Now(),
		}

		return tx.Create(&membership).Error
	})

	if err != nil {
		respondDBError(ctx, err)
		return
	}

	activity.Log(project.ID, nil, &currentUser.ID, `Created project "`+project.Name+`"`, nil)

	response, err := projectResponse(&project, types.RoleOwner)

	if err != nil {
		respondDBError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, response)
}

func UpdateProject(ctx *gin.Context) {
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

	var req UpdateProjectRequest

	if err := ctx.BindJSON(&req); err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid request", err)
		return
	}

	var project models.Project

	if err := db.DB.First(&project, projectID).Error; err != nil {
		respondDBError(ctx, err)
		return
	}

	updates := make(map[string]interface{})

	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.TotalBudget != nil {
		if req.TotalBudget.IsNegative() {
			respondError(ctx, http.StatusBadRequest, "Budget cannot be negative.", nil)
			return
		}
		updates["total_budget"] = *req.TotalBudget
	}
	if req.Currency != nil {
		updates["currency"] = *req.Currency
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.DueDate != nil {
		due, err := utils.ParseDate(*req.DueDate)

		if err != nil {
			respondError(ctx, http.StatusBadRequest, "Invalid due date.", err)
			return
		}

		updates["due_date"] = due
	}

	if len(updates) > 0 {
		if err := db.DB.Model(&project).Updates(updates).Error; err != nil {
			respondDBError(ctx, err)
			return
		}
	}

	if err := db.DB.Preload("Owner").First(&project, project.ID).Error; err != nil {
		respondDBError(ctx, err)
		return
	}

	activity.Log(project.ID, nil, &currentUser.ID, "Updated project settings", nil)

	response, err := projectResponse(&project, utils.GetProjectRole(ctx))

	if err != nil {
		respondDBError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

func DeleteProject(ctx *gin.Context) {
	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid project ID.", err)
		return
	}

	var project models.Project

	if err := db.DB.First(&project, projectID).Error; err != nil {
		respondDBError(ctx, err)
		return
	}

	// Hard delete so the ON DELETE rules fire: memberships, tasks, expenses,
	// activities and notifications of the project go with it.
	if err := db.DB.Unscoped().Delete(&project).Error; err != nil {
		respondDBError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully."})
}

package handlers

import (
	"fmt"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/budgetboard-dev/budgetboard/db"
	"github.com/budgetboard-dev/budgetboard/internal/activity"
	"github.com/budgetboard-dev/budgetboard/internal/budget"
	"github.com/budgetboard-dev/budgetboard/internal/models"
	"github.com/budgetboard-dev/budgetboard/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CreateExpenseRequest struct {
	Amount      *decimal.Decimal `json:"amount" binding:"required"`
	Description string           `json:"description" binding:"required"`
	Category    string           `json:"category"`
	TaskID      *uint            `json:"task_id"`
	Date        *string          `json:"date"`
}

type UpdateExpenseRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	TaskID      *uint            `json:"task_id"`
	Date        *string          `json:"date"`
}

type ExpenseResponse struct {
	ID            uint            `json:"id"`
	ProjectID     uint            `json:"project_id"`
	TaskID        *uint           `json:"task_id"`
	TaskTitle     string          `json:"task_title,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	CreatedBy     uint            `json:"created_by"`
	CreatedByName string          `json:"created_by_name,omitempty"`
	Date          time.Time       `json:"date"`
	CreatedAt     time.Time       `json:"created_at"`
}

type CategorySummary struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

func expenseResponse(expense *models.Expense) ExpenseResponse {
	response := ExpenseResponse{
		ID:          expense.ID,
		ProjectID:   expense.ProjectID,
		TaskID:      expense.TaskID,
		Amount:      expense.Amount,
		Description: expense.Description,
		Category:    expense.Category,
		CreatedBy:   expense.CreatedBy,
		Date:        expense.Date,
		CreatedAt:   expense.CreatedAt,
	}

	if expense.Creator.ID != 0 {
		response.CreatedByName = expense.Creator.Name
	}

	if expense.Task != nil {
		response.TaskTitle = expense.Task.Title
	}

	return response
}

// ListExpenses returns the project's expenses with the live budget summary.
func ListExpenses(ctx *gin.Context) {
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

	var expenses []models.Expense

	err = db.DB.Preload("Creator").Preload("Task").
		Where("project_id = ?", projectID).
		Order("date DESC, created_at DESC").
		Find(&expenses).Error

	if err != nil {
		respondDBError(ctx, err)
		return
	}

	summary, err := budget.ProjectSummary(&project)

	if err != nil {
		respondDBError(ctx, err)
		return
	}

	response := make([]ExpenseResponse, 0, len(expenses))

	for i := range expenses {
		response = append(response, expenseResponse(&expenses[i]))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"expenses": response,
		"summary":  summary,
	})
}

func ListTaskExpenses(ctx *gin.Context) {
	taskID, err := utils.GetTaskID(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid task ID.", err)
		return
	}

	var expenses []models.Expense

	err = db.DB.Preload("Creator").
		Where("task_id = ?", taskID).
		Order("date DESC").
		Find(&expenses).Error

	if err != nil {
		respondDBError(ctx, err)
		return
	}

	response := make([]ExpenseResponse, 0, len(expenses))

	for i := range expenses {
		response = append(response, expenseResponse(&expenses[i]))
	}

	ctx.JSON(http.StatusOK, response)
}

func CreateExpense(ctx *gin.Context) {
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

	var req CreateExpenseRequest

	if err := ctx.BindJSON(&req); err != nil {
		respondError(ctx, http.StatusBadRequest, "Amount and description are required.", err)
		return
	}

	if !req.Amount.IsPositive() {
		respondError(ctx, http.StatusBadRequest, "Amount must be a positive number.", nil)
		return
	}

	expense := models.Expense{
		ProjectID:   projectID,
		TaskID:      req.TaskID,
		Amount:      *req.Amount,
		Description: req.Description,
		Category:    "General",
		CreatedBy:   currentUser.ID,
		Date:        time.Now(),
	}

	if req.Category != "" {
		expense.Category = req.Category
	}

	if req.Date != nil {
		date, err := utils.ParseDate(*req.Date)

		if err != nil {
			respondError(ctx, http.StatusBadRequest, "Invalid date.", err)
			return
		}

		expense.Date = date
	}

	if err := db.DB.Create(&expense).Error; err != nil {
		respondDBError(ctx, err)
		return
	}

	// Separate round trips after the insert commits. The warning is
	// at-most-once effort: any failure here is logged and the recorded
	// expense is still returned.
	var project models.Project

	if err := db.DB.First(&project, projectID).Error; err != nil {
		log.Printf("Budget check skipped for project %d: %v", projectID, err)
	} else if err := budget.CheckThreshold(&project); err != nil {
		log.Printf("Budget check failed for project %d: %v", projectID, err)
	}

	activity.Log(projectID, req.TaskID, &currentUser.ID,
		fmt.Sprintf("Added expense: %s (%s)", expense.Description, expense.Amount.String()), nil)
	BroadcastBoardRefresh(projectID)

	response := expenseResponse(&expense)
	response.CreatedByName = currentUser.Name

	ctx.JSON(http.StatusCreated, response)
}

func UpdateExpense(ctx *gin.Context) {
	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid project ID.", err)
		return
	}

	expenseID, err := utils.GetExpenseID(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid expense ID.", err)
		return
	}

	var req UpdateExpenseRequest

	if err := ctx.BindJSON(&req); err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid request", err)
		return
	}

	var expense models.Expense

	err = db.DB.Where("id = ? AND project_id = ?", expenseID, projectID).First(&expense).Error

	if err != nil {
		respondDBError(ctx, err)
		return
	}

	updates := make(map[string]interface{})

	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			respondError(ctx, http.StatusBadRequest, "Amount must be a positive number.", nil)
			return
		}
		updates["amount"] = *req.Amount
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.TaskID != nil {
		updates["task_id"] = *req.TaskID
	}
	if req.Date != nil {
		date, err := utils.ParseDate(*req.Date)

		if err != nil {
			respondError(ctx, http.StatusBadRequest, "Invalid date.", err)
			return
		}

		updates["date"] = date
	}

	if len(updates) > 0 {
		if err := db.DB.Model(&expense).Updates(updates).Error; err != nil {
			respondDBError(ctx, err)
			return
		}
	}

	if err := db.DB.Preload("Creator").Preload("Task").First(&expense, expense.ID).Error; err != nil {
		respondDBError(ctx, err)
		return
	}

	BroadcastBoardRefresh(projectID)

	ctx.JSON(http.StatusOK, expenseResponse(&expense))
}

func DeleteExpense(ctx *gin.Context) {
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

	expenseID, err := utils.GetExpenseID(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid expense ID.", err)
		return
	}

	var expense models.Expense

	err = db.DB.Where("id = ? AND project_id = ?", expenseID, projectID).First(&expense).Error

	if err != nil {
		respondDBError(ctx, err)
		return
	}

	if err := db.DB.Unscoped().Delete(&expense).Error; err != nil {
		respondDBError(ctx, err)
		return
	}

	activity.Log(projectID, nil, &currentUser.ID, "Deleted expense: "+expense.Description, nil)
	BroadcastBoardRefresh(projectID)

	ctx.JSON(http.StatusOK, gin.H{"message": "Expense deleted."})
}

// ExpenseCategorySummary groups the project's expenses by category, largest
// total first. Totals are decimal sums computed in Go, like the budget
// aggregate.
func ExpenseCategorySummary(ctx *gin.Context) {
	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid project ID.", err)
		return
	}

	var expenses []models.Expense

	err = db.DB.Select("category", "amount").
		Where("project_id = ?", projectID).
		Find(&expenses).Error

	if err != nil {
		respondDBError(ctx, err)
		return
	}

	totals := make(map[string]*CategorySummary)

	for _, expense := range expenses {
		entry, ok := totals[expense.Category]

		if !ok {
			entry = &CategorySummary{Category: expense.Category, Total: decimal.Zero}
			totals[expense.Category] = entry
		}

		entry.Total = entry.Total.Add(expense.Amount)
		entry.Count++
	}

	response := make([]CategorySummary, 0, len(totals))

	for _, entry := range totals {
		response = append(response, *entry)
	}

	sort.Slice(response, func(i, j int) bool {
		return response[i].Total.GreaterThan(response[j].Total)
	})

	ctx.JSON(http.StatusOK, response)
}

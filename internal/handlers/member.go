package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/budgetboard-dev/budgetboard/db"
	"github.com/budgetboard-dev/budgetboard/internal/activity"
	"github.com/budgetboard-dev/budgetboard/internal/models"
	"github.com/budgetboard-dev/budgetboard/internal/types"
	"github.com/budgetboard-dev/budgetboard/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InviteMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type MemberResponse struct {
	ID       uint      `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Avatar   string    `json:"avatar"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

func ListMembers(ctx *gin.Context) {
	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid project ID.", err)
		return
	}

	var memberships []models.ProjectMember

	err = db.DB.Preload("User").
		Where("project_id = ?", projectID).
		Order("joined_at").
		Find(&memberships).Error

	if err != nil {
		respondDBError(ctx, err)
		return
	}

	response := make([]MemberResponse, 0, len(memberships))

	for _, membership := range memberships {
		response = append(response, MemberResponse{
			ID:       membership.UserID,
			Name:     membership.User.Name,
			Email:    membership.User.Email,
			Avatar:   membership.User.Avatar,
			Role:     membership.Role,
			JoinedAt: membership.JoinedAt,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func InviteMember(ctx *gin.Context) {
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

	var req InviteMemberRequest

	if err := ctx.BindJSON(&req); err != nil {
		respondError(ctx, http.StatusBadRequest, "Email is required.", err)
		return
	}

	role := types.RoleViewer
	if types.IsAssignableRole(req.Role) {
		role = req.Role
	}

	var invited models.User

	err = db.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&invited).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(ctx, http.StatusNotFound, "No user found with this email address.", nil)
			return
		}
		respondDBError(ctx, err)
		return
	}

	var existing models.ProjectMember

	err = db.DB.Where("project_id = ? AND user_id = ?", projectID, invited.ID).First(&existing).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		respondDBError(ctx, err)
		return
	}

	// The upsert below would otherwise overwrite the owner's role and leave
	// the project with no owner.
	if err == nil && existing.Role == types.RoleOwner {
		respondError(ctx, http.StatusBadRequest, "The project owner's role cannot be changed.", nil)
		return
	}

	membership := models.ProjectMember{
		ProjectID: projectID,
		UserID:    invited.ID,
		Role:      role,
		JoinedAt:  time.Now(),
	}

	// Re-inviting an existing member just updates the role.
	err = db.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"role": role}),
	}).Create(&membership).Error

	if err != nil {
		respondDBError(ctx, err)
		return
	}

	notification := models.Notification{
		UserID:    invited.ID,
		ProjectID: &projectID,
		Type:      types.NotificationInvite,
		Message:   currentUser.Name + " invited you to join a project",
	}

	if err := db.DB.Create(&notification).Error; err != nil {
		respondDBError(ctx, err)
		return
	}

	activity.Log(projectID, nil, &currentUser.ID, "Invited "+invited.Name+" as "+role, nil)

	ctx.JSON(http.StatusCreated, MemberResponse{
		ID:       invited.ID,
		Name:     invited.Name,
		Email:    invited.Email,
		Avatar:   invited.Avatar,
		Role:     role,
		JoinedAt: membership.JoinedAt,
	})
}

func UpdateMemberRole(ctx *gin.Context) {
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

	memberID, err := utils.GetUserIDParam(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid user ID.", err)
		return
	}

	var req UpdateMemberRoleRequest

	if err := ctx.BindJSON(&req); err != nil || !types.IsAssignableRole(req.Role) {
		respondError(ctx, http.StatusBadRequest, "Invalid role.", err)
		return
	}

	var membership models.ProjectMember

	err = db.DB.Where("project_id = ? AND user_id = ?", projectID, memberID).First(&membership).Error

	if err != nil {
		respondDBError(ctx, err)
		return
	}

	if membership.Role == types.RoleOwner {
		respondError(ctx, http.StatusBadRequest, "The project owner's role cannot be changed.", nil)
		return
	}

	if err := db.DB.Model(&membership).Update("role", req.Role).Error; err != nil {
		respondDBError(ctx, err)
		return
	}

	activity.Log(projectID, nil, &currentUser.ID, "Updated member role to "+req.Role, nil)

	ctx.JSON(http.StatusOK, gin.H{"message": "Role updated."})
}

func RemoveMember(ctx *gin.Context) {
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

	memberID, err := utils.GetUserIDParam(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid user ID.", err)
		return
	}

	var membership models.ProjectMember

	err = db.DB.Where("project_id = ? AND user_id = ?", projectID, memberID).First(&membership).Error

	if err != nil {
		respondDBError(ctx, err)
		return
	}

	if membership.Role == types.RoleOwner {
		respondError(ctx, http.StatusBadRequest, "The project owner cannot be removed.", nil)
		return
	}

	// Hard delete so a later re-invite does not trip the unique index.
	if err := db.DB.Unscoped().Delete(&membership).Error; err != nil {
		respondDBError(ctx, err)
		return
	}

	activity.Log(projectID, nil, &currentUser.ID, "Removed a member from project", nil)

	ctx.JSON(http.StatusOK, gin.H{"message": "Member removed."})
}

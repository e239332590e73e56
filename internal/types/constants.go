package types

import (
	"os"
	"strings"
)

const ContextUserKey = "user"
const ContextProjectRoleKey = "project_role"

// Project member roles, strongest first.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

const (
	NotificationInvite        = "invite"
	NotificationTaskAssigned  = "task_assigned"
	NotificationOverdue       = "overdue"
	NotificationDueSoon       = "due_soon"
	NotificationBudgetWarning = "budget_warning"
)

// AssignableRoles are the roles an admin can grant when inviting or updating
// a member. The owner role is created with the project and never reassigned.
var AssignableRoles = []string{RoleAdmin, RoleEditor, RoleViewer}

var TaskStatuses = []string{TaskStatusTodo, TaskStatusInProgress, TaskStatusCompleted}

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	AllowedOrigins = initAllowedOrigins()
)

func initAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}

func IsAssignableRole(role string) bool {
	for _, r := range AssignableRoles {
		if r == role {
			return true
		}
	}
	return false
}

func IsTaskStatus(status string) bool {
	for _, s := range TaskStatuses {
		if s == status {
			return true
		}
	}
	return false
}

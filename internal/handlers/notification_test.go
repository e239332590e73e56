package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/budgetboard-dev/budgetboard/internal/handlers"
	"github.com/budgetboard-dev/budgetboard/internal/models"
	"github.com/budgetboard-dev/budgetboard/internal/testutil"
	"github.com/budgetboard-dev/budgetboard/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notify(t *testing.T, tc *testutil.TestContext, userID uint, projectID *uint, kind, message string) *models.Notification {
	t.Helper()

	notification := models.Notification{
		UserID:    userID,
		ProjectID: projectID,
		Type:      kind,
		Message:   message,
	}
	require.NoError(t, tc.DB.Create(&notification).Error)

	return &notification
}

func TestNotifications(t *testing.T) {
	tc := testutil.Setup(t)
	user := tc.CreateUser(t, "Notif User")
	other := tc.CreateUser(t, "Other User")
	project := tc.CreateProject(t, user, "0")

	first := notify(t, tc, user.ID, &project.ID, types.NotificationInvite, "You were invited")
	notify(t, tc, user.ID, nil, types.NotificationDueSoon, "Something is due")
	foreign := notify(t, tc, other.ID, nil, types.NotificationOverdue, "Not yours")

	t.Run("list shows own notifications with unread count", func(t *testing.T) {
		rr := tc.DoAs(t, user, "GET", "/api/notifications", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Notifications []handlers.NotificationResponse `json:"notifications"`
			UnreadCount   int                             `json:"unread_count"`
		}
		testutil.Decode(t, rr, &resp)

		require.Len(t, resp.Notifications, 2)
		assert.Equal(t, 2, resp.UnreadCount)

		for _, n := range resp.Notifications {
			if n.ID == first.ID {
				assert.Equal(t, project.Name, n.ProjectName)
			}
		}
	})

	t.Run("mark one read", func(t *testing.T) {
		rr := tc.DoAs(t, user, "PUT", fmt.Sprintf("/api/notifications/%d/read", first.ID), nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var reloaded models.Notification
		require.NoError(t, tc.DB.First(&reloaded, first.ID).Error)
		assert.True(t, reloaded.IsRead)
	})

	t.Run("cannot mark someone else's notification", func(t *testing.T) {
		rr := tc.DoAs(t, user, "PUT", fmt.Sprintf("/api/notifications/%d/read", foreign.ID), nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var reloaded models.Notification
		require.NoError(t, tc.DB.First(&reloaded, foreign.ID).Error)
		assert.False(t, reloaded.IsRead)
	})

	t.Run("read-all clears the unread count", func(t *testing.T) {
		rr := tc.DoAs(t, user, "PUT", "/api/notifications/read-all", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var count int64
		tc.DB.Model(&models.Notification{}).
			Where("user_id = ? AND is_read = ?", user.ID, false).
			Count(&count)
		assert.Zero(t, count)
	})

	t.Run("delete removes only own rows", func(t *testing.T) {
		rr := tc.DoAs(t, user, "DELETE", fmt.Sprintf("/api/notifications/%d", foreign.ID), nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var count int64
		tc.DB.Model(&models.Notification{}).Where("id = ?", foreign.ID).Count(&count)
		assert.Equal(t, int64(1), count)

		rr = tc.DoAs(t, user, "DELETE", fmt.Sprintf("/api/notifications/%d", first.ID), nil)
		require.Equal(t, http.StatusOK, rr.Code)

		tc.DB.Model(&models.Notification{}).Where("id = ?", first.ID).Count(&count)
		assert.Zero(t, count)
	})
}

func TestDashboard(t *testing.T) {
	tc := testutil.Setup(t)
	user := tc.CreateUser(t, "Dash User")

	funded := tc.CreateProject(t, user, "1000")
	tc.CreateProject(t, user, "0")

	soon := time.Now().Add(24 * time.Hour)
	farOff := time.Now().AddDate(0, 0, 30)

	for _, task := range []models.Task{
		{ProjectID: funded.ID, Title: "Due tomorrow", Status: types.TaskStatusTodo, Priority: types.PriorityHigh, DueDate: &soon},
		{ProjectID: funded.ID, Title: "Due next month", Status: types.TaskStatusTodo, Priority: types.PriorityLow, DueDate: &farOff},
		{ProjectID: funded.ID, Title: "Done already", Status: types.TaskStatusCompleted, Priority: types.PriorityLow, DueDate: &soon},
	} {
		require.NoError(t, tc.DB.Create(&task).Error)
	}

	expense := models.Expense{
		ProjectID:   funded.ID,
		Amount:      decimal.RequireFromString("800"),
		Description: "Most of it",
		Category:    "General",
		CreatedBy:   user.ID,
		Date:        time.Now(),
	}
	require.NoError(t, tc.DB.Create(&expense).Error)

	rr := tc.DoAs(t, user, "GET", "/api/notifications/dashboard", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		ProjectCount   int64                    `json:"project_count"`
		TasksDueSoon   []handlers.DueSoonTask   `json:"tasks_due_soon"`
		BudgetWarnings []handlers.BudgetWarning `json:"budget_warnings"`
	}
	testutil.Decode(t, rr, &resp)

	assert.Equal(t, int64(2), resp.ProjectCount)

	require.Len(t, resp.TasksDueSoon, 1)
	assert.Equal(t, "Due tomorrow", resp.TasksDueSoon[0].Title)
	assert.Equal(t, funded.Name, resp.TasksDueSoon[0].ProjectName)

	require.Len(t, resp.BudgetWarnings, 1)
	assert.Equal(t, funded.Name, resp.BudgetWarnings[0].Name)
	assert.Equal(t, "800", resp.BudgetWarnings[0].Used.String())
}

package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/budgetboard-dev/budgetboard/internal/handlers"
	"github.com/budgetboard-dev/budgetboard/internal/models"
	"github.com/budgetboard-dev/budgetboard/internal/testutil"
	"github.com/budgetboard-dev/budgetboard/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProject(t *testing.T) {
	tc := testutil.Setup(t)
	owner := tc.CreateUser(t, "Project Owner")

	t.Run("creator becomes owner in the same transaction", func(t *testing.T) {
		body := map[string]interface{}{
			"name":         "Website Redesign",
			"total_budget": "500000",
			"currency":     "RWF",
		}

		rr := tc.DoAs(t, owner, "POST", "/api/projects", body)
		require.Equal(t, http.StatusCreated, rr.Code)

		var resp handlers.ProjectResponse
		testutil.Decode(t, rr, &resp)

		assert.Equal(t, "Website Redesign", resp.Name)
		assert.Equal(t, types.RoleOwner, resp.UserRole)
		assert.Equal(t, owner.ID, resp.OwnerID)
		assert.Equal(t, int64(1), resp.MemberCount)

		var membership models.ProjectMember
		err := tc.DB.Where("project_id = ? AND user_id = ?", resp.ID, owner.ID).First(&membership).Error
		require.NoError(t, err)
		assert.Equal(t, types.RoleOwner, membership.Role)
	})

	t.Run("name is required", func(t *testing.T) {
		rr := tc.DoAs(t, owner, "POST", "/api/projects", map[string]interface{}{"total_budget": "100"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("negative budget rejected", func(t *testing.T) {
		body := map[string]interface{}{"name": "Bad Budget", "total_budget": "-5"}

		rr := tc.DoAs(t, owner, "POST", "/api/projects", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("defaults applied", func(t *testing.T) {
		rr := tc.DoAs(t, owner, "POST", "/api/projects", map[string]interface{}{"name": "Bare"})
		require.Equal(t, http.StatusCreated, rr.Code)

		var resp handlers.ProjectResponse
		testutil.Decode(t, rr, &resp)
		assert.Equal(t, "RWF", resp.Currency)
		assert.Equal(t, "active", resp.Status)
		assert.True(t, resp.TotalBudget.IsZero())
	})
}

func TestListProjects(t *testing.T) {
	tc := testutil.Setup(t)
	owner := tc.CreateUser(t, "List Owner")
	outsider := tc.CreateUser(t, "Out Sider")
	viewer := tc.CreateUser(t, "View Only")

	project := tc.CreateProject(t, owner, "100000")
	tc.AddMember(t, project, viewer, types.RoleViewer)
	tc.CreateProject(t, owner, "0")

	t.Run("only membership projects are listed", func(t *testing.T) {
		rr := tc.DoAs(t, owner, "GET", "/api/projects", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp []handlers.ProjectResponse
		testutil.Decode(t, rr, &resp)
		assert.Len(t, resp, 2)

		rr = tc.DoAs(t, viewer, "GET", "/api/projects", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		testutil.Decode(t, rr, &resp)
		require.Len(t, resp, 1)
		assert.Equal(t, project.ID, resp[0].ID)
		assert.Equal(t, types.RoleViewer, resp[0].UserRole)
	})

	t.Run("no memberships yields an empty list", func(t *testing.T) {
		rr := tc.DoAs(t, outsider, "GET", "/api/projects", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp []handlers.ProjectResponse
		testutil.Decode(t, rr, &resp)
		assert.Empty(t, resp)
	})
}

func TestProjectAccessControl(t *testing.T) {
	tc := testutil.Setup(t)
	owner := tc.CreateUser(t, "Acl Owner")
	admin := tc.CreateUser(t, "Acl Admin")
	viewer := tc.CreateUser(t, "Acl Viewer")
	outsider := tc.CreateUser(t, "Acl Outsider")

	project := tc.CreateProject(t, owner, "100000")
	tc.AddMember(t, project, admin, types.RoleAdmin)
	tc.AddMember(t, project, viewer, types.RoleViewer)

	base := fmt.Sprintf("/api/projects/%d", project.ID)

	t.Run("non-member cannot see the project", func(t *testing.T) {
		rr := tc.DoAs(t, outsider, "GET", base, nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Contains(t, rr.Body.String(), "You are not a member of this project.")
	})

	t.Run("viewer cannot update settings", func(t *testing.T) {
		rr := tc.DoAs(t, viewer, "PUT", base, map[string]interface{}{"name": "Hijacked"})
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Contains(t, rr.Body.String(), "Insufficient permissions. Required: owner or admin")
	})

	t.Run("admin can update settings", func(t *testing.T) {
		rr := tc.DoAs(t, admin, "PUT", base, map[string]interface{}{"description": "refreshed"})
		require.Equal(t, http.StatusOK, rr.Code)

		var resp handlers.ProjectResponse
		testutil.Decode(t, rr, &resp)
		assert.Equal(t, "refreshed", resp.Description)
	})

	t.Run("admin cannot delete the project", func(t *testing.T) {
		rr := tc.DoAs(t, admin, "DELETE", base, nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("owner deletes and children cascade", func(t *testing.T) {
		task := models.Task{ProjectID: project.ID, Title: "Doomed", Status: types.TaskStatusTodo, Priority: types.PriorityMedium}
		require.NoError(t, tc.DB.Create(&task).Error)

		rr := tc.DoAs(t, owner, "DELETE", base, nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var count int64
		tc.DB.Model(&models.ProjectMember{}).Where("project_id = ?", project.ID).Count(&count)
		assert.Zero(t, count)

		tc.DB.Model(&models.Task{}).Where("project_id = ?", project.ID).Count(&count)
		assert.Zero(t, count)
	})
}

func TestUpdateProject(t *testing.T) {
	tc := testutil.Setup(t)
	owner := tc.CreateUser(t, "Upd Owner")
	project := tc.CreateProject(t, owner, "100000")

	base := fmt.Sprintf("/api/projects/%d", project.ID)

	t.Run("omitted fields keep their values", func(t *testing.T) {
		rr := tc.DoAs(t, owner, "PUT", base, map[string]interface{}{"status": "completed"})
		require.Equal(t, http.StatusOK, rr.Code)

		var resp handlers.ProjectResponse
		testutil.Decode(t, rr, &resp)
		assert.Equal(t, "completed", resp.Status)
		assert.Equal(t, project.Name, resp.Name)
		assert.Equal(t, "100000", resp.TotalBudget.String())
	})

	t.Run("due date accepts plain dates", func(t *testing.T) {
		rr := tc.DoAs(t, owner, "PUT", base, map[string]interface{}{"due_date": "2026-12-31"})
		require.Equal(t, http.StatusOK, rr.Code)

		var resp handlers.ProjectResponse
		testutil.Decode(t, rr, &resp)
		require.NotNil(t, resp.DueDate)
		assert.Equal(t, 2026, resp.DueDate.Year())
	})

	t.Run("garbage due date rejected", func(t *testing.T) {
		rr := tc.DoAs(t, owner, "PUT", base, map[string]interface{}{"due_date": "soon"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestMembers(t *testing.T) {
	tc := testutil.Setup(t)
	owner := tc.CreateUser(t, "Mem Owner")
	invitee := tc.CreateUser(t, "New Member")
	project := tc.CreateProject(t, owner, "0")

	base := fmt.Sprintf("/api/projects/%d/members", project.ID)

	t.Run("invite by email", func(t *testing.T) {
		body := map[string]string{"email": invitee.Email, "role": types.RoleEditor}

		rr := tc.DoAs(t, owner, "POST", base, body)
		require.Equal(t, http.StatusCreated, rr.Code)

		var resp handlers.MemberResponse
		testutil.Decode(t, rr, &resp)
		assert.Equal(t, invitee.ID, resp.ID)
		assert.Equal(t, types.RoleEditor, resp.Role)

		// The invited user gets a notification.
		var count int64
		tc.DB.Model(&models.Notification{}).
			Where("user_id = ? AND type = ?", invitee.ID, types.NotificationInvite).
			Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("unknown email is not found", func(t *testing.T) {
		rr := tc.DoAs(t, owner, "POST", base, map[string]string{"email": "nobody@example.com"})
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), "No user found with this email address.")
	})

	t.Run("re-invite updates the role instead of failing", func(t *testing.T) {
		body := map[string]string{"email": invitee.Email, "role": types.RoleViewer}

		rr := tc.DoAs(t, owner, "POST", base, body)
		require.Equal(t, http.StatusCreated, rr.Code)

		var membership models.ProjectMember
		require.NoError(t, tc.DB.Where("project_id = ? AND user_id = ?", project.ID, invitee.ID).First(&membership).Error)
		assert.Equal(t, types.RoleViewer, membership.Role)

		var count int64
		tc.DB.Model(&models.ProjectMember{}).Where("project_id = ?", project.ID).Count(&count)
		assert.Equal(t, int64(2), count)
	})

	t.Run("owner role cannot be reassigned", func(t *testing.T) {
		path := fmt.Sprintf("%s/%d", base, owner.ID)

		rr := tc.DoAs(t, owner, "PUT", path, map[string]string{"role": types.RoleViewer})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "The project owner's role cannot be changed.")
	})

	t.Run("owner cannot be removed", func(t *testing.T) {
		path := fmt.Sprintf("%s/%d", base, owner.ID)

		rr := tc.DoAs(t, owner, "DELETE", path, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("remove then re-invite works", func(t *testing.T) {
		path := fmt.Sprintf("%s/%d", base, invitee.ID)

		rr := tc.DoAs(t, owner, "DELETE", path, nil)
		require.Equal(t, http.StatusOK, rr.Code)

		rr = tc.DoAs(t, owner, "POST", base, map[string]string{"email": invitee.Email, "role": types.RoleEditor})
		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("inviting the owner's email cannot demote the owner", func(t *testing.T) {
		admin := tc.CreateUser(t, "Mem Admin")
		tc.AddMember(t, project, admin, types.RoleAdmin)

		rr := tc.DoAs(t, admin, "POST", base, map[string]string{"email": owner.Email, "role": types.RoleViewer})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "The project owner's role cannot be changed.")

		var membership models.ProjectMember
		require.NoError(t, tc.DB.Where("project_id = ? AND user_id = ?", project.ID, owner.ID).First(&membership).Error)
		assert.Equal(t, types.RoleOwner, membership.Role)

		// Owner-only routes still work for the owner afterwards.
		rr = tc.DoAs(t, owner, "DELETE", fmt.Sprintf("/api/projects/%d", project.ID), nil)
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

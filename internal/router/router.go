package router

import (
	"log/slog"
	"os"
	"time"

	"github.com/budgetboard-dev/budgetboard/internal/handlers"
	"github.com/budgetboard-dev/budgetboard/internal/middleware"
	"github.com/budgetboard-dev/budgetboard/internal/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(middleware.RequestLogger(slog.New(slog.NewTextHandler(os.Stdout, nil))))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws/:project_id", middleware.Authenticate(), middleware.RequireProjectRole("project_id"), handlers.WebSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.GET("/me", middleware.Authenticate(), handlers.Me)
			auth.PUT("/profile", middleware.Authenticate(), handlers.UpdateProfile)
		}

		projects := api.Group("/projects", middleware.Authenticate())
		{
			projects.GET("", handlers.ListProjects)
			projects.POST("", handlers.CreateProject)

			// Each project-scoped route declares where its project id comes
			// from and the minimum roles allowed to use it.
			scoped := projects.Group("/:project_id")
			{
				member := middleware.RequireProjectRole("project_id")
				editor := middleware.RequireProjectRole("project_id", types.RoleOwner, types.RoleAdmin, types.RoleEditor)
				admin := middleware.RequireProjectRole("project_id", types.RoleOwner, types.RoleAdmin)
				owner := middleware.RequireProjectRole("project_id", types.RoleOwner)

				scoped.GET("", member, handlers.GetProject)
				scoped.PUT("", admin, handlers.UpdateProject)
				scoped.DELETE("", owner, handlers.DeleteProject)

				scoped.GET("/members", member, handlers.ListMembers)
				scoped.POST("/members", admin, handlers.InviteMember)
				scoped.PUT("/members/:user_id", admin, handlers.UpdateMemberRole)
				scoped.DELETE("/members/:user_id", admin, handlers.RemoveMember)

				scoped.GET("/activities", member, handlers.ListActivities)

				scoped.GET("/tasks", member, handlers.ListTasks)
				scoped.POST("/tasks", editor, handlers.CreateTask)
				scoped.PUT("/tasks/:task_id", editor, handlers.UpdateTask)
				scoped.DELETE("/tasks/:task_id", admin, handlers.DeleteTask)

				scoped.GET("/tasks/:task_id/comments", member, handlers.ListComments)
				scoped.POST("/tasks/:task_id/comments", member, handlers.CreateComment)
				scoped.GET("/tasks/:task_id/expenses", member, handlers.ListTaskExpenses)

				scoped.GET("/expenses", member, handlers.ListExpenses)
				scoped.POST("/expenses", editor, handlers.CreateExpense)
				scoped.PUT("/expenses/:expense_id", editor, handlers.UpdateExpense)
				scoped.DELETE("/expenses/:expense_id", admin, handlers.DeleteExpense)
				scoped.GET("/expenses/summary/categories", member, handlers.ExpenseCategorySummary)
			}
		}

		notifications := api.Group("/notifications", middleware.Authenticate())
		{
			notifications.GET("", handlers.ListNotifications)
			notifications.GET("/dashboard", handlers.Dashboard)
			notifications.PUT("/read-all", handlers.MarkAllNotificationsRead)
			notifications.PUT("/:id/read", handlers.MarkNotificationRead)
			notifications.DELETE("/:id", handlers.DeleteNotification)
		}
	}

	return r
}

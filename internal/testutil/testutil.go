package testutil

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/budgetboard-dev/budgetboard/db"
	"github.com/budgetboard-dev/budgetboard/internal/auth"
	"github.com/budgetboard-dev/budgetboard/internal/models"
	"github.com/budgetboard-dev/budgetboard/internal/router"
	"github.com/budgetboard-dev/budgetboard/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const TestPassword = "password123"

type TestContext struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// Setup creates an in-memory SQLite database, points the global handle at it
// and builds the full router against it.
func Setup(t *testing.T) *TestContext {
	t.Helper()

	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret-key")

	if err := auth.InitJWTSecret(); err != nil {
		t.Fatalf("failed to init JWT secret: %v", err)
	}

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// Cascade and SET NULL rules need the pragma on in SQLite.
	database.Exec("PRAGMA foreign_keys = ON")

	err = database.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.Expense{},
		&models.Comment{},
		&models.Activity{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = database

	t.Cleanup(func() {
		sqlDB, err := database.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return &TestContext{DB: database, Router: router.NewRouter()}
}

// CreateUser inserts a user with a unique email and the shared test password.
func (tc *TestContext) CreateUser(t *testing.T, name string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:         name,
		Email:        "test-" + uuid.NewString()[:8] + "@example.com",
		PasswordHash: string(hash),
		Avatar:       "TU",
	}

	if err := tc.DB.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateProject inserts a project plus its owner membership.
func (tc *TestContext) CreateProject(t *testing.T, owner *models.User, totalBudget string) *models.Project {
	t.Helper()

	budget, err := decimal.NewFromString(totalBudget)
	if err != nil {
		t.Fatalf("invalid budget %q: %v", totalBudget, err)
	}

	project := &models.Project{
		Name:        "Test Project " + uuid.NewString()[:8],
		TotalBudget: budget,
		Currency:    "RWF",
		Status:      "active",
		OwnerID:     owner.ID,
	}

	if err := tc.DB.Create(project).Error; err != nil {
		t.Fatalf("failed to create test project: %v", err)
	}

	tc.AddMember(t, project, owner, types.RoleOwner)

	return project
}

func (tc *TestContext) AddMember(t *testing.T, project *models.Project, user *models.User, role string) {
	t.Helper()

	membership := models.ProjectMember{
		ProjectID: project.ID,
		UserID:    user.ID,
		Role:      role,
		JoinedAt:  time.Now().UTC(),
	}

	if err := tc.DB.Create(&membership).Error; err != nil {
		t.Fatalf("failed to add member: %v", err)
	}
}

func (tc *TestContext) Token(t *testing.T, user *models.User) string {
	t.Helper()

	token, err := auth.GenerateJWT(user.ID, user.Email)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	return token
}

// Do performs a JSON request against the router, optionally authenticated.
func (tc *TestContext) Do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	tc.Router.ServeHTTP(rr, req)

	return rr
}

// DoAs wraps Do with a fresh token for the given user.
func (tc *TestContext) DoAs(t *testing.T, user *models.User, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return tc.Do(t, method, path, body, tc.Token(t, user))
}

func Decode(t *testing.T, rr *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taker-api/internal/constants"
	"github.com/yukikurage/taker-api/internal/database"
	"github.com/yukikurage/taker-api/internal/models"
	"github.com/yukikurage/taker-api/internal/repository"
	"github.com/yukikurage/taker-api/internal/services"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "supersecret"

func init() {
	gin.SetMode(gin.TestMode)
}

type handlerTestEnv struct {
	db          *gorm.DB
	access      *services.AccessService
	assignments *services.AssignmentService
	authService *services.AuthService
	auth        *AuthHandler
	users       *UserHandler
	projects    *ProjectHandler
	tasks       *TaskHandler
	mailer      *capturingMailer
}

type capturingMailer struct {
	sent []string
}

func (m *capturingMailer) SendPasswordChanged(_ context.Context, to, _ string) error {
	m.sent = append(m.sent, to)
	return nil
}

func setupHandlerTestEnv(t *testing.T) *handlerTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.Models()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	positionRepo := repository.NewPositionRepository(db)

	mailer := &capturingMailer{}
	access := services.NewAccessService(userRepo, projectRepo, assignmentRepo, taskRepo)
	assignments := services.NewAssignmentService(userRepo, projectRepo, assignmentRepo)
	authService := services.NewAuthService(userRepo, positionRepo, mailer)

	return &handlerTestEnv{
		db:          db,
		access:      access,
		assignments: assignments,
		authService: authService,
		auth:        NewAuthHandler(authService),
		users:       NewUserHandler(services.NewUserService(userRepo, projectRepo, assignmentRepo, taskRepo, positionRepo, access, assignments)),
		projects:    NewProjectHandler(services.NewProjectService(projectRepo, assignmentRepo)),
		tasks:       NewTaskHandler(services.NewTaskService(taskRepo, userRepo, projectRepo, access, nil)),
		mailer:      mailer,
	}
}

func (e *handlerTestEnv) createUser(t *testing.T, name string, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		FullName:     name,
		Email:        name + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *handlerTestEnv) createProject(t *testing.T, name string) *models.Project {
	t.Helper()
	project := &models.Project{Name: name, Status: "Active"}
	require.NoError(t, e.db.Create(project).Error)
	return project
}

func (e *handlerTestEnv) assign(t *testing.T, project *models.Project, user *models.User, role models.ProjectRole) {
	t.Helper()
	_, err := e.assignments.Assign(project.ID, user.ID, role)
	require.NoError(t, err)
}

func (e *handlerTestEnv) createTask(t *testing.T, title string, assignee *models.User) *models.Task {
	t.Helper()
	task := &models.Task{Title: title, Status: models.TaskStatusNeedToStart, AssigneeID: &assignee.ID}
	require.NoError(t, e.db.Create(task).Error)
	return task
}

// actorContext builds a test context as if RequireAuth and LoadActor had run.
func actorContext(method, url string, body any, actor *models.User) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()

	var req *http.Request
	if body != nil {
		payload, _ := json.Marshal(body)
		req = httptest.NewRequest(method, url, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if actor != nil {
		c.Set(constants.ContextKeyUserID, actor.ID)
		c.Set(constants.ContextKeyActor, actor)
	}
	return c, w
}

func withParam(c *gin.Context, key, value string) *gin.Context {
	c.Params = append(c.Params, gin.Param{Key: key, Value: value})
	return c
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func patchJSON(r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPatch, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func serveRequest(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

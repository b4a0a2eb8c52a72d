package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taker-api/internal/database"
	"github.com/yukikurage/taker-api/internal/models"
	"github.com/yukikurage/taker-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "supersecret"

type serviceTestEnv struct {
	db          *gorm.DB
	userRepo    repository.UserRepository
	taskRepo    repository.TaskRepository
	access      *AccessService
	assignments *AssignmentService
	auth        *AuthService
	users       *UserService
	projects    *ProjectService
	tasks       *TaskService
	mailer      *recordingMailer
}

func setupServiceTestEnv(t *testing.T) *serviceTestEnv {
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

	for _, name := range models.DefaultPositions {
		_, err := positionRepo.Ensure(name)
		require.NoError(t, err)
	}

	mailer := &recordingMailer{}
	access := NewAccessService(userRepo, projectRepo, assignmentRepo, taskRepo)
	assignments := NewAssignmentService(userRepo, projectRepo, assignmentRepo)

	return &serviceTestEnv{
		db:          db,
		userRepo:    userRepo,
		taskRepo:    taskRepo,
		access:      access,
		assignments: assignments,
		auth:        NewAuthService(userRepo, positionRepo, mailer),
		users:       NewUserService(userRepo, projectRepo, assignmentRepo, taskRepo, positionRepo, access, assignments),
		projects:    NewProjectService(projectRepo, assignmentRepo),
		tasks:       NewTaskService(taskRepo, userRepo, projectRepo, access, nil),
		mailer:      mailer,
	}
}

func (e *serviceTestEnv) createUser(t *testing.T, name string, role models.Role) *models.User {
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

func (e *serviceTestEnv) createProject(t *testing.T, name string) *models.Project {
	t.Helper()
	project := &models.Project{Name: name, Status: "Active"}
	require.NoError(t, e.db.Create(project).Error)
	return project
}

func (e *serviceTestEnv) assign(t *testing.T, project *models.Project, user *models.User, role models.ProjectRole) {
	t.Helper()
	_, err := e.assignments.Assign(project.ID, user.ID, role)
	require.NoError(t, err)
}

func (e *serviceTestEnv) createTask(t *testing.T, title string, assignee *models.User) *models.Task {
	t.Helper()
	task := &models.Task{Title: title, Status: models.TaskStatusNeedToStart}
	if assignee != nil {
		task.AssigneeID = &assignee.ID
	}
	require.NoError(t, e.db.Create(task).Error)
	return task
}

type recordingMailer struct {
	sent []string
	err  error
}

func (m *recordingMailer) SendPasswordChanged(_ context.Context, to, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/taker-api/internal/constants"
	"github.com/yukikurage/taker-api/internal/dto"
	"github.com/yukikurage/taker-api/internal/middleware"
	"github.com/yukikurage/taker-api/internal/models"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	env     *handlerTestEnv
	manager *models.User
	leader  *models.User
	memberA *models.User
	memberB *models.User
	project *models.Project
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	t := suite.T()
	suite.env = setupHandlerTestEnv(t)

	suite.manager = suite.env.createUser(t, "manager", models.RoleManager)
	suite.leader = suite.env.createUser(t, "leader", models.RoleTeamLeader)
	suite.memberA = suite.env.createUser(t, "alice", models.RoleMember)
	suite.memberB = suite.env.createUser(t, "bob", models.RoleMember)

	suite.project = suite.env.createProject(t, "Apollo")
	suite.env.assign(t, suite.project, suite.manager, models.ProjectRoleManager)
	suite.env.assign(t, suite.project, suite.leader, models.ProjectRoleTeamLeader)
	suite.env.assign(t, suite.project, suite.memberA, models.ProjectRoleTeamMember)
	suite.env.assign(t, suite.project, suite.memberB, models.ProjectRoleTeamMember)
}

// router mounts the mutation routes behind the same middleware chain as the server
func (suite *TaskHandlerTestSuite) router(actor *models.User) *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	r.Use(func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, actor.ID)
		c.Next()
	})
	tasks := r.Group("/api/tasks", middleware.LoadActor(suite.env.access))
	tasks.PATCH("/:id/status", middleware.RequireTaskMutation(suite.env.access), suite.env.tasks.UpdateTaskStatus)
	tasks.DELETE("/:id", middleware.RequireTaskMutation(suite.env.access), suite.env.tasks.DeleteTask)
	return r
}

func (suite *TaskHandlerTestSuite) TestListTasks_MemberSeesOwnTasks() {
	suite.env.createTask(suite.T(), "alice task", suite.memberA)
	suite.env.createTask(suite.T(), "bob task", suite.memberB)

	c, w := actorContext(http.MethodGet, "/api/tasks", nil, suite.memberA)
	suite.env.tasks.ListTasks(c)

	suite.Require().Equal(http.StatusOK, w.Code)
	var response dto.TaskListResponse
	decodeJSON(suite.T(), w, &response)
	suite.Equal(int64(1), response.TotalCount)
	suite.Require().Len(response.Tasks, 1)
	suite.Equal("alice task", response.Tasks[0].Title)
	suite.Require().NotNil(response.Tasks[0].Assignee)
	suite.Equal("alice", response.Tasks[0].Assignee.FullName)
}

func (suite *TaskHandlerTestSuite) TestListTasks_LeaderFiltersByUser() {
	suite.env.createTask(suite.T(), "alice task", suite.memberA)
	suite.env.createTask(suite.T(), "bob task", suite.memberB)

	c, w := actorContext(http.MethodGet, fmt.Sprintf("/api/tasks?user_id=%d", suite.memberB.ID), nil, suite.leader)
	suite.env.tasks.ListTasks(c)

	suite.Require().Equal(http.StatusOK, w.Code)
	var response dto.TaskListResponse
	decodeJSON(suite.T(), w, &response)
	suite.Require().Len(response.Tasks, 1)
	suite.Equal("bob task", response.Tasks[0].Title)

	c, w = actorContext(http.MethodGet, fmt.Sprintf("/api/tasks?userId=%d", suite.memberA.ID), nil, suite.leader)
	suite.env.tasks.ListTasks(c)
	suite.Require().Equal(http.StatusOK, w.Code)
	decodeJSON(suite.T(), w, &response)
	suite.Require().Len(response.Tasks, 1)
	suite.Equal("alice task", response.Tasks[0].Title)

	c, w = actorContext(http.MethodGet, "/api/tasks?user_id=abc", nil, suite.leader)
	suite.env.tasks.ListTasks(c)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestListTasks_Unauthorized() {
	c, w := actorContext(http.MethodGet, "/api/tasks", nil, nil)
	suite.env.tasks.ListTasks(c)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	body := map[string]any{
		"title":      "New Task",
		"status":     "In Progress",
		"due_date":   "2030-06-01",
		"project_id": suite.project.ID,
	}
	c, w := actorContext(http.MethodPost, "/api/tasks", body, suite.memberA)
	suite.env.tasks.CreateTask(c)

	suite.Require().Equal(http.StatusCreated, w.Code)
	var response dto.TaskDTO
	decodeJSON(suite.T(), w, &response)
	suite.Equal("New Task", response.Title)
	suite.Equal(models.TaskStatusOngoing, response.Status)
	suite.Require().NotNil(response.AssigneeID)
	suite.Equal(suite.memberA.ID, *response.AssigneeID)
	suite.Require().NotNil(response.Project)
	suite.Equal("Apollo", response.Project.Name)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_InvalidRequest() {
	c, w := actorContext(http.MethodPost, "/api/tasks", map[string]any{"description": "no title"}, suite.memberA)
	suite.env.tasks.CreateTask(c)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestAssignTask() {
	body := map[string]any{"user_id": suite.memberB.ID, "title": "Review"}
	c, w := actorContext(http.MethodPost, "/api/tasks/assign", body, suite.leader)
	suite.env.tasks.AssignTask(c)

	suite.Require().Equal(http.StatusCreated, w.Code)
	var response dto.TaskDTO
	decodeJSON(suite.T(), w, &response)
	suite.Equal(models.TaskStatusNeedToStart, response.Status)
	suite.Equal(suite.memberB.ID, *response.AssigneeID)

	body = map[string]any{"user_id": 9999, "title": "Nobody"}
	c, w = actorContext(http.MethodPost, "/api/tasks/assign", body, suite.leader)
	suite.env.tasks.AssignTask(c)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestUpdateStatus_ThroughMutationGate() {
	task := suite.env.createTask(suite.T(), "alice task", suite.memberA)
	path := fmt.Sprintf("/api/tasks/%d/status", task.ID)

	w := patchJSON(suite.router(suite.memberB), path, map[string]string{"status": "done"})
	suite.Equal(http.StatusForbidden, w.Code)

	w = patchJSON(suite.router(suite.leader), path, map[string]string{"status": "done"})
	suite.Require().Equal(http.StatusOK, w.Code)
	var response dto.TaskDTO
	decodeJSON(suite.T(), w, &response)
	suite.Equal(models.TaskStatusCompleted, response.Status)

	w = patchJSON(suite.router(suite.manager), path, map[string]string{})
	suite.Require().Equal(http.StatusOK, w.Code)
	decodeJSON(suite.T(), w, &response)
	suite.Equal(models.TaskStatusNeedToStart, response.Status)

	w = patchJSON(suite.router(suite.manager), path, "done")
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask_ThroughMutationGate() {
	task := suite.env.createTask(suite.T(), "alice task", suite.memberA)
	path := fmt.Sprintf("/api/tasks/%d", task.ID)

	w := serveRequest(suite.router(suite.memberB), http.MethodDelete, path)
	suite.Equal(http.StatusForbidden, w.Code)

	w = serveRequest(suite.router(suite.manager), http.MethodDelete, path)
	suite.Equal(http.StatusOK, w.Code)

	w = serveRequest(suite.router(suite.manager), http.MethodDelete, path)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestSuggestTasks_WithoutAI() {
	c, w := actorContext(http.MethodPost, "/api/tasks/suggest", map[string]any{"text": "ship it tomorrow"}, suite.memberA)
	suite.env.tasks.SuggestTasks(c)
	suite.Equal(http.StatusServiceUnavailable, w.Code)

	c, w = actorContext(http.MethodPost, "/api/tasks/suggest", map[string]any{}, suite.memberA)
	suite.env.tasks.SuggestTasks(c)
	suite.Equal(http.StatusBadRequest, w.Code)
}

// TestTaskHandlerTestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taker-api/internal/models"
)

func taskTitles(tasks []models.Task) []string {
	titles := make([]string, len(tasks))
	for i, task := range tasks {
		titles[i] = task.Title
	}
	return titles
}

func TestTaskService_ListVisibleTasks(t *testing.T) {
	env := setupServiceTestEnv(t)
	admin := env.createUser(t, "admin", models.RoleAdmin)
	leader := env.createUser(t, "leader", models.RoleTeamLeader)
	me := env.createUser(t, "me", models.RoleMember)
	peer := env.createUser(t, "peer", models.RoleMember)

	project := env.createProject(t, "Apollo")
	env.assign(t, project, leader, models.ProjectRoleTeamLeader)
	env.assign(t, project, me, models.ProjectRoleTeamMember)
	env.assign(t, project, peer, models.ProjectRoleTeamMember)

	env.createTask(t, "mine", me)
	env.createTask(t, "theirs", peer)
	env.createTask(t, "orphan", nil)

	tasks, total, err := env.tasks.ListVisibleTasks(me, ListTasksInput{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, []string{"mine"}, taskTitles(tasks))

	// Filtering on someone outside the scope narrows to nothing
	tasks, _, err = env.tasks.ListVisibleTasks(me, ListTasksInput{AssigneeID: &peer.ID})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	tasks, _, err = env.tasks.ListVisibleTasks(leader, ListTasksInput{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"mine", "theirs"}, taskTitles(tasks))

	tasks, _, err = env.tasks.ListVisibleTasks(leader, ListTasksInput{AssigneeID: &peer.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"theirs"}, taskTitles(tasks))

	tasks, total, err = env.tasks.ListVisibleTasks(admin, ListTasksInput{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, tasks, 3)

	tasks, total, err = env.tasks.ListVisibleTasks(nil, ListTasksInput{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, tasks)
}

func TestTaskService_ListOrdersByDueDateThenID(t *testing.T) {
	env := setupServiceTestEnv(t)
	admin := env.createUser(t, "admin", models.RoleAdmin)

	for _, input := range []CreateTaskInput{
		{Title: "undated"},
		{Title: "later", DueDate: "2030-05-01"},
		{Title: "sooner", DueDate: "2030-01-01"},
	} {
		_, err := env.tasks.CreateTask(admin, input)
		require.NoError(t, err)
	}

	tasks, _, err := env.tasks.ListVisibleTasks(admin, ListTasksInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{"sooner", "later", "undated"}, taskTitles(tasks))

	tasks, total, err := env.tasks.ListVisibleTasks(admin, ListTasksInput{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"undated"}, taskTitles(tasks))
}

func TestTaskService_CreateTask(t *testing.T) {
	env := setupServiceTestEnv(t)
	me := env.createUser(t, "me", models.RoleMember)
	other := env.createUser(t, "other", models.RoleMember)
	project := env.createProject(t, "Apollo")

	task, err := env.tasks.CreateTask(me, CreateTaskInput{Title: "  Write report ", Status: "In Progress", DueDate: "2030-02-03", ProjectID: &project.ID})
	require.NoError(t, err)
	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, models.TaskStatusOngoing, task.Status)
	require.NotNil(t, task.AssigneeID)
	assert.Equal(t, me.ID, *task.AssigneeID)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2030-02-03", task.DueDate.Format("2006-01-02"))
	require.NotNil(t, task.Project)
	assert.Equal(t, "Apollo", task.Project.Name)

	task, err = env.tasks.CreateTask(me, CreateTaskInput{Title: "handoff", AssigneeID: &other.ID})
	require.NoError(t, err)
	assert.Equal(t, other.ID, *task.AssigneeID)
	assert.Equal(t, models.TaskStatusNeedToStart, task.Status)

	missing, missingProject := uint64(9999), uint64(8888)
	task, err = env.tasks.CreateTask(me, CreateTaskInput{Title: "fallback", AssigneeID: &missing, ProjectID: &missingProject, DueDate: "next week"})
	require.NoError(t, err)
	assert.Equal(t, me.ID, *task.AssigneeID)
	assert.Nil(t, task.ProjectID)
	assert.Nil(t, task.DueDate)

	_, err = env.tasks.CreateTask(me, CreateTaskInput{Title: " "})
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = env.tasks.CreateTask(nil, CreateTaskInput{Title: "ghost"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestTaskService_AssignTask(t *testing.T) {
	env := setupServiceTestEnv(t)
	leader := env.createUser(t, "leader", models.RoleTeamLeader)
	member := env.createUser(t, "member", models.RoleMember)

	task, err := env.tasks.AssignTask(leader, AssignTaskInput{UserID: member.ID, Title: "Review PR", DueDate: "2030-01-10"})
	require.NoError(t, err)
	assert.Equal(t, member.ID, *task.AssigneeID)
	assert.Equal(t, models.TaskStatusNeedToStart, task.Status)
	require.NotNil(t, task.Assignee)
	assert.Equal(t, "member", task.Assignee.FullName)

	_, err = env.tasks.AssignTask(leader, AssignTaskInput{UserID: 9999, Title: "nobody"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestTaskService_UpdateTaskStatus(t *testing.T) {
	env := setupServiceTestEnv(t)
	manager := env.createUser(t, "manager", models.RoleManager)
	me := env.createUser(t, "me", models.RoleMember)
	peer := env.createUser(t, "peer", models.RoleMember)

	project := env.createProject(t, "Apollo")
	env.assign(t, project, manager, models.ProjectRoleManager)
	env.assign(t, project, me, models.ProjectRoleTeamMember)
	env.assign(t, project, peer, models.ProjectRoleTeamMember)

	task := env.createTask(t, "mine", me)

	updated, err := env.tasks.UpdateTaskStatus(me, task.ID, "Done")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, updated.Status)

	_, err = env.tasks.UpdateTaskStatus(peer, task.ID, "ongoing")
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err = env.tasks.UpdateTaskStatus(manager, task.ID, "  yet to start ")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusNeedToStart, updated.Status)

	_, err = env.tasks.UpdateTaskStatus(nil, task.ID, "ongoing")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = env.tasks.UpdateTaskStatus(me, 9999, "ongoing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskService_DeleteTask(t *testing.T) {
	env := setupServiceTestEnv(t)
	me := env.createUser(t, "me", models.RoleMember)
	peer := env.createUser(t, "peer", models.RoleMember)
	task := env.createTask(t, "mine", me)

	assert.ErrorIs(t, env.tasks.DeleteTask(peer, task.ID), ErrTaskPermissionDenied)
	require.NoError(t, env.tasks.DeleteTask(me, task.ID))
	assert.ErrorIs(t, env.tasks.DeleteTask(me, task.ID), ErrNotFound)
}

func TestTaskService_SuggestTasksWithoutAI(t *testing.T) {
	env := setupServiceTestEnv(t)

	_, err := env.tasks.SuggestTasks(context.Background(), "ship the release tomorrow")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestParseGeneratedTasks(t *testing.T) {
	reply := "```json\n[{\"title\":\"Ship\",\"description\":\"cut the release\",\"status\":\"ongoing\",\"due_date\":\"2030-01-02T00:00:00Z\"},{\"title\":\"Plan\",\"status\":\"need_to_start\",\"due_date\":null}]\n```"

	tasks, err := parseGeneratedTasks(reply)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Ship", tasks[0].Title)
	assert.Equal(t, models.TaskStatusOngoing, tasks[0].Status)
	require.NotNil(t, tasks[0].DueDate)
	assert.Equal(t, 2030, tasks[0].DueDate.Year())
	assert.Nil(t, tasks[1].DueDate)

	tasks, err = parseGeneratedTasks("[]")
	require.NoError(t, err)
	assert.Empty(t, tasks)

	_, err = parseGeneratedTasks("Sorry, I cannot help with that.")
	assert.Error(t, err)
}

func TestNewAIService_RequiresKey(t *testing.T) {
	assert.Nil(t, NewAIService("  "))
	assert.NotNil(t, NewAIService("sk-test"))
}

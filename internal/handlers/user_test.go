package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/taker-api/internal/dto"
	"github.com/yukikurage/taker-api/internal/models"
)

type UserHandlerTestSuite struct {
	suite.Suite
	env     *handlerTestEnv
	admin   *models.User
	manager *models.User
	leader  *models.User
	member  *models.User
	peer    *models.User
	apollo  *models.Project
}

func (s *UserHandlerTestSuite) SetupTest() {
	t := s.T()
	s.env = setupHandlerTestEnv(t)

	s.admin = s.env.createUser(t, "admin", models.RoleAdmin)
	s.manager = s.env.createUser(t, "manager", models.RoleManager)
	s.leader = s.env.createUser(t, "leader", models.RoleTeamLeader)
	s.member = s.env.createUser(t, "member", models.RoleMember)
	s.peer = s.env.createUser(t, "peer", models.RoleMember)

	s.apollo = s.env.createProject(t, "Apollo")
	s.env.assign(t, s.apollo, s.manager, models.ProjectRoleManager)
	s.env.assign(t, s.apollo, s.leader, models.ProjectRoleTeamLeader)
	s.env.assign(t, s.apollo, s.member, models.ProjectRoleTeamMember)
}

func (s *UserHandlerTestSuite) TestListUsers_AdminSeesEveryone() {
	c, w := actorContext(http.MethodGet, "/api/users?limit=2", nil, s.admin)
	s.env.users.ListUsers(c)

	s.Require().Equal(http.StatusOK, w.Code)
	var response dto.UserListResponse
	decodeJSON(s.T(), w, &response)
	s.Equal(int64(5), response.Pagination.Total)
	s.Equal(2, response.Pagination.Limit)
	s.Len(response.Users, 2)
}

func (s *UserHandlerTestSuite) TestListUsers_MemberSeesCoAssigned() {
	c, w := actorContext(http.MethodGet, "/api/users", nil, s.member)
	s.env.users.ListUsers(c)

	s.Require().Equal(http.StatusOK, w.Code)
	var response dto.UserListResponse
	decodeJSON(s.T(), w, &response)

	names := []string{}
	for _, u := range response.Users {
		names = append(names, u.FullName)
	}
	s.Equal([]string{"manager", "leader", "member"}, names)
	s.Equal("Apollo", response.Users[2].CurrentProject)
	s.Equal("manager", response.Users[2].ManagerName)
}

func (s *UserHandlerTestSuite) TestGetUser() {
	c, w := actorContext(http.MethodGet, "/api/users/x", nil, s.member)
	s.env.users.GetUser(withParam(c, "id", fmt.Sprint(s.peer.ID)))
	s.Equal(http.StatusForbidden, w.Code)

	c, w = actorContext(http.MethodGet, "/api/users/x", nil, s.member)
	s.env.users.GetUser(withParam(c, "id", fmt.Sprint(s.leader.ID)))
	s.Equal(http.StatusOK, w.Code)

	c, w = actorContext(http.MethodGet, "/api/users/x", nil, s.member)
	s.env.users.GetUser(withParam(c, "id", "abc"))
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *UserHandlerTestSuite) TestCreateUser() {
	body := map[string]any{"full_name": "Fresh Hire", "email": "fresh@example.com", "role": "Team Leader"}
	c, w := actorContext(http.MethodPost, "/api/users", body, s.manager)
	s.env.users.CreateUser(c)

	s.Require().Equal(http.StatusCreated, w.Code)
	var response dto.UserSummaryDTO
	decodeJSON(s.T(), w, &response)
	s.Equal(models.RoleTeamLeader, response.Role)
	s.NotNil(response.LoginID)

	body = map[string]any{"full_name": "Root", "email": "root@example.com", "role": "admin"}
	c, w = actorContext(http.MethodPost, "/api/users", body, s.manager)
	s.env.users.CreateUser(c)
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *UserHandlerTestSuite) TestAssignRole() {
	c, w := actorContext(http.MethodPatch, "/api/users/x/role", map[string]any{"role": "manager"}, s.admin)
	s.env.users.AssignRole(withParam(c, "id", fmt.Sprint(s.peer.ID)))

	s.Require().Equal(http.StatusOK, w.Code)
	var response dto.UserSummaryDTO
	decodeJSON(s.T(), w, &response)
	s.Equal(models.RoleManager, response.Role)

	c, w = actorContext(http.MethodPatch, "/api/users/x/role", map[string]any{"role": "admin"}, s.manager)
	s.env.users.AssignRole(withParam(c, "id", fmt.Sprint(s.peer.ID)))
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *UserHandlerTestSuite) TestAssignToProject() {
	body := map[string]any{"project_id": s.apollo.ID, "project_role": "manager"}
	c, w := actorContext(http.MethodPost, "/api/users/x/assign-project", body, s.admin)
	s.env.users.AssignToProject(withParam(c, "id", fmt.Sprint(s.peer.ID)))
	s.Equal(http.StatusConflict, w.Code)

	body = map[string]any{"project_id": s.apollo.ID, "project_role": "team member"}
	c, w = actorContext(http.MethodPost, "/api/users/x/assign-project", body, s.admin)
	s.env.users.AssignToProject(withParam(c, "id", fmt.Sprint(s.peer.ID)))
	s.Require().Equal(http.StatusOK, w.Code)

	var response dto.UserSummaryDTO
	decodeJSON(s.T(), w, &response)
	s.Equal("Apollo", response.CurrentProject)

	body = map[string]any{"project_id": 9999}
	c, w = actorContext(http.MethodPost, "/api/users/x/assign-project", body, s.admin)
	s.env.users.AssignToProject(withParam(c, "id", fmt.Sprint(s.peer.ID)))
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *UserHandlerTestSuite) TestUpdateProfile() {
	body := map[string]any{"age": 29, "skills": "go"}
	c, w := actorContext(http.MethodPatch, "/api/users/x/profile", body, s.member)
	s.env.users.UpdateProfile(withParam(c, "id", fmt.Sprint(s.member.ID)))

	s.Require().Equal(http.StatusOK, w.Code)
	var response dto.UserSummaryDTO
	decodeJSON(s.T(), w, &response)
	s.Require().NotNil(response.Age)
	s.Equal(29, *response.Age)

	c, w = actorContext(http.MethodPatch, "/api/users/x/profile", body, s.peer)
	s.env.users.UpdateProfile(withParam(c, "id", fmt.Sprint(s.member.ID)))
	s.Equal(http.StatusForbidden, w.Code)

	c, w = actorContext(http.MethodPatch, "/api/users/x/profile", map[string]any{"age": -3}, s.member)
	s.env.users.UpdateProfile(withParam(c, "id", fmt.Sprint(s.member.ID)))
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *UserHandlerTestSuite) TestKickUser() {
	c, w := actorContext(http.MethodDelete, "/api/users/x", nil, s.leader)
	s.env.users.KickUser(withParam(c, "id", fmt.Sprint(s.member.ID)))
	s.Equal(http.StatusForbidden, w.Code)

	c, w = actorContext(http.MethodDelete, "/api/users/x", nil, s.manager)
	s.env.users.KickUser(withParam(c, "id", fmt.Sprint(s.member.ID)))
	s.Equal(http.StatusOK, w.Code)

	c, w = actorContext(http.MethodDelete, "/api/users/x", nil, s.manager)
	s.env.users.KickUser(withParam(c, "id", fmt.Sprint(s.member.ID)))
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *UserHandlerTestSuite) TestLeaderAndMemberListings() {
	c, w := actorContext(http.MethodGet, "/api/users/team-leader/projects", nil, s.leader)
	s.env.users.LeaderProjects(c)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"projects":["Apollo"]}`, w.Body.String())

	c, w = actorContext(http.MethodGet, "/api/users/team-leader/assignable?project=Apollo", nil, s.leader)
	s.env.users.AssignableUsers(c)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(fmt.Sprintf(`{"user_ids":[%d]}`, s.member.ID), w.Body.String())

	c, w = actorContext(http.MethodGet, "/api/users/team-leader/team-manager", nil, s.leader)
	s.env.users.LeaderManager(c)
	s.Require().Equal(http.StatusOK, w.Code)
	var manager dto.ContactDTO
	decodeJSON(s.T(), w, &manager)
	s.Equal("manager", manager.Name)

	c, w = actorContext(http.MethodGet, "/api/users/team-leader/team-members", nil, s.leader)
	s.env.users.LeaderTeamMembers(c)
	s.Require().Equal(http.StatusOK, w.Code)
	var teams struct {
		Teams []dto.ProjectMembersDTO `json:"teams"`
	}
	decodeJSON(s.T(), w, &teams)
	s.Require().Len(teams.Teams, 1)
	s.Require().Len(teams.Teams[0].Members, 1)
	s.Equal("member", teams.Teams[0].Members[0].FullName)

	c, w = actorContext(http.MethodGet, "/api/users/member/contacts", nil, s.member)
	s.env.users.MemberContacts(c)
	s.Require().Equal(http.StatusOK, w.Code)
	var contacts struct {
		Contacts []dto.ContactDTO `json:"contacts"`
	}
	decodeJSON(s.T(), w, &contacts)
	s.Len(contacts.Contacts, 2)

	c, w = actorContext(http.MethodGet, "/api/users/member/projects", nil, s.member)
	s.env.users.MemberProjects(c)
	s.JSONEq(`{"projects":["Apollo"]}`, w.Body.String())
}

func (s *UserHandlerTestSuite) TestRequiresActor() {
	c, w := actorContext(http.MethodGet, "/api/users", nil, nil)
	s.env.users.ListUsers(c)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func TestUserHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(UserHandlerTestSuite))
}

func TestUserHandler_CountUsers(t *testing.T) {
	env := setupHandlerTestEnv(t)
	env.createUser(t, "one", models.RoleMember)

	c, w := actorContext(http.MethodGet, "/api/users/count", nil, nil)
	env.users.CountUsers(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":1}`, w.Body.String())
}

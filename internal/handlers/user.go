package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taker-api/internal/dto"
	apierrors "github.com/yukikurage/taker-api/internal/errors"
	"github.com/yukikurage/taker-api/internal/middleware"
	"github.com/yukikurage/taker-api/internal/services"
	"github.com/yukikurage/taker-api/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers returns the users the actor may see, paginated and ordered by id
func (h *UserHandler) ListUsers(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	summaries, total, err := h.userService.ListVisibleUsers(actor, params)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserListResponse(summaries, params, total))
}

func (h *UserHandler) CountUsers(c *gin.Context) {
	count, err := h.userService.CountUsers()
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "id", "user ID")
	if !ok {
		return
	}

	summary, err := h.userService.GetUser(actor, userID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserSummaryDTO(*summary))
}

// CreateUser creates an account on someone's behalf
func (h *UserHandler) CreateUser(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	type CreateUserRequest struct {
		FullName  string `json:"full_name" binding:"required,max=255"`
		Email     string `json:"email" binding:"required,email"`
		Role      string `json:"role"`
		Password  string `json:"password"`
		Title     string `json:"title" binding:"max=255"`
		Position  string `json:"position"`
		Temporary *bool  `json:"temporary"`
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	summary, err := h.userService.CreateUser(actor, services.CreateUserInput{
		FullName:  req.FullName,
		Email:     req.Email,
		Role:      req.Role,
		Password:  req.Password,
		Title:     req.Title,
		Position:  req.Position,
		Temporary: req.Temporary,
	})
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserSummaryDTO(*summary))
}

func (h *UserHandler) AssignRole(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "id", "user ID")
	if !ok {
		return
	}

	type AssignRoleRequest struct {
		Role      string `json:"role" binding:"required"`
		Position  string `json:"position"`
		Temporary *bool  `json:"temporary"`
	}

	var req AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	summary, err := h.userService.AssignRole(actor, userID, services.AssignRoleInput{
		Role:      req.Role,
		Position:  req.Position,
		Temporary: req.Temporary,
	})
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserSummaryDTO(*summary))
}

// AssignToProject adds the user to a project under the staffing rules
func (h *UserHandler) AssignToProject(c *gin.Context) {
	userID, ok := parseIDParam(c, "id", "user ID")
	if !ok {
		return
	}

	type AssignProjectRequest struct {
		ProjectID   uint64 `json:"project_id" binding:"required"`
		ProjectRole string `json:"project_role"`
	}

	var req AssignProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	summary, err := h.userService.AssignToProject(userID, req.ProjectID, req.ProjectRole)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserSummaryDTO(*summary))
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "id", "user ID")
	if !ok {
		return
	}

	type UpdateProfileRequest struct {
		PhotoURL  *string `json:"photo_url"`
		Age       *int    `json:"age"`
		Skills    *string `json:"skills"`
		Temporary *bool   `json:"temporary"`
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	summary, err := h.userService.UpdateProfile(actor, userID, services.UpdateProfileInput{
		PhotoURL:  req.PhotoURL,
		Age:       req.Age,
		Skills:    req.Skills,
		Temporary: req.Temporary,
	})
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserSummaryDTO(*summary))
}

// KickUser removes a user together with their assignments and tasks
func (h *UserHandler) KickUser(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "id", "user ID")
	if !ok {
		return
	}

	if err := h.userService.KickUser(actor, userID); err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User removed",
	})
}

func (h *UserHandler) LeaderProjects(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	names, err := h.userService.LeaderProjects(actor)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": names})
}

func (h *UserHandler) LeaderTeamMembers(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	teams, err := h.userService.LeaderTeamMembers(actor)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"teams": dto.ToProjectMembersDTOs(teams)})
}

func (h *UserHandler) LeaderManager(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	contact, err := h.userService.LeaderManager(actor)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToContactDTO(contact))
}

// AssignableUsers lists the ids a team leader may hand tasks to in ?project=
func (h *UserHandler) AssignableUsers(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	ids, err := h.userService.AssignableUserIDs(actor, c.Query("project"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_ids": ids})
}

func (h *UserHandler) MemberProjects(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	names, err := h.userService.MemberProjects(actor)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": names})
}

func (h *UserHandler) MemberContacts(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	contacts, err := h.userService.MemberContacts(actor)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contacts": dto.ToContactDTOs(contacts)})
}

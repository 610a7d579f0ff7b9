package handler

import (
	"errors"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/chatdir/chatdir/internal/audit"
	"github.com/chatdir/chatdir/internal/domain"
	"github.com/chatdir/chatdir/internal/log"
	"github.com/chatdir/chatdir/internal/response"
	"github.com/chatdir/chatdir/internal/service"
)

// Handler handles HTTP requests for the directory service.
type Handler struct {
	rooms   service.RoomService
	users   service.UserService
	matcher service.MatchService
}

// NewHandler creates a new HTTP handler.
func NewHandler(rooms service.RoomService, users service.UserService, matcher service.MatchService) *Handler {
	return &Handler{
		rooms:   rooms,
		users:   users,
		matcher: matcher,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api/v1")
	{
		api.GET("/endpoints", h.Endpoints(r))

		rooms := api.Group("/rooms")
		{
			rooms.GET("", h.ListRooms)
			rooms.POST("", h.CreateRoom)
			rooms.DELETE("/:name", h.DeleteRoom)
			rooms.PUT("/:name", h.RenameRoom)
			rooms.GET("/:name/code", h.RoomCode)
			rooms.GET("/:name/members", h.RoomMembers)
			rooms.DELETE("/:name/members/:user", h.RemoveMember)

			join := rooms.Group("/join")
			{
				join.POST("/random", h.JoinRandom)
				join.POST("/preset", h.JoinPreset)
				join.POST("/code", h.JoinByCode)
				join.POST("/interests", h.JoinByInterests)
			}
		}

		users := api.Group("/users")
		{
			users.GET("", h.ListUsers)
			users.POST("", h.CreateUser)
			users.DELETE("/:name", h.DeleteUser)
			users.PUT("/:name", h.RenameUser)
		}
	}
}

// Health is a trivial liveness endpoint.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}

// Endpoints returns a handler that lists every registered route, as live
// documentation of what the server offers.
func (h *Handler) Endpoints(r *gin.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		routes := r.Routes()
		endpoints := make([]string, 0, len(routes))
		for _, route := range routes {
			endpoints = append(endpoints, route.Method+" "+route.Path)
		}
		sort.Strings(endpoints)
		response.Success(c, gin.H{"endpoints": endpoints})
	}
}

// CreateRoom creates a new room.
func (h *Handler) CreateRoom(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("failed to bind create room request")
		response.BadRequest(c, err.Error())
		return
	}

	room, err := h.rooms.CreateRoom(ctx, &req)
	if err != nil {
		h.writeError(c, err, "failed to create room")
		return
	}

	audit.Log(ctx, audit.ActionCreateRoom, req.Name, "room created")
	response.Created(c, room)
}

// ListRooms lists all rooms.
func (h *Handler) ListRooms(c *gin.Context) {
	ctx := c.Request.Context()

	rooms, err := h.rooms.ListRooms(ctx)
	if err != nil {
		h.writeError(c, err, "failed to list rooms")
		return
	}

	response.Success(c, rooms)
}

// DeleteRoom deletes a room by name.
func (h *Handler) DeleteRoom(c *gin.Context) {
	ctx := c.Request.Context()
	name := c.Param("name")

	if err := h.rooms.DeleteRoom(ctx, name); err != nil {
		h.writeError(c, err, "failed to delete room")
		return
	}

	audit.Log(ctx, audit.ActionDeleteRoom, name, "room deleted")
	response.Success(c, gin.H{"deleted": name})
}

// RenameRoom renames a room.
func (h *Handler) RenameRoom(c *gin.Context) {
	ctx := c.Request.Context()
	name := c.Param("name")

	var req domain.RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	newName, err := h.rooms.RenameRoom(ctx, name, req.NewName)
	if err != nil {
		h.writeError(c, err, "failed to rename room")
		return
	}

	audit.LogWithDetail(ctx, audit.ActionRenameRoom, name, newName, "room renamed")
	response.Success(c, gin.H{"name": newName})
}

// RoomCode returns the join code of a room.
func (h *Handler) RoomCode(c *gin.Context) {
	ctx := c.Request.Context()

	code, err := h.rooms.RoomCode(ctx, c.Param("name"))
	if err != nil {
		h.writeError(c, err, "failed to get room code")
		return
	}

	response.Success(c, gin.H{"room_code": code})
}

// RoomMembers returns the member list of a room.
func (h *Handler) RoomMembers(c *gin.Context) {
	ctx := c.Request.Context()

	members, err := h.rooms.RoomMembers(ctx, c.Param("name"))
	if err != nil {
		h.writeError(c, err, "failed to get room members")
		return
	}

	response.Success(c, gin.H{"members": members})
}

// RemoveMember removes a user from a room's member list.
func (h *Handler) RemoveMember(c *gin.Context) {
	ctx := c.Request.Context()
	roomName := c.Param("name")
	userName := c.Param("user")

	if err := h.rooms.RemoveMember(ctx, roomName, userName); err != nil {
		h.writeError(c, err, "failed to remove member")
		return
	}

	audit.LogWithDetail(ctx, audit.ActionLeaveRoom, userName, roomName, "member removed")
	response.Success(c, gin.H{"room_name": roomName, "user_name": userName})
}

// JoinRandom adds a user to a random room.
func (h *Handler) JoinRandom(c *gin.Context) {
	ctx := c.Request.Context()

	var req domain.JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	roomName, err := h.matcher.JoinRandom(ctx, req.UserName)
	if err != nil {
		h.writeError(c, err, "failed to join random room")
		return
	}

	audit.LogWithDetail(ctx, audit.ActionJoinRoom, req.UserName, roomName, "joined random room")
	response.Success(c, domain.JoinResponse{RoomName: roomName, UserName: req.UserName})
}

// JoinPreset adds a user to a random room they are not already in.
func (h *Handler) JoinPreset(c *gin.Context) {
	ctx := c.Request.Context()

	var req domain.JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	roomName, err := h.matcher.JoinPreset(ctx, req.UserName)
	if err != nil {
		h.writeError(c, err, "failed to join preset room")
		return
	}

	audit.LogWithDetail(ctx, audit.ActionJoinRoom, req.UserName, roomName, "joined preset room")
	response.Success(c, domain.JoinResponse{RoomName: roomName, UserName: req.UserName})
}

// JoinByCode adds a user to the room identified by a join code.
func (h *Handler) JoinByCode(c *gin.Context) {
	ctx := c.Request.Context()

	var req domain.JoinByCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	roomName, err := h.matcher.JoinByCode(ctx, req.RoomCode, req.UserName)
	if err != nil {
		h.writeError(c, err, "failed to join room by code")
		return
	}

	audit.LogWithDetail(ctx, audit.ActionJoinRoom, req.UserName, roomName, "joined room by code")
	response.Success(c, domain.JoinResponse{RoomName: roomName, UserName: req.UserName})
}

// JoinByInterests adds a user to the room best matching their interests.
func (h *Handler) JoinByInterests(c *gin.Context) {
	ctx := c.Request.Context()

	var req domain.JoinByInterestsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	roomName, err := h.matcher.JoinByInterests(ctx, req.Interests, req.UserName)
	if err != nil {
		h.writeError(c, err, "failed to join room by interests")
		return
	}

	audit.LogWithDetail(ctx, audit.ActionJoinRoom, req.UserName, roomName, "joined room by interests")
	response.Success(c, domain.JoinResponse{RoomName: roomName, UserName: req.UserName})
}

// CreateUser creates a new user.
func (h *Handler) CreateUser(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("failed to bind create user request")
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.users.CreateUser(ctx, req.Name)
	if err != nil {
		h.writeError(c, err, "failed to create user")
		return
	}

	audit.Log(ctx, audit.ActionCreateUser, req.Name, "user created")
	response.Created(c, user)
}

// ListUsers lists all users.
func (h *Handler) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := h.users.ListUsers(ctx)
	if err != nil {
		h.writeError(c, err, "failed to list users")
		return
	}

	response.Success(c, users)
}

// DeleteUser deletes a user by name.
func (h *Handler) DeleteUser(c *gin.Context) {
	ctx := c.Request.Context()
	name := c.Param("name")

	if err := h.users.DeleteUser(ctx, name); err != nil {
		h.writeError(c, err, "failed to delete user")
		return
	}

	audit.Log(ctx, audit.ActionDeleteUser, name, "user deleted")
	response.Success(c, gin.H{"deleted": name})
}

// RenameUser renames a user.
func (h *Handler) RenameUser(c *gin.Context) {
	ctx := c.Request.Context()
	name := c.Param("name")

	var req domain.RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	newName, err := h.users.RenameUser(ctx, name, req.NewName)
	if err != nil {
		h.writeError(c, err, "failed to rename user")
		return
	}

	audit.LogWithDetail(ctx, audit.ActionRenameUser, name, newName, "user renamed")
	response.Success(c, gin.H{"name": newName})
}

// writeError maps domain errors to transport responses.
func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	ctx := c.Request.Context()

	switch {
	case errors.Is(err, service.ErrRoomNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrNoRooms),
		errors.Is(err, service.ErrNoMatch),
		errors.Is(err, service.ErrNotMember):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrDuplicateName):
		response.NotAcceptable(c, err.Error())
	case errors.Is(err, service.ErrStoreUnavailable):
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg(fallback)
		response.Unavailable(c, fallback)
	default:
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg(fallback)
		response.InternalError(c, fallback)
	}
}

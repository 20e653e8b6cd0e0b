package controllers

import (
	"net/http"

	"github.com/CUknot/fairmind/service"
	"github.com/gin-gonic/gin"
)

type CreateRoomInput struct {
	Title string `json:"title" binding:"max=255" example:"Who does the dishes"`
}

type JoinRoomInput struct {
	Code string `json:"code" binding:"required,len=6" example:"AB12CD"`
}

// RoomController serves the room, message, resolution and vote routes.
type RoomController struct {
	svc *service.Service
}

func NewRoomController(svc *service.Service) *RoomController {
	return &RoomController{svc: svc}
}

// GetRooms godoc
// @Summary Get all rooms for the authenticated user
// @Description Returns the rooms the user created or joined, newest first
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "List of rooms"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/rooms [get]
func (rc *RoomController) GetRooms(c *gin.Context) {
	rooms, err := rc.svc.ListRooms(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// CreateRoom godoc
// @Summary Create a new mediation room
// @Description Creates a room with the caller as first participant and returns its join code
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param room body CreateRoomInput false "Room Creation"
// @Success 201 {object} map[string]interface{} "Room created successfully"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/rooms [post]
func (rc *RoomController) CreateRoom(c *gin.Context) {
	var input CreateRoomInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	room, err := rc.svc.CreateRoom(c.Request.Context(), currentUser(c), input.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Room created successfully",
		"room":    room,
	})
}

// JoinRoom godoc
// @Summary Join a room by code
// @Description Takes the free participant slot of the room with the given code
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param join body JoinRoomInput true "Join code"
// @Success 200 {object} map[string]interface{} "Joined room"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Room not found"
// @Failure 409 {object} map[string]string "Room full or not active"
// @Router /api/rooms/join [post]
func (rc *RoomController) JoinRoom(c *gin.Context) {
	var input JoinRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := rc.svc.JoinRoom(c.Request.Context(), currentUser(c), input.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room})
}

// GetRoom godoc
// @Summary Get details of a specific room
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Success 200 {object} map[string]interface{} "Room details"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Room not found"
// @Router /api/rooms/{id} [get]
func (rc *RoomController) GetRoom(c *gin.Context) {
	room, err := rc.svc.GetRoom(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room})
}

// DeleteRoom godoc
// @Summary Delete a room
// @Description Deletes the room with its messages, resolutions and votes. Only the creator may delete.
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Success 200 {object} map[string]string "Room deleted successfully"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Room not found"
// @Router /api/rooms/{id} [delete]
func (rc *RoomController) DeleteRoom(c *gin.Context) {
	if err := rc.svc.DeleteRoom(c.Request.Context(), c.Param("id"), currentUser(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Room deleted successfully"})
}

// GetStats godoc
// @Summary Get the caller's activity summary
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Stats
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /api/stats [get]
func (rc *RoomController) GetStats(c *gin.Context) {
	stats, err := rc.svc.Stats(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type CastVoteInput struct {
	ResolutionID uint `json:"resolutionId" binding:"required" example:"2"`
}

// GetResolutions godoc
// @Summary List the room's resolutions
// @Tags resolutions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Success 200 {object} map[string]interface{} "List of resolutions"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Room not found"
// @Router /api/rooms/{id}/resolutions [get]
func (rc *RoomController) GetResolutions(c *gin.Context) {
	resolutions, err := rc.svc.ListResolutions(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resolutions": resolutions})
}

// RequestResolutions godoc
// @Summary Generate resolutions
// @Description Asks the model for three resolution options from the conversation so far and broadcasts them to the room
// @Tags resolutions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Success 201 {object} map[string]interface{} "Generated resolutions"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Room not found"
// @Failure 409 {object} map[string]string "Room not active or generation in progress"
// @Failure 422 {object} map[string]string "Not enough messages"
// @Failure 429 {object} map[string]interface{} "Daily quota exceeded"
// @Router /api/rooms/{id}/resolutions [post]
func (rc *RoomController) RequestResolutions(c *gin.Context) {
	resolutions, err := rc.svc.RequestResolutions(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"resolutions": resolutions})
}

// GetVotes godoc
// @Summary List the room's votes
// @Tags votes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Success 200 {object} map[string]interface{} "List of votes"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Room not found"
// @Router /api/rooms/{id}/votes [get]
func (rc *RoomController) GetVotes(c *gin.Context) {
	votes, err := rc.svc.ListVotes(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"votes": votes})
}

// CastVote godoc
// @Summary Vote for a resolution
// @Description Records the caller's single vote. The room is resolved when both participants pick the same resolution.
// @Tags votes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Param vote body CastVoteInput true "Vote"
// @Success 201 {object} map[string]interface{} "Vote recorded"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Room or resolution not found"
// @Failure 409 {object} map[string]string "Already voted"
// @Router /api/rooms/{id}/votes [post]
func (rc *RoomController) CastVote(c *gin.Context) {
	var input CastVoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vote, err := rc.svc.CastVote(c.Request.Context(), c.Param("id"), currentUser(c), input.ResolutionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Vote recorded",
		"data":    vote,
	})
}

package controllers

import (
	"io"
	"net/http"

	"github.com/CUknot/fairmind/service"
	"github.com/gin-gonic/gin"
)

// maxAudioBytes bounds a transcription upload.
const maxAudioBytes = 10 << 20

type CreateMessageInput struct {
	Content    string `json:"content" example:"I feel like I always end up doing the dishes."`
	IsVoice    bool   `json:"isVoice" example:"false"`
	Transcript string `json:"transcript"`
	AudioURL   string `json:"audioUrl"`
}

// GetMessages godoc
// @Summary Get all messages for a room
// @Description Returns the room's messages in conversation order
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Success 200 {object} map[string]interface{} "List of messages"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Room not found"
// @Router /api/rooms/{id}/messages [get]
func (rc *RoomController) GetMessages(c *gin.Context) {
	messages, err := rc.svc.ListMessages(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// CreateMessage godoc
// @Summary Post a message
// @Description Stores a text or voice message and broadcasts it to the room
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Param message body CreateMessageInput true "Message"
// @Success 201 {object} map[string]interface{} "Message sent successfully"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Room not found"
// @Failure 409 {object} map[string]string "Room not active"
// @Router /api/rooms/{id}/messages [post]
func (rc *RoomController) CreateMessage(c *gin.Context) {
	var input CreateMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := rc.svc.PostMessage(c.Request.Context(), c.Param("id"), currentUser(c), service.MessageInput{
		Content:    input.Content,
		IsVoice:    input.IsVoice,
		Transcript: input.Transcript,
		AudioURL:   input.AudioURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Message sent successfully",
		"data":    message,
	})
}

// Transcribe godoc
// @Summary Transcribe a voice recording
// @Description Converts an uploaded audio file to text for a voice message
// @Tags messages
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Param audio formData file true "Audio recording"
// @Success 200 {object} map[string]string "Transcript"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 502 {object} map[string]string "Transcription failed"
// @Router /api/rooms/{id}/transcribe [post]
func (rc *RoomController) Transcribe(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAudioBytes+1<<10)
	header, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio file is required"})
		return
	}
	if header.Size > maxAudioBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio file is too large"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read audio file"})
		return
	}
	defer file.Close()
	audio, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read audio file"})
		return
	}

	text, err := rc.svc.Transcribe(c.Request.Context(), c.Param("id"), currentUser(c), header.Filename, audio)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transcript": text})
}

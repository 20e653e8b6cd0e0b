package controllers

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the API. requireAuth guards everything except
// register and login; ws serves the websocket upgrade.
func RegisterRoutes(router gin.IRouter, auth *AuthController, rooms *RoomController, requireAuth, ws gin.HandlerFunc) {
	public := router.Group("/api")
	{
		public.POST("/register", auth.Register)
		public.POST("/login", auth.Login)
	}

	api := router.Group("/api")
	api.Use(requireAuth)
	{
		api.GET("/rooms", rooms.GetRooms)
		api.POST("/rooms", rooms.CreateRoom)
		api.POST("/rooms/join", rooms.JoinRoom)
		api.GET("/rooms/:id", rooms.GetRoom)
		api.DELETE("/rooms/:id", rooms.DeleteRoom)

		api.GET("/rooms/:id/messages", rooms.GetMessages)
		api.POST("/rooms/:id/messages", rooms.CreateMessage)
		api.POST("/rooms/:id/transcribe", rooms.Transcribe)

		api.GET("/rooms/:id/resolutions", rooms.GetResolutions)
		api.POST("/rooms/:id/resolutions", rooms.RequestResolutions)
		api.GET("/rooms/:id/votes", rooms.GetVotes)
		api.POST("/rooms/:id/votes", rooms.CastVote)

		api.GET("/stats", rooms.GetStats)
	}

	router.GET("/ws", requireAuth, ws)
}

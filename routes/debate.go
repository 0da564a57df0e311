package routes

import (
	"net/http"

	"debatearena/controllers"
	"debatearena/websocket"

	"github.com/gin-gonic/gin"
)

// SetupDebateRoutes registers the page, form, API and websocket routes. sessions
// must be the session middleware; every route below depends on it.
func SetupDebateRoutes(router *gin.Engine, ctl *controllers.DebateController, hub *websocket.Hub, sessions gin.HandlerFunc) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	app := router.Group("/")
	app.Use(sessions)
	{
		app.GET("/", ctl.Page)
		app.POST("/topic", ctl.PostTopic)
		app.POST("/start", ctl.PostStart)
		app.POST("/messages", ctl.PostMessage)
		app.POST("/end", ctl.PostEnd)
		app.POST("/new", ctl.PostNew)
		app.POST("/map", ctl.PostMap)

		app.GET("/ws", hub.SessionHandler)
	}

	api := router.Group("/api/session")
	api.Use(sessions)
	{
		api.GET("", ctl.GetSession)
		api.POST("/topic", ctl.UpdateTopic)
		api.POST("/start", ctl.StartDebate)
		api.POST("/messages", ctl.SendMessage)
		api.POST("/end", ctl.EndDebate)
		api.POST("/new", ctl.NewDebate)
		api.POST("/map", ctl.BuildArgumentMap)
	}
}

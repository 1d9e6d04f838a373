package bind

import (
	"github.com/caesium-cloud/lgflow/api/rest/controller/dashboard"
	"github.com/caesium-cloud/lgflow/api/rest/controller/event"
	"github.com/caesium-cloud/lgflow/api/rest/controller/history"
	"github.com/caesium-cloud/lgflow/api/rest/controller/task"
	"github.com/caesium-cloud/lgflow/api/rest/controller/user"
	ievent "github.com/caesium-cloud/lgflow/internal/event"
	"github.com/labstack/echo/v4"
)

// All binds every REST endpoint to the versioned group.
func All(g *echo.Group, bus ievent.Bus) {
	Tasks(g)

	// history
	g.GET("/history/:lg_number", history.Get)

	// dashboard
	g.GET("/dashboard", dashboard.Get)

	// users
	{
		g.GET("/users", user.List)
		g.POST("/users", user.Post)
	}

	// events
	g.GET("/events", event.New(bus).Stream)
}

func Tasks(g *echo.Group) {
	g.GET("/tasks", task.List)
	g.POST("/tasks", task.Post)
	g.GET("/tasks/:id", task.Get)
	g.PATCH("/tasks/:id", task.Patch)
	g.DELETE("/tasks/:id", task.Delete)
	g.POST("/tasks/:id/transitions", task.Transition)
	g.POST("/tasks/:id/original", task.Original)
	g.GET("/transitions", task.Transitions)
}

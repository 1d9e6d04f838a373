package task

import (
	"net/http"

	"github.com/caesium-cloud/lgflow/api/rest/controller/request"
	"github.com/caesium-cloud/lgflow/api/rest/service/task"
	"github.com/caesium-cloud/lgflow/internal/workflow"
	"github.com/labstack/echo/v4"
)

func Transition(c echo.Context) error {
	req := &task.TransitionRequest{}
	if err := c.Bind(req); err != nil {
		return err
	}

	d, err := workflow.ParseDecision(string(req.Decision))
	if err != nil {
		return request.Error(err)
	}
	req.Decision = d
	req.TaskID = c.Param("id")
	req.Actor = request.Actor(c)

	rec, err := task.Service(c.Request().Context()).Transition(req)
	if err != nil {
		return request.Error(err)
	}

	return c.JSON(http.StatusOK, rec)
}

// Transitions lists the lifecycle table.
func Transitions(c echo.Context) error {
	return c.JSON(http.StatusOK, workflow.Transitions())
}

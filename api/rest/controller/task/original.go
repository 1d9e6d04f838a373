package task

import (
	"net/http"

	"github.com/caesium-cloud/lgflow/api/rest/controller/request"
	"github.com/caesium-cloud/lgflow/api/rest/service/task"
	"github.com/labstack/echo/v4"
)

// Original records the arrival of a task's physical original.
func Original(c echo.Context) error {
	req := &task.ReceiveRequest{}
	if err := c.Bind(req); err != nil {
		return err
	}
	req.TaskID = c.Param("id")
	req.Actor = request.Actor(c)

	rec, err := task.Service(c.Request().Context()).ReceiveOriginal(req)
	if err != nil {
		return request.Error(err)
	}

	return c.JSON(http.StatusOK, rec)
}

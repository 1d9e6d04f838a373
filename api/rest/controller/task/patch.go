package task

import (
	"net/http"

	"github.com/caesium-cloud/lgflow/api/rest/controller/request"
	"github.com/caesium-cloud/lgflow/api/rest/service/task"
	"github.com/labstack/echo/v4"
)

// Patch edits the annotations of an Active task.
func Patch(c echo.Context) error {
	req := &task.EditRequest{}
	if err := c.Bind(req); err != nil {
		return err
	}
	req.TaskID = c.Param("id")
	req.Actor = request.Actor(c)

	rec, err := task.Service(c.Request().Context()).EditActive(req)
	if err != nil {
		return request.Error(err)
	}

	return c.JSON(http.StatusOK, rec)
}

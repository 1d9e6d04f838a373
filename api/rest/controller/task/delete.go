package task

import (
	"net/http"

	"github.com/caesium-cloud/lgflow/api/rest/controller/request"
	"github.com/caesium-cloud/lgflow/api/rest/service/task"
	"github.com/labstack/echo/v4"
)

func Delete(c echo.Context) error {
	if err := task.Service(c.Request().Context()).Delete(c.Param("id"), request.Actor(c)); err != nil {
		return request.Error(err)
	}

	return c.NoContent(http.StatusNoContent)
}

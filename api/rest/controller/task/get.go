package task

import (
	"net/http"

	"github.com/caesium-cloud/lgflow/api/rest/controller/request"
	"github.com/caesium-cloud/lgflow/api/rest/service/task"
	"github.com/labstack/echo/v4"
)

func Get(c echo.Context) error {
	rec, err := task.Service(c.Request().Context()).Get(c.Param("id"))
	if err != nil {
		return request.Error(err)
	}

	return c.JSON(http.StatusOK, rec)
}

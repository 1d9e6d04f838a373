package task

import (
	"net/http"

	"github.com/caesium-cloud/lgflow/api/rest/controller/request"
	"github.com/caesium-cloud/lgflow/api/rest/service/task"
	"github.com/caesium-cloud/lgflow/internal/role"
	"github.com/labstack/echo/v4"
)

func List(c echo.Context) error {
	records, err := task.Service(c.Request().Context()).List(&task.ListRequest{
		Actor:    request.Actor(c),
		Queue:    role.Queue(c.QueryParam("queue")),
		LGNumber: c.QueryParam("lg_number"),
	})
	if err != nil {
		return request.Error(err)
	}

	return c.JSON(http.StatusOK, records)
}

package dashboard

import (
	"net/http"

	"github.com/caesium-cloud/lgflow/api/rest/controller/request"
	"github.com/caesium-cloud/lgflow/api/rest/service/task"
	"github.com/caesium-cloud/lgflow/internal/role"
	"github.com/labstack/echo/v4"
)

type Response struct {
	*role.Dashboard
	Capabilities role.Capabilities `json:"capabilities"`
}

func Get(c echo.Context) error {
	actor := request.Actor(c)

	d, err := task.Service(c.Request().Context()).Dashboard(actor)
	if err != nil {
		return request.Error(err)
	}

	caps, _ := role.For(actor.Role)
	return c.JSON(http.StatusOK, Response{Dashboard: d, Capabilities: caps})
}

package task

import (
	"net/http"

	"github.com/caesium-cloud/lgflow/api/rest/controller/request"
	"github.com/caesium-cloud/lgflow/api/rest/service/task"
	"github.com/caesium-cloud/lgflow/pkg/log"
	"github.com/labstack/echo/v4"
)

func Post(c echo.Context) error {
	req := &task.CreateRequest{}
	if err := c.Bind(req); err != nil {
		return err
	}
	req.Actor = request.Actor(c)

	log.Info("creating task", "lg_number", req.LGNumber, "req_type", req.ReqType, "actor", req.Actor.User)

	resp, err := task.Service(c.Request().Context()).Create(req)
	if err != nil {
		return request.Error(err)
	}

	return c.JSON(http.StatusCreated, resp)
}

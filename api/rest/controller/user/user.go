package user

import (
	"net/http"

	"github.com/caesium-cloud/lgflow/api/rest/controller/request"
	"github.com/caesium-cloud/lgflow/api/rest/service/user"
	"github.com/labstack/echo/v4"
)

func List(c echo.Context) error {
	users, err := user.Service(c.Request().Context()).List(&user.ListRequest{Role: c.QueryParam("role")})
	if err != nil {
		return request.Error(err)
	}

	return c.JSON(http.StatusOK, users)
}

func Post(c echo.Context) error {
	req := &user.CreateRequest{}
	if err := c.Bind(req); err != nil {
		return err
	}
	req.Actor = request.Actor(c)

	usr, err := user.Service(c.Request().Context()).Create(req)
	if err != nil {
		return request.Error(err)
	}

	return c.JSON(http.StatusCreated, usr)
}

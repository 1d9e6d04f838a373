// Package request holds the pieces shared by the REST controllers:
// caller identity and the mapping of domain errors to HTTP.
package request

import (
	"errors"
	"net/http"
	"strings"

	"github.com/caesium-cloud/lgflow/internal/lgerr"
	"github.com/caesium-cloud/lgflow/internal/models"
	"github.com/caesium-cloud/lgflow/internal/role"
	"github.com/labstack/echo/v4"
)

const (
	HeaderUser = "X-Lgflow-User"
	HeaderRole = "X-Lgflow-Role"
)

// Actor reads the caller's claimed identity. The claims are trusted
// as given; authentication happens in front of lgflow.
func Actor(c echo.Context) role.Actor {
	r, _ := models.ParseRole(c.Request().Header.Get(HeaderRole))
	return role.Actor{
		User: strings.TrimSpace(c.Request().Header.Get(HeaderUser)),
		Role: r,
	}
}

// Error maps an error from the service layer onto an HTTP error.
func Error(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}

	status := http.StatusInternalServerError
	switch lgerr.KindOf(err) {
	case lgerr.ErrValidation:
		status = http.StatusBadRequest
	case lgerr.ErrNotFound:
		status = http.StatusNotFound
	case lgerr.ErrForbidden:
		status = http.StatusForbidden
	case lgerr.ErrConflict:
		status = http.StatusConflict
	case lgerr.ErrStoreUnavailable:
		status = http.StatusServiceUnavailable
	}

	msg := http.StatusText(status)
	if status != http.StatusInternalServerError {
		msg = err.Error()
	}
	return echo.NewHTTPError(status, msg).SetInternal(err)
}

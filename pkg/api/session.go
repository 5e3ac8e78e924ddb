package api

import (
	"net/http"

	"github.com/labstack/echo"

	"github.com/Procodx/familyGuardian/pkg/api/resource"
)

func (h *Handler) handleFetchSessions(c echo.Context) error {
	return c.JSON(http.StatusOK, resource.NewSessionList(h.hub.Sessions()))
}

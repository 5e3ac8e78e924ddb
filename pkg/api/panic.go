package api

import (
	"net/http"

	"github.com/labstack/echo"

	"github.com/Procodx/familyGuardian/pkg/api/resource"
	"github.com/Procodx/familyGuardian/pkg/storage"
)

func (h *Handler) handleFetchPanics(c echo.Context) error {
	m, err := h.store.Panics().FetchAll()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, resource.NewPanicList(m))
}

func (h *Handler) handleGetPanicByID(c echo.Context) error {
	m, err := h.store.Panics().FindByID(c.Param("id"))
	if err != nil && err == storage.ErrNotFound {
		return c.JSON(http.StatusNotFound, errorResponse{Message: "panic event not found"})
	} else if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, resource.NewPanic(m))
}

func (h *Handler) handleAcknowledgePanic(c echo.Context) error {
	panicID := c.Param("id")

	deviceID, err := h.workflow.Acknowledge(panicID)
	if err != nil && err == storage.ErrNotFound {
		return c.JSON(http.StatusNotFound, errorResponse{Message: "panic event not found"})
	} else if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, resource.AcknowledgeResource{
		Status:   "acknowledged",
		PanicID:  panicID,
		DeviceID: deviceID,
	})
}

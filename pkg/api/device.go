package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo"

	"github.com/Procodx/familyGuardian/pkg/api/resource"
	"github.com/Procodx/familyGuardian/pkg/storage"
)

func (h *Handler) handleFetchDevices(c echo.Context) error {
	m, err := h.store.Devices().FetchAll()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, resource.NewDeviceList(m))
}

func (h *Handler) handleGetDeviceByID(c echo.Context) error {
	m, err := h.store.Devices().FindByID(c.Param("id"))
	if err != nil && err == storage.ErrNotFound {
		return c.JSON(http.StatusNotFound, errorResponse{Message: "device not found"})
	} else if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, resource.NewDevice(m, false))
}

func (h *Handler) handleRegisterDevice(c echo.Context) error {
	r := &resource.DeviceResource{}
	if err := c.Bind(r); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid request body"})
	}

	m, err := resource.ValidateDevice(r)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
	}

	// The token is minted once and only returned here. A lost token means a
	// new registration.
	m.DeviceToken = uuid.NewString()

	err = h.store.Devices().Create(m)
	if err != nil && err == storage.ErrConflict {
		return c.JSON(http.StatusConflict, errorResponse{Message: "device already registered"})
	} else if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, resource.NewDevice(m, true))
}

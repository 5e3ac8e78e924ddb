package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo"

	"github.com/Procodx/familyGuardian/pkg/api/resource"
	"github.com/Procodx/familyGuardian/pkg/storage"
)

func (h *Handler) handleFetchContacts(c echo.Context) error {
	deviceID := c.Param("id")
	if _, err := h.store.Devices().FindByID(deviceID); err == storage.ErrNotFound {
		return c.JSON(http.StatusNotFound, errorResponse{Message: "device not found"})
	} else if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: err.Error()})
	}

	m, err := h.store.Contacts().FindByDeviceID(deviceID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, resource.NewContactList(m))
}

func (h *Handler) handleCreateContact(c echo.Context) error {
	deviceID := c.Param("id")
	if _, err := h.store.Devices().FindByID(deviceID); err == storage.ErrNotFound {
		return c.JSON(http.StatusNotFound, errorResponse{Message: "device not found"})
	} else if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: err.Error()})
	}

	r := &resource.ContactResource{}
	if err := c.Bind(r); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid request body"})
	}

	m, err := resource.ValidateContact(deviceID, r)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
	}
	m.ContactID = uuid.NewString()

	if err := h.store.Contacts().Create(m); err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, resource.NewContact(m))
}

func (h *Handler) handleDeleteContact(c echo.Context) error {
	err := h.store.Contacts().Delete(c.Param("contactId"))
	if err != nil && err == storage.ErrNotFound {
		return c.JSON(http.StatusNotFound, errorResponse{Message: "contact not found"})
	} else if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: err.Error()})
	}

	return c.NoContent(http.StatusNoContent)
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type MetaHandler struct {
	info VersionResponse
}

type VersionResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

func NewMetaHandler(title, description, version string) *MetaHandler {
	return &MetaHandler{info: VersionResponse{Title: title, Description: description, Version: version}}
}

// Health handles GET /healthz
func (h *MetaHandler) Health(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// Version handles GET /version
func (h *MetaHandler) Version(c echo.Context) error {
	return c.JSON(http.StatusOK, h.info)
}

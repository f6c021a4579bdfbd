package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmorenov/cajadesk/internal/services"
	"github.com/dmorenov/cajadesk/pkg/response"
	"github.com/dmorenov/cajadesk/pkg/validator"
)

// PrinterHandler exposes printer administration over HTTP.
type PrinterHandler struct {
	service *services.PrinterService
}

// NewPrinterHandler constructs a printer handler.
func NewPrinterHandler(service *services.PrinterService) *PrinterHandler {
	return &PrinterHandler{service: service}
}

type createPrinterPayload struct {
	Name      string `json:"name" validate:"required"`
	Location  string `json:"location"`
	Model     string `json:"model"`
	IsDefault bool   `json:"is_default"`
}

type printerStatusPayload struct {
	Online *bool `json:"online" validate:"required"`
}

// Create registers a printer.
func (h *PrinterHandler) Create(c *gin.Context) {
	var payload createPrinterPayload
	if err := bindJSON(c, &payload); err != nil {
		response.Error(c, err)
		return
	}
	if err := validator.ValidateStruct(payload); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}

	printer, err := h.service.Create(c.Request.Context(), services.CreatePrinterInput{
		Name:      payload.Name,
		Location:  payload.Location,
		Model:     payload.Model,
		IsDefault: payload.IsDefault,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, printer)
}

// List returns every printer.
func (h *PrinterHandler) List(c *gin.Context) {
	printers, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, printers)
}

// SetStatus updates a printer's availability.
func (h *PrinterHandler) SetStatus(c *gin.Context) {
	var payload printerStatusPayload
	if err := bindJSON(c, &payload); err != nil {
		response.Error(c, err)
		return
	}
	if err := validator.ValidateStruct(payload); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}

	printer, err := h.service.SetOnline(c.Request.Context(), strings.TrimSpace(c.Param("id")), *payload.Online)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, printer)
}

// Delete removes a printer.
func (h *PrinterHandler) Delete(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmorenov/cajadesk/internal/realtime"
	"github.com/dmorenov/cajadesk/pkg/response"
	"github.com/dmorenov/cajadesk/pkg/validator"
)

// RealtimeHandler exposes the engine's configuration and the visibility
// reporting endpoint the hosting surface calls on focus changes.
type RealtimeHandler struct {
	config     *realtime.ConfigService
	visibility *realtime.Visibility
}

// NewRealtimeHandler constructs a realtime handler.
func NewRealtimeHandler(config *realtime.ConfigService, visibility *realtime.Visibility) *RealtimeHandler {
	return &RealtimeHandler{config: config, visibility: visibility}
}

type visibilityPayload struct {
	Live *bool `json:"live" validate:"required"`
}

// GetConfig returns the realtime engine configuration.
func (h *RealtimeHandler) GetConfig(c *gin.Context) {
	response.Success(c, http.StatusOK, h.config.Get())
}

// UpdateConfig applies a partial realtime configuration change. Changing the
// enabled flag or the poll interval restarts the scheduler as a side effect.
func (h *RealtimeHandler) UpdateConfig(c *gin.Context) {
	var patch realtime.ConfigPatch
	if err := bindJSON(c, &patch); err != nil {
		response.Error(c, err)
		return
	}

	cfg, err := h.config.Update(c.Request.Context(), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, cfg)
}

// ReportVisibility records whether the hosting surface is foregrounded.
func (h *RealtimeHandler) ReportVisibility(c *gin.Context) {
	var payload visibilityPayload
	if err := bindJSON(c, &payload); err != nil {
		response.Error(c, err)
		return
	}
	if err := validator.ValidateStruct(payload); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}

	h.visibility.SetLive(*payload.Live)
	response.Success(c, http.StatusOK, gin.H{"live": *payload.Live})
}

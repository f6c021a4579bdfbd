package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmorenov/cajadesk/internal/services"
	"github.com/dmorenov/cajadesk/pkg/response"
	"github.com/dmorenov/cajadesk/pkg/validator"
)

// RequestHandler exposes cash-register opening requests over HTTP.
type RequestHandler struct {
	service *services.RequestService
}

// NewRequestHandler constructs a request handler.
func NewRequestHandler(service *services.RequestService) *RequestHandler {
	return &RequestHandler{service: service}
}

type createRequestPayload struct {
	RegisterID  string `json:"register_id" validate:"required"`
	RequestedBy string `json:"requested_by" validate:"required"`
	Reason      string `json:"reason"`
	AmountCents int64  `json:"amount_cents" validate:"gte=0"`
}

type resolveRequestPayload struct {
	ResolvedBy string `json:"resolved_by" validate:"required"`
}

// Create registers a pending opening request.
func (h *RequestHandler) Create(c *gin.Context) {
	var payload createRequestPayload
	if err := bindJSON(c, &payload); err != nil {
		response.Error(c, err)
		return
	}
	if err := validator.ValidateStruct(payload); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}

	request, err := h.service.Create(c.Request.Context(), services.CreateRequestInput{
		RegisterID:  payload.RegisterID,
		RequestedBy: payload.RequestedBy,
		Reason:      payload.Reason,
		AmountCents: payload.AmountCents,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, request)
}

// List returns opening requests, optionally filtered by status.
func (h *RequestHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// Get returns a single opening request.
func (h *RequestHandler) Get(c *gin.Context) {
	request, err := h.service.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, request)
}

// Approve authorizes a pending request.
func (h *RequestHandler) Approve(c *gin.Context) {
	h.resolve(c, true)
}

// Reject denies a pending request.
func (h *RequestHandler) Reject(c *gin.Context) {
	h.resolve(c, false)
}

func (h *RequestHandler) resolve(c *gin.Context, approve bool) {
	var payload resolveRequestPayload
	if err := bindJSON(c, &payload); err != nil {
		response.Error(c, err)
		return
	}
	if err := validator.ValidateStruct(payload); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	var (
		request any
		err     error
	)
	if approve {
		request, err = h.service.Approve(c.Request.Context(), id, payload.ResolvedBy)
	} else {
		request, err = h.service.Reject(c.Request.Context(), id, payload.ResolvedBy)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, request)
}

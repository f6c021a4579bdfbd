package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmorenov/cajadesk/internal/services"
	"github.com/dmorenov/cajadesk/pkg/response"
	"github.com/dmorenov/cajadesk/pkg/validator"
)

// UserHandler exposes operator accounts over HTTP.
type UserHandler struct {
	service *services.UserService
}

// NewUserHandler constructs a user handler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type createUserPayload struct {
	Username    string `json:"username" validate:"required"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

type updateUserPayload struct {
	DisplayName *string `json:"display_name"`
	Role        *string `json:"role"`
	IsActive    *bool   `json:"is_active"`
}

// Create registers a new operator.
func (h *UserHandler) Create(c *gin.Context) {
	var payload createUserPayload
	if err := bindJSON(c, &payload); err != nil {
		response.Error(c, err)
		return
	}
	if err := validator.ValidateStruct(payload); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}

	user, err := h.service.Create(c.Request.Context(), services.CreateUserInput{
		Username:    payload.Username,
		DisplayName: payload.DisplayName,
		Role:        payload.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, user)
}

// List returns every operator.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, users)
}

// Update applies a partial change to an operator.
func (h *UserHandler) Update(c *gin.Context) {
	var payload updateUserPayload
	if err := bindJSON(c, &payload); err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.service.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), services.UpdateUserInput{
		DisplayName: payload.DisplayName,
		Role:        payload.Role,
		IsActive:    payload.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// Delete removes an operator.
func (h *UserHandler) Delete(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id})
}

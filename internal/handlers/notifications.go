package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmorenov/cajadesk/internal/notifications"
	"github.com/dmorenov/cajadesk/pkg/response"
	"github.com/dmorenov/cajadesk/pkg/validator"
)

// NotificationHandler exposes the ledger over HTTP.
type NotificationHandler struct {
	ledger *notifications.Ledger
	config *notifications.ConfigService
}

// NewNotificationHandler constructs a notification handler.
func NewNotificationHandler(ledger *notifications.Ledger, config *notifications.ConfigService) *NotificationHandler {
	return &NotificationHandler{ledger: ledger, config: config}
}

type appendNotificationPayload struct {
	Category string         `json:"category"`
	Title    string         `json:"title" validate:"required"`
	Message  string         `json:"message"`
	OwnerID  string         `json:"owner_id"`
	Metadata map[string]any `json:"metadata"`
}

// Create appends a notification to the ledger.
func (h *NotificationHandler) Create(c *gin.Context) {
	var payload appendNotificationPayload
	if err := bindJSON(c, &payload); err != nil {
		response.Error(c, err)
		return
	}
	if err := validator.ValidateStruct(payload); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}

	notification, err := h.ledger.Append(c.Request.Context(), notifications.AppendInput{
		Category: payload.Category,
		Title:    payload.Title,
		Message:  payload.Message,
		OwnerID:  payload.OwnerID,
		Metadata: payload.Metadata,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, notification)
}

// List returns notifications visible to the owner query parameter.
func (h *NotificationHandler) List(c *gin.Context) {
	items, err := h.ledger.List(c.Request.Context(), c.Query("owner_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// UnreadCount returns the unread tally for the owner query parameter.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.ledger.UnreadCount(c.Request.Context(), c.Query("owner_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"unread": count})
}

// MarkRead marks one notification as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := h.ledger.MarkRead(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id})
}

// MarkAllRead marks every visible notification as read.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.ledger.MarkAllRead(c.Request.Context(), c.Query("owner_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, nil)
}

// Delete removes one notification.
func (h *NotificationHandler) Delete(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := h.ledger.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id})
}

// Clear removes every visible notification.
func (h *NotificationHandler) Clear(c *gin.Context) {
	if err := h.ledger.ClearAll(c.Request.Context(), c.Query("owner_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, nil)
}

// GetConfig returns the notification alert configuration.
func (h *NotificationHandler) GetConfig(c *gin.Context) {
	response.Success(c, http.StatusOK, h.config.Get())
}

// UpdateConfig applies a partial notification configuration change.
func (h *NotificationHandler) UpdateConfig(c *gin.Context) {
	var patch notifications.ConfigPatch
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

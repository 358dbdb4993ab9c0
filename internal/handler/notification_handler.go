package handler

import (
	"net/http"

	"mingle-server/internal/services"
	"mingle-server/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	notifications *services.NotificationService
	unseen        *services.UnseenService
}

func NewNotificationHandler(notifications *services.NotificationService, unseen *services.UnseenService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, unseen: unseen}
}

func (h *NotificationHandler) ListGeneral(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		respondUnauthorized(c)
		return
	}

	views, err := h.notifications.ListGeneral(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromNotificationViewSlice(views)))
}

func (h *NotificationHandler) CountGeneral(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		respondUnauthorized(c)
		return
	}

	count, err := h.notifications.CountUnseenGeneral(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.CountResponse{Count: count}))
}

func (h *NotificationHandler) MarkSeen(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		respondUnauthorized(c)
		return
	}

	var req httpdto.MarkSeenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request")
		return
	}

	ids, err := parseUUIDs(req.IDs)
	if err != nil {
		respondBadRequest(c, "invalid notification id")
		return
	}

	if err := h.notifications.MarkSeen(c.Request.Context(), userID, ids); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"seen": true}))
}

func (h *NotificationHandler) UnseenChat(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		respondUnauthorized(c)
		return
	}

	ids, err := h.unseen.UnseenConversations(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := httpdto.UnseenChatResponse{ConversationIDs: make([]string, 0, len(ids))}
	for _, id := range ids {
		resp.ConversationIDs = append(resp.ConversationIDs, id.String())
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(resp))
}

// AcknowledgeChat deletes the caller's pending markers for the given
// messages. Always 200, repeated calls included.
func (h *NotificationHandler) AcknowledgeChat(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		respondUnauthorized(c)
		return
	}

	var req httpdto.AcknowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request")
		return
	}

	ids, err := parseUUIDs(req.MessageIDs)
	if err != nil {
		respondBadRequest(c, "invalid message id")
		return
	}

	if err := h.unseen.Acknowledge(c.Request.Context(), userID, ids); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"acknowledged": true}))
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

package httpdto

import (
	"mingle-server/internal/services"
)

// NotificationDTO represents a general notification in API responses.
type NotificationDTO struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Actor      UserDTO `json:"actor"`
	SourceType string  `json:"sourceType"`
	SourceID   string  `json:"sourceId"`
	Seen       bool    `json:"seen"`
	CreatedAt  string  `json:"createdAt"`
}

// MarkSeenRequest is used for PUT /api/notifications/seen
type MarkSeenRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// AcknowledgeRequest is used for PUT /api/notifications/chat
type AcknowledgeRequest struct {
	MessageIDs []string `json:"messageIds" binding:"required"`
}

// UnseenChatResponse lists conversations with pending messages.
type UnseenChatResponse struct {
	ConversationIDs []string `json:"conversationIds"`
}

// CountResponse wraps a single count value.
type CountResponse struct {
	Count int64 `json:"count"`
}

// FromNotificationView converts a service view to NotificationDTO. It reads
// the view's wire payload so the HTTP and socket shapes stay identical.
func FromNotificationView(v services.NotificationView) NotificationDTO {
	p := v.Payload()
	return NotificationDTO{
		ID:   p.ID,
		Type: p.Type,
		Actor: UserDTO{
			ID:        p.Actor.ID,
			FirstName: p.Actor.FirstName,
			LastName:  p.Actor.LastName,
			Avatar:    p.Actor.Avatar,
		},
		SourceType: p.SourceType,
		SourceID:   p.SourceID,
		Seen:       p.Seen,
		CreatedAt:  p.CreatedAt,
	}
}

// FromNotificationViewSlice converts service views to NotificationDTO slice.
func FromNotificationViewSlice(views []services.NotificationView) []NotificationDTO {
	dtos := make([]NotificationDTO, len(views))
	for i, v := range views {
		dtos[i] = FromNotificationView(v)
	}
	return dtos
}

package httpdto

import (
	"time"

	"mingle-server/internal/services"
)

// CreateGroupRequest is used for POST /api/chat
type CreateGroupRequest struct {
	Title        string   `json:"title"`
	Participants []string `json:"participants" binding:"required"`
}

// MembersResponse is returned for GET /api/chat/members/:conversationId
type MembersResponse struct {
	ConversationID string    `json:"conversationId"`
	CreatorID      string    `json:"creatorId,omitempty"`
	Participants   []UserDTO `json:"participants"`
}

// FileDTO represents an attached file in API responses.
type FileDTO struct {
	URL  string `json:"url"`
	Kind string `json:"kind"`
}

// MessageDTO represents a message in API responses.
type MessageDTO struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	Sender         UserDTO   `json:"sender"`
	Text           string    `json:"text,omitempty"`
	Files          []FileDTO `json:"files,omitempty"`
	Seen           bool      `json:"seen"`
	CreatedAt      string    `json:"createdAt"`
}

// ConversationDTO represents a conversation summary in API responses.
type ConversationDTO struct {
	ID           string      `json:"id"`
	Title        string      `json:"title,omitempty"`
	CreatorID    string      `json:"creatorId,omitempty"`
	Direct       bool        `json:"direct"`
	Participants []UserDTO   `json:"participants"`
	LastMessage  *MessageDTO `json:"lastMessage,omitempty"`
	UnseenCount  int64       `json:"unseenCount"`
	CreatedAt    string      `json:"createdAt"`
}

// FromMessageView converts a service message view to MessageDTO.
func FromMessageView(v services.MessageView) MessageDTO {
	dto := MessageDTO{
		ID:             v.Message.ID.String(),
		ConversationID: v.Message.ConversationID.String(),
		Sender:         FromUser(v.Sender),
		Seen:           v.Seen,
		CreatedAt:      v.Message.CreatedAt.Format(time.RFC3339),
	}
	if v.Message.Text.Valid {
		dto.Text = v.Message.Text.String
	}
	for _, f := range v.Message.Files {
		dto.Files = append(dto.Files, FileDTO{URL: f.URL, Kind: string(f.Kind)})
	}
	return dto
}

// FromMessageViewSlice converts service message views to MessageDTO slice.
func FromMessageViewSlice(views []services.MessageView) []MessageDTO {
	dtos := make([]MessageDTO, len(views))
	for i, v := range views {
		dtos[i] = FromMessageView(v)
	}
	return dtos
}

// FromConversationSummary converts a service summary to ConversationDTO.
func FromConversationSummary(s services.ConversationSummary) ConversationDTO {
	dto := ConversationDTO{
		ID:           s.Conversation.ID.String(),
		Direct:       s.Conversation.IsDirect(),
		Participants: FromUserSlice(s.Participants),
		UnseenCount:  s.UnseenCount,
		CreatedAt:    s.Conversation.CreatedAt.Format(time.RFC3339),
	}
	if s.Conversation.Title.Valid {
		dto.Title = s.Conversation.Title.String
	}
	if s.Conversation.CreatorID.Valid {
		dto.CreatorID = s.Conversation.CreatorID.UUID.String()
	}
	if s.LastMessage != nil {
		msg := FromMessageView(*s.LastMessage)
		dto.LastMessage = &msg
	}
	return dto
}

// FromConversationSummarySlice converts service summaries to ConversationDTO slice.
func FromConversationSummarySlice(summaries []services.ConversationSummary) []ConversationDTO {
	dtos := make([]ConversationDTO, len(summaries))
	for i, s := range summaries {
		dtos[i] = FromConversationSummary(s)
	}
	return dtos
}

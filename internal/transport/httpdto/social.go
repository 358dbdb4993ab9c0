package httpdto

import (
	"time"

	"mingle-server/internal/domain/social"
)

// CreateCommentRequest is used for POST /api/comments/:postId
type CreateCommentRequest struct {
	Text    string `json:"text" binding:"required"`
	ReplyTo string `json:"replyTo,omitempty"`
}

// CommentDTO represents a comment in API responses.
type CommentDTO struct {
	ID        string `json:"id"`
	PostID    string `json:"postId"`
	UserID    string `json:"userId"`
	Text      string `json:"text"`
	ReplyTo   string `json:"replyTo,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// FromComment converts a domain comment to CommentDTO.
func FromComment(c social.Comment) CommentDTO {
	dto := CommentDTO{
		ID:        c.ID.String(),
		PostID:    c.PostID.String(),
		UserID:    c.UserID.String(),
		Text:      c.Text,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
	if c.ReplyTo.Valid {
		dto.ReplyTo = c.ReplyTo.UUID.String()
	}
	return dto
}

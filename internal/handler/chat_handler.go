package handler

import (
	"net/http"

	"mingle-server/internal/services"
	"mingle-server/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChatHandler struct {
	conversations *services.ConversationService
	messages      *services.MessageService
	media         *services.MediaService
}

func NewChatHandler(conversations *services.ConversationService, messages *services.MessageService, media *services.MediaService) *ChatHandler {
	return &ChatHandler{conversations: conversations, messages: messages, media: media}
}

func (h *ChatHandler) ListConversations(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		respondUnauthorized(c)
		return
	}

	summaries, err := h.conversations.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromConversationSummarySlice(summaries)))
}

func (h *ChatHandler) ListMessages(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		respondUnauthorized(c)
		return
	}
	conversationID, err := uuid.Parse(c.Param("conversationId"))
	if err != nil {
		respondBadRequest(c, "invalid conversation id")
		return
	}

	views, err := h.messages.ListForConversation(c.Request.Context(), conversationID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromMessageViewSlice(views)))
}

func (h *ChatHandler) CreateGroup(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		respondUnauthorized(c)
		return
	}

	var req httpdto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request")
		return
	}

	participantIDs := make([]uuid.UUID, 0, len(req.Participants))
	for _, idStr := range req.Participants {
		id, err := uuid.Parse(idStr)
		if err != nil {
			respondBadRequest(c, "invalid participant id")
			return
		}
		participantIDs = append(participantIDs, id)
	}

	conv, err := h.conversations.CreateGroup(c.Request.Context(), userID, participantIDs, req.Title)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"id": conv.ID.String()}))
}

func (h *ChatHandler) FindOrCreateDirect(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		respondUnauthorized(c)
		return
	}
	otherID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		respondBadRequest(c, "invalid user id")
		return
	}

	conv, err := h.conversations.FindOrCreateDirect(c.Request.Context(), userID, otherID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"id": conv.ID.String()}))
}

// SendMessage accepts a multipart form with a text field and zero or more
// file parts. The response body stays empty on success.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		respondUnauthorized(c)
		return
	}
	conversationID, err := uuid.Parse(c.Param("conversationId"))
	if err != nil {
		respondBadRequest(c, "invalid conversation id")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondBadRequest(c, "invalid multipart form")
		return
	}

	text := c.PostForm("text")
	var files []services.FilePointer
	if headers := form.File["files"]; len(headers) > 0 {
		files, err = h.media.UploadAll(c.Request.Context(), userID, headers)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	if _, err := h.messages.Append(c.Request.Context(), conversationID, userID, text, files); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

func (h *ChatHandler) Members(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		respondUnauthorized(c)
		return
	}
	conversationID, err := uuid.Parse(c.Param("conversationId"))
	if err != nil {
		respondBadRequest(c, "invalid conversation id")
		return
	}

	conv, members, err := h.conversations.Members(c.Request.Context(), conversationID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := httpdto.MembersResponse{
		ConversationID: conv.ID.String(),
		Participants:   httpdto.FromUserSlice(members),
	}
	if conv.CreatorID.Valid {
		resp.CreatorID = conv.CreatorID.UUID.String()
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(resp))
}

func (h *ChatHandler) AddMember(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		respondUnauthorized(c)
		return
	}
	conversationID, err := uuid.Parse(c.Param("conversationId"))
	if err != nil {
		respondBadRequest(c, "invalid conversation id")
		return
	}
	newUserID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		respondBadRequest(c, "invalid user id")
		return
	}

	if err := h.conversations.AddParticipant(c.Request.Context(), conversationID, userID, newUserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"added": true}))
}

func (h *ChatHandler) RemoveMember(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		respondUnauthorized(c)
		return
	}
	conversationID, err := uuid.Parse(c.Param("conversationId"))
	if err != nil {
		respondBadRequest(c, "invalid conversation id")
		return
	}
	memberID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		respondBadRequest(c, "invalid user id")
		return
	}

	if err := h.conversations.RemoveParticipant(c.Request.Context(), conversationID, userID, memberID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"removed": true}))
}

package handler

import (
	"net/http"

	"mingle-server/internal/services"
	"mingle-server/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SocialHandler struct {
	social *services.SocialService
}

func NewSocialHandler(social *services.SocialService) *SocialHandler {
	return &SocialHandler{social: social}
}

func (h *SocialHandler) Like(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		respondUnauthorized(c)
		return
	}
	postID, err := uuid.Parse(c.Param("postId"))
	if err != nil {
		respondBadRequest(c, "invalid post id")
		return
	}

	if err := h.social.LikePost(c.Request.Context(), userID, postID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"liked": true}))
}

func (h *SocialHandler) Unlike(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		respondUnauthorized(c)
		return
	}
	postID, err := uuid.Parse(c.Param("postId"))
	if err != nil {
		respondBadRequest(c, "invalid post id")
		return
	}

	if err := h.social.UnlikePost(c.Request.Context(), userID, postID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"liked": false}))
}

func (h *SocialHandler) Comment(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		respondUnauthorized(c)
		return
	}
	postID, err := uuid.Parse(c.Param("postId"))
	if err != nil {
		respondBadRequest(c, "invalid post id")
		return
	}

	var req httpdto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request")
		return
	}

	var replyTo *uuid.UUID
	if req.ReplyTo != "" {
		id, err := uuid.Parse(req.ReplyTo)
		if err != nil {
			respondBadRequest(c, "invalid reply target")
			return
		}
		replyTo = &id
	}

	comment, err := h.social.Comment(c.Request.Context(), userID, postID, req.Text, replyTo)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromComment(comment)))
}

func (h *SocialHandler) DeleteComment(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		respondUnauthorized(c)
		return
	}
	commentID, err := uuid.Parse(c.Param("commentId"))
	if err != nil {
		respondBadRequest(c, "invalid comment id")
		return
	}

	if err := h.social.DeleteComment(c.Request.Context(), userID, commentID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"deleted": true}))
}

func (h *SocialHandler) Follow(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		respondUnauthorized(c)
		return
	}
	targetID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		respondBadRequest(c, "invalid user id")
		return
	}

	if err := h.social.Follow(c.Request.Context(), userID, targetID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"following": true}))
}

func (h *SocialHandler) Unfollow(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		respondUnauthorized(c)
		return
	}
	targetID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		respondBadRequest(c, "invalid user id")
		return
	}

	if err := h.social.Unfollow(c.Request.Context(), userID, targetID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"following": false}))
}

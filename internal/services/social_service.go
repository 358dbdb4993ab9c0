package services

import (
	"context"
	"errors"
	"time"

	"mingle-server/internal/domain/notification"
	"mingle-server/internal/domain/social"
	"mingle-server/internal/repository"
	mingle_errors "mingle-server/pkg/errors"
	"mingle-server/pkg/logger"

	"github.com/google/uuid"
)

// SocialService implements the like/comment/follow actions that drive the
// notification fan-out, and the deletion cascades that clean it up.
type SocialService struct {
	repo          repository.SocialRepository
	notifications *NotificationService
	log           *logger.Logger
}

func NewSocialService(repo repository.SocialRepository, notifications *NotificationService, log *logger.Logger) *SocialService {
	return &SocialService{repo: repo, notifications: notifications, log: log}
}

// LikePost records a like and notifies the post author unless they liked
// their own post.
func (s *SocialService) LikePost(ctx context.Context, userID, postID uuid.UUID) error {
	post, err := s.repo.GetPost(ctx, postID)
	if err != nil {
		return err
	}

	like := social.Like{ID: uuid.New(), PostID: postID, UserID: userID, CreatedAt: time.Now()}
	if err := s.repo.CreateLike(ctx, &like); err != nil {
		return err
	}

	return s.notifications.Notify(ctx, post.AuthorID, userID,
		notification.SourceRef{Type: notification.TypeLike, ID: like.ID})
}

// UnlikePost removes the like and cascades its notification away.
func (s *SocialService) UnlikePost(ctx context.Context, userID, postID uuid.UUID) error {
	like, err := s.repo.GetLike(ctx, postID, userID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteLike(ctx, like.ID); err != nil {
		return err
	}
	return s.notifications.CascadeDelete(ctx,
		notification.SourceRef{Type: notification.TypeLike, ID: like.ID})
}

// Comment creates a comment or reply. A root comment notifies the post
// author; a reply notifies the parent comment's author. Self-notifications
// are suppressed either way.
func (s *SocialService) Comment(ctx context.Context, userID, postID uuid.UUID, text string, replyTo *uuid.UUID) (social.Comment, error) {
	if text == "" {
		return social.Comment{}, mingle_errors.ErrInvalidInput
	}
	post, err := s.repo.GetPost(ctx, postID)
	if err != nil {
		return social.Comment{}, err
	}

	comment := social.Comment{
		ID:        uuid.New(),
		PostID:    postID,
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now(),
	}

	recipient := post.AuthorID
	kind := notification.TypeComment
	if replyTo != nil {
		parent, err := s.repo.GetComment(ctx, *replyTo)
		if err != nil {
			return social.Comment{}, err
		}
		comment.ReplyTo = uuid.NullUUID{UUID: parent.ID, Valid: true}
		recipient = parent.UserID
		kind = notification.TypeReply
	}

	if err := s.repo.CreateComment(ctx, &comment); err != nil {
		return social.Comment{}, err
	}

	if err := s.notifications.Notify(ctx, recipient, userID,
		notification.SourceRef{Type: kind, ID: comment.ID}); err != nil {
		s.log.Errorf("comment notification for %s: %v", comment.ID, err)
	}
	return comment, nil
}

// DeleteComment removes a comment, its reply subtree, and every notification
// referencing any comment in that subtree. Only the comment's author may
// delete it.
func (s *SocialService) DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error {
	comment, err := s.repo.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return mingle_errors.ErrForbidden
	}

	// Walk the reply tree breadth first; every level's ids join the doomed
	// set before their own replies are looked up.
	doomed := []uuid.UUID{commentID}
	frontier := []uuid.UUID{commentID}
	for len(frontier) > 0 {
		replies, err := s.repo.GetReplyIDs(ctx, frontier)
		if err != nil {
			return err
		}
		doomed = append(doomed, replies...)
		frontier = replies
	}

	refs := make([]notification.SourceRef, 0, 2*len(doomed))
	for _, id := range doomed {
		refs = append(refs,
			notification.SourceRef{Type: notification.TypeComment, ID: id},
			notification.SourceRef{Type: notification.TypeReply, ID: id},
		)
	}
	if err := s.notifications.CascadeDelete(ctx, refs...); err != nil {
		return err
	}
	return s.repo.DeleteComments(ctx, doomed)
}

// Follow records a follow edge and notifies the followed user.
func (s *SocialService) Follow(ctx context.Context, followerID, followingID uuid.UUID) error {
	if followerID == followingID {
		return mingle_errors.ErrInvalidInput
	}

	follow := social.Follow{
		ID:          uuid.New(),
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.CreateFollow(ctx, &follow); err != nil {
		if errors.Is(err, mingle_errors.ErrAlreadyExists) {
			return nil
		}
		return err
	}

	return s.notifications.Notify(ctx, followingID, followerID,
		notification.SourceRef{Type: notification.TypeFollow, ID: follow.ID})
}

// Unfollow removes the edge and cascades its notification away.
func (s *SocialService) Unfollow(ctx context.Context, followerID, followingID uuid.UUID) error {
	follow, err := s.repo.GetFollow(ctx, followerID, followingID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteFollow(ctx, follow.ID); err != nil {
		return err
	}
	return s.notifications.CascadeDelete(ctx,
		notification.SourceRef{Type: notification.TypeFollow, ID: follow.ID})
}

package repository

import (
	"context"
	"errors"

	"mingle-server/internal/domain/social"
	mingle_errors "mingle-server/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresSocialRepository struct {
	db *gorm.DB
}

func NewSocialRepository(db *gorm.DB) SocialRepository {
	return &PostgresSocialRepository{db: db}
}

func (r *PostgresSocialRepository) GetPost(ctx context.Context, id uuid.UUID) (social.Post, error) {
	var p social.Post
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return social.Post{}, mingle_errors.ErrNotFound
		}
		return social.Post{}, err
	}
	return p, nil
}

func (r *PostgresSocialRepository) CreateLike(ctx context.Context, l *social.Like) error {
	res := r.db.WithContext(ctx).Create(l)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return mingle_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresSocialRepository) GetLike(ctx context.Context, postID, userID uuid.UUID) (social.Like, error) {
	var l social.Like
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return social.Like{}, mingle_errors.ErrNotFound
		}
		return social.Like{}, err
	}
	return l, nil
}

func (r *PostgresSocialRepository) DeleteLike(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&social.Like{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return mingle_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresSocialRepository) CreateComment(ctx context.Context, c *social.Comment) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *PostgresSocialRepository) GetComment(ctx context.Context, id uuid.UUID) (social.Comment, error) {
	var c social.Comment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return social.Comment{}, mingle_errors.ErrNotFound
		}
		return social.Comment{}, err
	}
	return c, nil
}

// GetReplyIDs returns the ids of direct replies to any of the given comments.
func (r *PostgresSocialRepository) GetReplyIDs(ctx context.Context, parentIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&social.Comment{}).
		Where("reply_to IN ?", parentIDs).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *PostgresSocialRepository) DeleteComments(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&social.Comment{}).Error
}

func (r *PostgresSocialRepository) CreateFollow(ctx context.Context, f *social.Follow) error {
	res := r.db.WithContext(ctx).Create(f)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return mingle_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresSocialRepository) GetFollow(ctx context.Context, followerID, followingID uuid.UUID) (social.Follow, error) {
	var f social.Follow
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return social.Follow{}, mingle_errors.ErrNotFound
		}
		return social.Follow{}, err
	}
	return f, nil
}

func (r *PostgresSocialRepository) DeleteFollow(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&social.Follow{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return mingle_errors.ErrNotFound
	}
	return nil
}

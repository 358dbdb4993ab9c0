package social

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Post carries only what the notification fan-out needs to address likes and
// comments at: identity and authorship. The full post entity lives outside
// this service.
type Post struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time
}

// Like represents the likes table. One like per (post, user).
type Like struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_likes_post_user"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_likes_post_user"`
	CreatedAt time.Time
}

// Comment represents the comments table. ReplyTo links a reply to its parent
// comment; replies nest arbitrarily deep.
type Comment struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey"`
	PostID    uuid.UUID     `gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID     `gorm:"type:uuid;not null"`
	ReplyTo   uuid.NullUUID `gorm:"type:uuid;index"`
	Text      string        `gorm:"not null"`
	CreatedAt time.Time
	DeletedAt sql.NullTime `gorm:"index"`
}

// Follow represents the follows table. One edge per (follower, following).
type Follow struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	FollowerID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follows_edge"`
	FollowingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follows_edge"`
	CreatedAt   time.Time
}

func (Post) TableName() string    { return "posts" }
func (Like) TableName() string    { return "likes" }
func (Comment) TableName() string { return "comments" }
func (Follow) TableName() string  { return "follows" }

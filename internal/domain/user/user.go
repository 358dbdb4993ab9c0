package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// User is the profile subset this service reads for decoration. Account
// management and authentication live in the identity provider.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	FirstName string
	LastName  string
	Avatar    sql.NullString
	CreatedAt time.Time
}

func (User) TableName() string {
	return "users"
}

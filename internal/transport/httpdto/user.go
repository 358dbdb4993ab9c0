package httpdto

import (
	"mingle-server/internal/domain/user"
)

// UserDTO represents a user profile in API responses.
type UserDTO struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Avatar    string `json:"avatar,omitempty"`
}

// FromUser converts a domain user to UserDTO.
func FromUser(u user.User) UserDTO {
	dto := UserDTO{
		ID:        u.ID.String(),
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
	if u.Avatar.Valid {
		dto.Avatar = u.Avatar.String
	}
	return dto
}

// FromUserSlice converts a slice of domain users to UserDTO slice.
func FromUserSlice(users []user.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = FromUser(u)
	}
	return dtos
}

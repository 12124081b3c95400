package proto

import "time"

// User is an authenticated user.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL *string   `json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserSummary is the public part of a user embedded in other records.
type UserSummary struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email,omitempty"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatarUrl"`
}

// Summary returns the public part of u.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, Name: u.Name, AvatarURL: u.AvatarURL}
}

// UpdateUserInput updates the caller's profile.
type UpdateUserInput struct {
	Name      *string `json:"name" validate:"omitnil,min=1,max=100"`
	AvatarURL *string `json:"avatarUrl" validate:"omitnil,url"`
}

// Session is a signed in device of a user.
type Session struct {
	ID        string    `json:"id"`
	UserAgent string    `json:"userAgent"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

package models

import (
	"strings"
	"time"
)

type User struct {
	ID        string    `json:"_id" gorm:"primaryKey;size:191"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null;size:191"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null;size:191"`
	Image     string    `json:"image" gorm:"size:500"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BaseNameFromProfile derives the display name for a new account: the
// provider name lowercased and reduced to [a-z0-9], or the email local
// part when that leaves nothing.
func BaseNameFromProfile(profileName, email string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(profileName) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() > 0 {
		return b.String()
	}

	local, _, _ := strings.Cut(email, "@")
	return strings.ToLower(local)
}

// UserProfileResponse is returned by the profile endpoint.
type UserProfileResponse struct {
	User       User             `json:"user"`
	Prompts    []PromptResponse `json:"prompts"`
	Pagination Pagination       `json:"pagination"`
}

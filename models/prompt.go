package models

import (
	"time"
)

// Prompt is a user-authored, taggable text post.
type Prompt struct {
	ID        string    `json:"id" gorm:"primaryKey;size:191"`
	CreatorID string    `json:"creator_id" gorm:"not null;size:191;index:idx_prompts_creator_created,priority:1"`
	Body      string    `json:"prompt" gorm:"column:prompt;type:text;not null"`
	Views     int       `json:"views" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_prompts_creator_created,priority:2"`
	UpdatedAt time.Time `json:"updated_at"`

	Creator User         `json:"creator" gorm:"foreignKey:CreatorID"`
	Tags    []PromptTag  `json:"tags" gorm:"foreignKey:PromptID"`
	Likes   []PromptLike `json:"likes" gorm:"foreignKey:PromptID"`
}

// PromptTag keeps the ordered tag sequence of a prompt.
type PromptTag struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	PromptID string `json:"prompt_id" gorm:"not null;size:191;index"`
	Position int    `json:"position" gorm:"not null"`
	Tag      string `json:"tag" gorm:"not null;size:191;index"`
}

// PromptLike is one membership of the liked-by set. The unique index
// guarantees a user appears at most once per prompt.
type PromptLike struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PromptID  string    `json:"prompt_id" gorm:"not null;size:191;uniqueIndex:uk_prompt_likes_prompt_user,priority:1"`
	UserID    string    `json:"user_id" gorm:"not null;size:191;uniqueIndex:uk_prompt_likes_prompt_user,priority:2;index"`
	CreatedAt time.Time `json:"created_at"`
}

// TagList returns the tags in their stored order.
func (p *Prompt) TagList() []string {
	tags := make([]string, len(p.Tags))
	placed := make([]bool, len(p.Tags))
	for _, t := range p.Tags {
		if t.Position >= 0 && t.Position < len(tags) && !placed[t.Position] {
			tags[t.Position] = t.Tag
			placed[t.Position] = true
		}
	}
	// Fall back to load order if positions are not a dense 0..n-1 range.
	for _, ok := range placed {
		if !ok {
			tags = tags[:0]
			for _, t := range p.Tags {
				tags = append(tags, t.Tag)
			}
			break
		}
	}
	return tags
}

// LikerIDs returns the ids of users who liked the prompt.
func (p *Prompt) LikerIDs() []string {
	ids := make([]string, 0, len(p.Likes))
	for _, l := range p.Likes {
		ids = append(ids, l.UserID)
	}
	return ids
}

// CreatorResponse is the populated creator reference.
type CreatorResponse struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image"`
}

// PromptResponse is the wire shape of a prompt.
type PromptResponse struct {
	ID        string           `json:"_id"`
	Prompt    string           `json:"prompt"`
	Tag       []string         `json:"tag"`
	Creator   *CreatorResponse `json:"creator"`
	Likes     []string         `json:"likes"`
	Views     int              `json:"views"`
	CreatedAt time.Time        `json:"createdAt"`
}

// ToResponse converts a loaded prompt to its wire shape.
func (p *Prompt) ToResponse() PromptResponse {
	resp := PromptResponse{
		ID:        p.ID,
		Prompt:    p.Body,
		Tag:       p.TagList(),
		Likes:     p.LikerIDs(),
		Views:     p.Views,
		CreatedAt: p.CreatedAt,
	}
	if p.Creator.ID != "" {
		resp.Creator = &CreatorResponse{
			ID:    p.Creator.ID,
			Name:  p.Creator.Name,
			Email: p.Creator.Email,
			Image: p.Creator.Image,
		}
	}
	return resp
}

// Pagination describes one page of a filtered listing.
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// PromptPage is a paginated list of prompts.
type PromptPage struct {
	Prompts    []PromptResponse `json:"prompts"`
	Pagination Pagination       `json:"pagination"`
}

// LikeResponse is the canonical state returned after a like toggle.
type LikeResponse struct {
	Likes      []string `json:"likes"`
	LikesCount int      `json:"likesCount"`
	HasLiked   bool     `json:"hasLiked"`
}

// ViewResponse carries the post-increment view count.
type ViewResponse struct {
	Views int `json:"views"`
}

// PromptRequest is the body of create and edit requests.
type PromptRequest struct {
	Prompt string   `json:"prompt"`
	Tag    []string `json:"tag"`
}

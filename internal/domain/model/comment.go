package model

import (
	"time"
)

const MaxCommentLength = 1000

type Comment struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Content   string    `json:"content"` // Mirrors Text for the SPA
	ArticleID int64     `json:"articleId"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	User    *UserSummary    `json:"User,omitempty"`
	Article *ArticleSummary `json:"Article,omitempty"`
}

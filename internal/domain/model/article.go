package model

import (
	"time"
)

const (
	DefaultArticleImageURL = "/images/default-article.jpg"
	DefaultArticleCategory = "Путешествия"
	DefaultReadTime        = 5
	MaxTitleLength         = 200
	ExcerptLength          = 200
	MaxExcerptLength       = 500
	MinReadTime            = 1
	MaxReadTime            = 60
)

type Article struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Content   string    `json:"content"`
	Excerpt   string    `json:"excerpt"`
	ImageURL  string    `json:"imageUrl"`
	Category  string    `json:"category"`
	ReadTime  int       `json:"readTime"`
	Views     int64     `json:"views"`
	Likes     int64     `json:"likes"`
	AuthorID  int64     `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Author        *UserSummary `json:"User,omitempty"`
	CommentsCount *int         `json:"commentsCount,omitempty"` // Admin listing only
}

// ArticleDetail is a single article together with its comments.
type ArticleDetail struct {
	Article
	Comments []Comment `json:"Comments"`
}

// ArticleSummary is the article block embedded in the admin comment list.
type ArticleSummary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type ArticleFilter struct {
	Category string // empty means all categories
	Limit    int
	Offset   int
}

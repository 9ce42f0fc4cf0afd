package models

import "strings"

// AnonymousAuthor is shown when a post or comment has no author name.
const AnonymousAuthor = "Anonymous"

type Author struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type Post struct {
	ID            int64   `json:"id"`
	Content       string  `json:"content"`
	AuthorID      int64   `json:"author_id"`
	Author        *Author `json:"author,omitempty"`
	AuthorName    string  `json:"author_name,omitempty"`
	Region        string  `json:"region,omitempty"`
	Crop          string  `json:"crop,omitempty"`
	Category      string  `json:"category,omitempty"`
	LikesCount    *int    `json:"likes_count"`
	CommentsCount *int    `json:"comments_count"`
	ImageURL      string  `json:"image_url,omitempty"`
	CreatedAt     string  `json:"created_at,omitempty"`
	IsLiked       bool    `json:"is_liked"`
}

// Normalize zero-fills counters and resolves the author name.
func (p *Post) Normalize() {
	if p.LikesCount == nil {
		p.LikesCount = new(int)
	}
	if p.CommentsCount == nil {
		p.CommentsCount = new(int)
	}
	if strings.TrimSpace(p.AuthorName) == "" && p.Author != nil {
		p.AuthorName = p.Author.Name
	}
	if strings.TrimSpace(p.AuthorName) == "" {
		p.AuthorName = AnonymousAuthor
	}
}

// Likes returns the like counter, zero when unknown.
func (p *Post) Likes() int {
	if p.LikesCount == nil {
		return 0
	}
	return *p.LikesCount
}

// Comments returns the comment counter, zero when unknown.
func (p *Post) Comments() int {
	if p.CommentsCount == nil {
		return 0
	}
	return *p.CommentsCount
}

type Comment struct {
	ID         int64  `json:"id"`
	PostID     int64  `json:"post_id"`
	UserID     int64  `json:"user_id"`
	AuthorName string `json:"author_name,omitempty"`
	Content    string `json:"content"`
	CreatedAt  string `json:"created_at,omitempty"`
}

func (c *Comment) Normalize() {
	if strings.TrimSpace(c.AuthorName) == "" {
		c.AuthorName = AnonymousAuthor
	}
}

type Contributor struct {
	UserID     int64  `json:"user_id"`
	Name       string `json:"name"`
	PostsCount int    `json:"posts_count"`
}

// LikeResult is returned by POST /community/posts/{id}/like.
type LikeResult struct {
	PostID     int64 `json:"post_id"`
	LikesCount int   `json:"likes_count"`
	IsLiked    bool  `json:"is_liked"`
}

// UploadResult is returned by POST /community/upload-image.
type UploadResult struct {
	URL string `json:"url"`
}

// PostCreate is the body of POST /community/posts.
type PostCreate struct {
	Content  string `json:"content" validate:"required,max=5000"`
	Region   string `json:"region,omitempty" validate:"omitempty,max=100"`
	Crop     string `json:"crop,omitempty" validate:"omitempty,max=50"`
	Category string `json:"category,omitempty" validate:"omitempty,max=50"`
	ImageURL string `json:"image_url,omitempty" validate:"omitempty,max=500"`
}

// PostUpdate is the body of PUT /community/posts/{id}.
type PostUpdate struct {
	Content  string `json:"content" validate:"required,max=5000"`
	Crop     string `json:"crop,omitempty" validate:"omitempty,max=50"`
	Category string `json:"category,omitempty" validate:"omitempty,max=50"`
	ImageURL string `json:"image_url,omitempty" validate:"omitempty,max=500"`
}

// CommentCreate is the body of POST /community/posts/{id}/comments.
type CommentCreate struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// PostFilter narrows GET /community/posts.
type PostFilter struct {
	Skip     int
	Limit    int
	Crop     string
	Category string
}

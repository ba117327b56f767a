package models

import "time"

// Post represents a blog post.
type Post struct {
	ID        string    `json:"id" bson:"_id"`
	Title     string    `json:"title" bson:"title"`
	Content   string    `json:"content" bson:"content"`
	ImageKey  *string   `json:"imageKey,omitempty" bson:"imageKey,omitempty"`
	AuthorID  string    `json:"authorId" bson:"authorId"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Comment represents a comment on a blog post.
type Comment struct {
	ID        string    `json:"id" bson:"_id"`
	PostID    string    `json:"postId" bson:"postId"`
	Content   string    `json:"content" bson:"content"`
	AuthorID  string    `json:"authorId" bson:"authorId"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// CreatePostInput is a validated request to create a post.
type CreatePostInput struct {
	Title    string  `json:"title" validate:"required,max=200"`
	Content  string  `json:"content" validate:"required"`
	ImageKey *string `json:"imageKey,omitempty" validate:"-"`
}

// PostPatch holds the fields of a partial post update. Nil fields are left unchanged.
type PostPatch struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	ImageKey *string `json:"imageKey,omitempty"`
}

// CreateCommentInput is a validated request to create a comment.
type CreateCommentInput struct {
	Content string `json:"content" validate:"required"`
}

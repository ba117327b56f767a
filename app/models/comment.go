package models

import "time"

// NewComment builds a comment on the post with the given ID.
func NewComment(id, postID string, input CreateCommentInput, authorID string, now time.Time) *Comment {
	return &Comment{
		ID:        id,
		PostID:    postID,
		Content:   input.Content,
		AuthorID:  authorID,
		CreatedAt: now,
	}
}

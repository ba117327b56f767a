package models

import "time"

// NewPost builds a post from validated input. The author and both timestamps
// are fixed here; UpdatedAt starts equal to CreatedAt.
func NewPost(id string, input CreatePostInput, authorID string, now time.Time) *Post {
	return &Post{
		ID:        id,
		Title:     input.Title,
		Content:   input.Content,
		ImageKey:  input.ImageKey,
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Apply copies the fields present in patch onto the post and refreshes
// UpdatedAt. ID, AuthorID and CreatedAt are never touched.
func (p *Post) Apply(patch PostPatch, now time.Time) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.ImageKey != nil {
		key := *patch.ImageKey
		p.ImageKey = &key
	}
	p.UpdatedAt = now
}

// IsEmpty reports whether the patch changes no field.
func (p PostPatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.ImageKey == nil
}

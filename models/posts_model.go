package models

import (
	"time"

	"github.com/google/uuid"
)

// TitleMaxLength matches the width of the posts.title column.
const TitleMaxLength = 200

type Post struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreatePostInput is the body accepted by POST /posts.
type CreatePostInput struct {
	Title     string `json:"title" validate:"required,max=200"`
	Content   string `json:"content" validate:"required"`
	Author    string `json:"author" validate:"required"`
	Published *bool  `json:"published,omitempty"`
}

// UpdatePostInput is the body accepted by PATCH /posts/{id}. Nil fields are left untouched.
type UpdatePostInput struct {
	Title     *string `json:"title,omitempty" validate:"omitnil,min=1,max=200"`
	Content   *string `json:"content,omitempty" validate:"omitnil,min=1"`
	Author    *string `json:"author,omitempty" validate:"omitnil,min=1"`
	Published *bool   `json:"published,omitempty"`
}

// Apply copies the provided fields onto post.
func (in UpdatePostInput) Apply(post *Post) {
	if in.Title != nil {
		post.Title = *in.Title
	}
	if in.Content != nil {
		post.Content = *in.Content
	}
	if in.Author != nil {
		post.Author = *in.Author
	}
	if in.Published != nil {
		post.Published = *in.Published
	}
}

package models

import (
	"time"

	"github.com/gofrs/uuid"
)

type Post struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Published time.Time `json:"published"`
	Link      string    `json:"link"`
}

// Comment is the stored form of a reader note attached to a single post.
type Comment struct {
	ID           uuid.UUID `bson:"_id" json:"id"`
	PostID       uuid.UUID `bson:"post_id" json:"post_id"`
	Content      string    `bson:"content" json:"content"`
	Author       string    `bson:"author" json:"author"`
	CreationDate time.Time `bson:"creation_date" json:"creation_date"`
}

type CommentDTO struct {
	ID           uuid.UUID `json:"id"`
	Content      string    `json:"content"`
	Author       string    `json:"author"`
	CreationDate time.Time `json:"creationDate"`
}

type NewCommentDTO struct {
	Content string `json:"content"`
	Author  string `json:"author"`
}

// DTO maps the stored comment to its external shape.
func (c Comment) DTO() CommentDTO {
	return CommentDTO{
		ID:           c.ID,
		Content:      c.Content,
		Author:       c.Author,
		CreationDate: c.CreationDate,
	}
}

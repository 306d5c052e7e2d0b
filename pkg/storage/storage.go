package storage

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"

	"blogcomments/pkg/models"
)

var (
	ErrConnectDB       = fmt.Errorf("unable to establish DB connection")
	ErrDBNotResponding = fmt.Errorf("DB not responding")

	ErrPostNotFound    = fmt.Errorf("post not found")
	ErrUnsupportedSort = fmt.Errorf("unsupported sort field")
)

// CommentStore persists comments and lists them per post.
type CommentStore interface {
	// Save inserts a new comment and returns it with the store-assigned ID. A zero
	// CreationDate is set to the insert time.
	Save(ctx context.Context, comment models.Comment) (models.Comment, error)
	// FindAllByPostID returns every comment of the post in the requested order.
	// No match yields an empty slice and a nil error.
	FindAllByPostID(ctx context.Context, postID uuid.UUID, sort Sort) ([]models.Comment, error)
}

// PostStore is the existence check the comment service needs from the post subsystem.
// Post returns ErrPostNotFound when there is no post with the given id.
type PostStore interface {
	Post(ctx context.Context, id uuid.UUID) (models.Post, error)
}

const FieldCreationDate = "creation_date"

type Sort struct {
	Field      string
	Descending bool
}

// ByCreationDateDesc lists the most recent comments first.
var ByCreationDateDesc = Sort{Field: FieldCreationDate, Descending: true}

func (s Sort) Validate() error {
	if s.Field != FieldCreationDate {
		return fmt.Errorf("%w: %q", ErrUnsupportedSort, s.Field)
	}
	return nil
}

func (s Sort) String() string {
	if s.Descending {
		return s.Field + " DESC"
	}
	return s.Field + " ASC"
}

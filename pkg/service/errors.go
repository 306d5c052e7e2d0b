package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is the single domain error of the service. Callers match it with
	// errors.Is; the wrapped variants below tell the causes apart.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPostNotFound: the referenced post does not exist.
	ErrPostNotFound = fmt.Errorf("%w: post not found", ErrInvalidArgument)
	// ErrNoComments: the post exists but has no comments.
	ErrNoComments = fmt.Errorf("%w: post has no comments", ErrInvalidArgument)

	// ErrInvalidComment wraps a field validation failure from models.NewComment.
	ErrInvalidComment = errors.New("invalid comment")
)

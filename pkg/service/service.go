// Package service holds the comment rules: the target post must exist, listings are most
// recent first, and an empty listing is reported as ErrInvalidArgument.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	log "github.com/sirupsen/logrus"

	"blogcomments/pkg/models"
	"blogcomments/pkg/storage"
)

type Service struct {
	comments storage.CommentStore
	posts    storage.PostStore
	now      func() time.Time
}

type Option func(*Service)

// WithClock replaces the clock used to stamp new comments.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(comments storage.CommentStore, posts storage.PostStore, opts ...Option) *Service {
	s := Service{
		comments: comments,
		posts:    posts,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}

	return &s
}

// CommentsForPost returns the comments of a post, most recent first.
//
// A missing post and a post without comments both yield ErrInvalidArgument (as
// ErrPostNotFound and ErrNoComments respectively). Store errors are returned unchanged.
func (s *Service) CommentsForPost(ctx context.Context, postID uuid.UUID) ([]models.CommentDTO, error) {
	exists, err := s.postExists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !exists {
		log.Debugf("[CommentsForPost] post %v not found", postID)
		return nil, ErrPostNotFound
	}

	comments, err := s.comments.FindAllByPostID(ctx, postID, storage.ByCreationDateDesc)
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		log.Debugf("[CommentsForPost] post %v has no comments", postID)
		return nil, ErrNoComments
	}

	dtos := make([]models.CommentDTO, 0, len(comments))
	for _, c := range comments {
		dtos = append(dtos, c.DTO())
	}

	return dtos, nil
}

// AddComment stores a new comment for the post and returns its identifier. The creation
// date is taken from the service clock at call time, in UTC.
//
// Returns ErrPostNotFound (an ErrInvalidArgument) if the post does not exist, including
// when it disappears between the check and the insert, and ErrInvalidComment if the
// payload breaks the field constraints. Nothing is persisted in either case.
func (s *Service) AddComment(ctx context.Context, postID uuid.UUID, dto models.NewCommentDTO) (uuid.UUID, error) {
	exists, err := s.postExists(ctx, postID)
	if err != nil {
		return uuid.Nil, err
	}
	if !exists {
		return uuid.Nil, ErrPostNotFound
	}

	comment, err := models.NewComment(postID, dto.Content, dto.Author, s.now().UTC())
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrInvalidComment, err)
	}

	comment, err = s.comments.Save(ctx, comment)
	if err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return uuid.Nil, ErrPostNotFound
		}
		return uuid.Nil, err
	}

	log.Debugf("[AddComment] comment %v added to post %v", comment.ID, postID)
	return comment.ID, nil
}

func (s *Service) postExists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := s.posts.Post(ctx, id)
	if errors.Is(err, storage.ErrPostNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

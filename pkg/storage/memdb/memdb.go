package memdb

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/uuid"

	"blogcomments/pkg/models"
	"blogcomments/pkg/storage"
)

type record struct {
	comment models.Comment
	seq     uint64
}

// Store keeps posts and comments in process memory. It is used in dev mode and in tests.
type Store struct {
	mu       sync.Mutex
	seq      uint64
	posts    map[uuid.UUID]models.Post
	comments map[uuid.UUID][]record
}

func New() *Store {
	db := Store{
		posts:    make(map[uuid.UUID]models.Post),
		comments: make(map[uuid.UUID][]record),
	}

	return &db
}

// AddPost registers a post. An empty ID is derived from the post link as a UUIDv5.
func (db *Store) AddPost(ctx context.Context, post models.Post) (id uuid.UUID, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if post.ID == uuid.Nil {
		post.ID = uuid.NewV5(uuid.NamespaceURL, post.Link)
	}
	db.posts[post.ID] = post

	return post.ID, nil
}

func (db *Store) AddPosts(ctx context.Context, posts []models.Post) (err error) {
	for _, post := range posts {
		if _, err := db.AddPost(ctx, post); err != nil {
			return err
		}
	}

	return nil
}

func (db *Store) Post(ctx context.Context, id uuid.UUID) (post models.Post, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	post, ok := db.posts[id]
	if !ok {
		return models.Post{}, storage.ErrPostNotFound
	}

	return post, nil
}

func (db *Store) Save(ctx context.Context, comment models.Comment) (models.Comment, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return models.Comment{}, err
	}
	comment.ID = id

	if comment.CreationDate.IsZero() {
		comment.CreationDate = time.Now().UTC()
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	db.seq++
	db.comments[comment.PostID] = append(db.comments[comment.PostID], record{comment: comment, seq: db.seq})

	return comment, nil
}

// FindAllByPostID returns the post's comments sorted by creation date. Comments with equal
// dates keep insertion order in ascending listings and the reverse in descending ones.
func (db *Store) FindAllByPostID(ctx context.Context, postID uuid.UUID, s storage.Sort) ([]models.Comment, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	db.mu.Lock()
	records := make([]record, len(db.comments[postID]))
	copy(records, db.comments[postID])
	db.mu.Unlock()

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.comment.CreationDate.Equal(b.comment.CreationDate) {
			if s.Descending {
				return a.comment.CreationDate.After(b.comment.CreationDate)
			}
			return a.comment.CreationDate.Before(b.comment.CreationDate)
		}
		if s.Descending {
			return a.seq > b.seq
		}
		return a.seq < b.seq
	})

	comments := make([]models.Comment, 0, len(records))
	for _, r := range records {
		comments = append(comments, r.comment)
	}

	return comments, nil
}

// Count returns the number of stored comments across all posts.
func (db *Store) Count() int {
	db.mu.Lock()
	defer db.mu.Unlock()

	n := 0
	for _, c := range db.comments {
		n += len(c)
	}
	return n
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"blogcomments/pkg/models"
	"blogcomments/pkg/storage"
)

// foreignKeyViolation is the SQLSTATE raised when comments.post_id has no matching post.
const foreignKeyViolation = "23503"

type Store struct {
	db *pgxpool.Pool
}

func New(ctx context.Context, conStr string) (*Store, error) {
	db, err := pgxpool.Connect(ctx, conStr)
	if err != nil {
		return nil, err
	}
	s := Store{
		db: db,
	}

	return &s, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Store) Close() {
	s.db.Close()
}

// Save inserts a comment with a fresh UUIDv4. The foreign key on post_id makes the insert
// fail if the post was removed after the caller checked it; that case is reported as
// storage.ErrPostNotFound.
func (s *Store) Save(ctx context.Context, comment models.Comment) (models.Comment, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return models.Comment{}, err
	}
	comment.ID = id

	if comment.CreationDate.IsZero() {
		comment.CreationDate = time.Now().UTC()
	}

	err = s.db.QueryRow(ctx, `
		INSERT INTO comments (id, post_id, content, author, creation_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING creation_date
	`,
		comment.ID,
		comment.PostID,
		comment.Content,
		comment.Author,
		comment.CreationDate,
	).Scan(&comment.CreationDate)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return models.Comment{}, storage.ErrPostNotFound
		}
		return models.Comment{}, err
	}

	comment.CreationDate = comment.CreationDate.UTC()
	return comment, nil
}

// FindAllByPostID returns the post's comments ordered by the requested sort. Equal dates
// are ordered by id in the same direction. The (post_id, creation_date DESC) index serves
// both directions.
func (s *Store) FindAllByPostID(ctx context.Context, postID uuid.UUID, sort storage.Sort) ([]models.Comment, error) {
	if err := sort.Validate(); err != nil {
		return nil, err
	}

	// sort was validated above, so only known column names reach the query.
	rows, err := s.db.Query(ctx, fmt.Sprintf(`
		SELECT id, post_id, content, author, creation_date
		FROM comments
		WHERE post_id = $1
		ORDER BY %s, id %s
	`, sort, direction(sort)),
		postID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		err := rows.Scan(
			&c.ID,
			&c.PostID,
			&c.Content,
			&c.Author,
			&c.CreationDate)
		if err != nil {
			return nil, err
		}
		c.CreationDate = c.CreationDate.UTC()
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return comments, nil
}

// AddPost inserts a single post or updates it if a post with the same ID already exists.
// An empty ID is generated as a UUIDv5 based on the post's Link.
func (s *Store) AddPost(ctx context.Context, post models.Post) (id uuid.UUID, err error) {
	if post.ID == uuid.Nil {
		post.ID = uuid.NewV5(uuid.NamespaceURL, post.Link)
	}
	err = s.db.QueryRow(ctx, `
		INSERT INTO posts (id, title, content, published, link)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id)
		DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			published = EXCLUDED.published,
			link = EXCLUDED.link
		RETURNING id
	`,
		post.ID,
		post.Title,
		post.Content,
		post.Published,
		post.Link,
	).Scan(&id)

	return
}

// Post retrieves a post by its ID. It returns storage.ErrPostNotFound if there is none.
func (s *Store) Post(ctx context.Context, id uuid.UUID) (post models.Post, err error) {
	err = s.db.QueryRow(ctx, `
		SELECT id, title, content, published, link
		FROM posts
		WHERE id = $1
	`,
		id,
	).Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.Published,
		&post.Link,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = storage.ErrPostNotFound
		}
		return models.Post{}, err
	}

	post.Published = post.Published.UTC()
	return
}

func direction(sort storage.Sort) string {
	if sort.Descending {
		return "DESC"
	}
	return "ASC"
}

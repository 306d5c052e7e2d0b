// Package feed turns RSS/Atom documents into posts used to seed the in-memory store.
package feed

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/mmcdole/gofeed"

	"blogcomments/pkg/models"
)

var ErrNoPosts = errors.New("feed has no usable items")

// LoadPosts parses the feed file at path.
func LoadPosts(path string) ([]models.Post, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	posts, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return posts, nil
}

// Parse maps feed items to posts. Items without a title or link are skipped; post IDs are
// derived from the link, so the same item always gets the same ID.
func Parse(r io.Reader) ([]models.Post, error) {
	fd, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, err
	}

	posts := make([]models.Post, 0, len(fd.Items))
	for _, item := range fd.Items {
		link := strings.TrimSpace(item.Link)
		title := strings.TrimSpace(item.Title)
		if link == "" || title == "" {
			continue
		}

		content := item.Description
		if content == "" {
			content = item.Content
		}

		var published time.Time
		switch {
		case item.PublishedParsed != nil:
			published = item.PublishedParsed.UTC()
		case item.UpdatedParsed != nil:
			published = item.UpdatedParsed.UTC()
		}

		posts = append(posts, models.Post{
			ID:        uuid.NewV5(uuid.NamespaceURL, link),
			Title:     title,
			Content:   strings.TrimSpace(content),
			Published: published,
			Link:      link,
		})
	}

	if len(posts) == 0 {
		return nil, ErrNoPosts
	}
	return posts, nil
}

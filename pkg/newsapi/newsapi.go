// Package newsapi looks posts up in the news aggregator over HTTP.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	log "github.com/sirupsen/logrus"

	"blogcomments/pkg/models"
	"blogcomments/pkg/storage"
)

const defaultTimeout = 10 * time.Second

// Client implements storage.PostStore on top of the aggregator's GET /news/{id} endpoint.
type Client struct {
	baseURL string
	client  *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) Post(ctx context.Context, id uuid.UUID) (models.Post, error) {
	var post models.Post

	target, err := url.JoinPath(c.baseURL, "news", id.String())
	if err != nil {
		return post, fmt.Errorf("failed to build news service URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return post, fmt.Errorf("error creating request to news service: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return post, fmt.Errorf("error calling news service: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return post, fmt.Errorf("%w: ID:%v", storage.ErrPostNotFound, id)
	case resp.StatusCode != http.StatusOK:
		return post, fmt.Errorf("news service returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&post); err != nil {
		return post, fmt.Errorf("error decoding response from news service: %w", err)
	}
	log.Debugf("[newsapi] post %v found", id)

	return post, nil
}

// Package config loads the server configuration from a TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"blogcomments/pkg/storage/mongo"
	"blogcomments/pkg/storage/postgres"
)

// Comment storage backends.
const (
	StorageMemDB    = "memdb"
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"
)

// Post sources.
const (
	PostsMemDB    = "memdb"
	PostsPostgres = "postgres"
	PostsNews     = "news"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	ServiceName string `toml:"serviceName"`
	HTTPAddr    string `toml:"httpAddr"`
	LogLevel    string `toml:"logLevel"`

	Storage        string `toml:"storage"`
	Posts          string `toml:"posts"`
	SeedFeed       string `toml:"seedFeed"`
	NewsServiceURL string `toml:"newsServiceURL"`

	KafkaAddr  string `toml:"kafkaAddr"`
	KafkaTopic string `toml:"kafkaTopic"`
	KafkaBatch int    `toml:"kafkaBatch"`

	Postgres postgres.Config `toml:"postgres"`
	Mongo    mongo.Config    `toml:"mongo"`
}

// Load reads the TOML file at path, fills in defaults and takes secrets from the environment.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	cfg.setDefaults()
	cfg.Postgres.Password = os.Getenv("POSTGRES_PASSWORD")
	cfg.Mongo.User = os.Getenv("MONGO_USER")
	cfg.Mongo.Pass = os.Getenv("MONGO_PASS")

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "comments"
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8077"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Storage == "" {
		c.Storage = StorageMemDB
	}
	if c.Posts == "" {
		c.Posts = PostsMemDB
	}
}

// Validate checks that the selected backends exist and have what they need to connect.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageMemDB:
	case StoragePostgres:
		if !c.Postgres.IsValid() {
			return fmt.Errorf("%w: postgres: %s", ErrInvalidConfig, c.Postgres)
		}
	case StorageMongo:
		if err := c.Mongo.Validate(); err != nil {
			return fmt.Errorf("%w: mongo: %w", ErrInvalidConfig, err)
		}
	default:
		return fmt.Errorf("%w: unknown storage %q", ErrInvalidConfig, c.Storage)
	}

	switch c.Posts {
	case PostsMemDB, PostsPostgres:
	case PostsNews:
		if c.NewsServiceURL == "" {
			return fmt.Errorf("%w: newsServiceURL is required for posts %q", ErrInvalidConfig, c.Posts)
		}
	default:
		return fmt.Errorf("%w: unknown posts source %q", ErrInvalidConfig, c.Posts)
	}

	// comments.post_id references posts.id, so both live in the same database.
	if (c.Storage == StoragePostgres) != (c.Posts == PostsPostgres) {
		return fmt.Errorf("%w: storage %q and posts %q must be used together",
			ErrInvalidConfig, StoragePostgres, PostsPostgres)
	}

	return nil
}

// KafkaEnabled reports whether request logs should be shipped to Kafka.
func (c *Config) KafkaEnabled() bool {
	return c.KafkaAddr != "" && c.KafkaTopic != ""
}

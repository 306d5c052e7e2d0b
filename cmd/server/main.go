package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"blogcomments/pkg/api"
	"blogcomments/pkg/config"
	"blogcomments/pkg/feed"
	"blogcomments/pkg/newsapi"
	"blogcomments/pkg/service"
	"blogcomments/pkg/storage"
	"blogcomments/pkg/storage/memdb"
	"blogcomments/pkg/storage/mongo"
	"blogcomments/pkg/storage/postgres"
)

const (
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	var (
		configPath string
		httpAddr   string
		logLevel   string
		storageArg string
		postsArg   string
		seedFeed   string
		kafkaAddr  string
		kafkaTopic string
		kafkaBatch int
	)

	flag.StringVar(&configPath, "conf", "cmd/server/config.toml", "Path to TOML config file.")
	flag.StringVar(&httpAddr, "http", "", "HTTP server address in the form 'host:port'.")
	flag.StringVar(&logLevel, "log", "", "Log level: debug, info, warn, error.")
	flag.StringVar(&storageArg, "storage", "", "Comment storage: memdb, postgres, mongo.")
	flag.StringVar(&postsArg, "posts", "", "Post source: memdb, postgres, news.")
	flag.StringVar(&seedFeed, "feed", "", "RSS/Atom file used to seed in-memory posts.")
	flag.StringVar(&kafkaAddr, "kafka", "", "Kafka server address in the form 'host:port'.")
	flag.StringVar(&kafkaTopic, "topic", "", "Kafka topic.")
	flag.IntVar(&kafkaBatch, "batch", 0, "Kafka batch size.")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("[server] failed to load config file %s: %v", configPath, err)
	}

	// Override config with flags if set
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if storageArg != "" {
		cfg.Storage = storageArg
	}
	if postsArg != "" {
		cfg.Posts = postsArg
	}
	if seedFeed != "" {
		cfg.SeedFeed = seedFeed
	}
	if kafkaAddr != "" {
		cfg.KafkaAddr = kafkaAddr
	}
	if kafkaTopic != "" {
		cfg.KafkaTopic = kafkaTopic
	}
	if kafkaBatch != 0 {
		cfg.KafkaBatch = kafkaBatch
	}

	switch cfg.LogLevel {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.Warnf("[server] unknown log level %q, using info", cfg.LogLevel)
	}

	if !strings.Contains(cfg.HTTPAddr, ":") {
		log.Warn("[server] use ':' before port number, e.g. ':8080'")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[server] %v", err)
	}

	comments, posts, closeStorage, err := setupStorage(cfg)
	if err != nil {
		log.Fatalf("[server] failed to initialize storage: %v", err)
	}

	var logWriter api.LogWriter
	if cfg.KafkaEnabled() {
		kafkaWriter := &kafka.Writer{
			Addr:      kafka.TCP(cfg.KafkaAddr),
			Topic:     cfg.KafkaTopic,
			BatchSize: cfg.KafkaBatch,
		}
		defer kafkaWriter.Close()

		if err := createTopic(kafkaWriter.Addr.String(), kafkaWriter.Topic); err != nil {
			log.Warnf("[server] failed to create Kafka topic: %v", err)
		}
		logWriter = kafkaWriter
	} else {
		log.Warnf("[server] kafka was not configured, logs will not be sent to Kafka")
	}

	api := api.New(cfg.ServiceName, service.New(comments, posts), posts, logWriter)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Infof("[server] starting on %v, storage:%s posts:%s", cfg.HTTPAddr, cfg.Storage, cfg.Posts)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[server] failed to start: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	shutdownCtx, shutdownRelease := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownRelease()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("[server] HTTP server shutdown error: %v", err)
	} else {
		log.Info("[server] HTTP server shut down gracefully")
	}

	closeStorage(shutdownCtx)
	log.Info("[server] disconnected from DB")
}

// setupStorage connects the configured comment store and post source. The returned func
// releases every connection that was opened.
func setupStorage(cfg *config.Config) (storage.CommentStore, storage.PostStore, func(context.Context), error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	var (
		comments storage.CommentStore
		posts    storage.PostStore
		closeFn  = func(context.Context) {}
		mem      *memdb.Store
	)

	switch cfg.Storage {
	case config.StoragePostgres:
		conStr := cfg.Postgres.ConString()
		if err := postgres.Migrate(ctx, conStr); err != nil {
			return nil, nil, nil, fmt.Errorf("migration failed: %w", err)
		}

		db, err := postgres.New(ctx, conStr)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := db.Ping(ctx); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("%w: %v", storage.ErrDBNotResponding, err)
		}
		log.Infof("[server] connected to postgres: %s", cfg.Postgres)

		comments, posts = db, db
		closeFn = func(context.Context) { db.Close() }

	case config.StorageMongo:
		db, err := mongo.New(ctx, &cfg.Mongo)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: %v", storage.ErrConnectDB, err)
		}
		if err := db.Ping(ctx); err != nil {
			db.Close(ctx)
			return nil, nil, nil, fmt.Errorf("%w: %v", storage.ErrDBNotResponding, err)
		}
		log.Infof("[server] connected to mongo %s:%s/%s", cfg.Mongo.Host, cfg.Mongo.Port, cfg.Mongo.DBName)

		comments = db
		closeFn = db.Close

	default:
		log.Info("[server] run with in memory DB")
		mem = memdb.New()
		comments = mem
	}

	switch cfg.Posts {
	case config.PostsNews:
		log.Infof("[server] posts are looked up in news service %s", cfg.NewsServiceURL)
		posts = newsapi.New(cfg.NewsServiceURL)

	case config.PostsMemDB:
		if mem == nil {
			mem = memdb.New()
		}
		if cfg.SeedFeed != "" {
			seed, err := feed.LoadPosts(cfg.SeedFeed)
			if err != nil {
				log.Warnf("[server] failed to load seed feed: %v", err)
			} else if err := mem.AddPosts(ctx, seed); err != nil {
				log.Warnf("[server] failed to seed posts: %v", err)
			} else {
				log.Infof("[server] %d posts loaded from %s", len(seed), cfg.SeedFeed)
			}
		}
		posts = mem
	}

	return comments, posts, closeFn, nil
}

func createTopic(broker, topic string) error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", broker)
	if err != nil {
		return err
	}
	defer conn.Close()

	return conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
}

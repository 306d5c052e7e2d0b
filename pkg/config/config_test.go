package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"blogcomments/pkg/storage/mongo"
	"blogcomments/pkg/storage/postgres"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("unexpected error writing config file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("MONGO_USER", "")
	t.Setenv("MONGO_PASS", "")

	path := writeConfig(t, `
serviceName = "blog-comments"
httpAddr = ":9000"
storage = "postgres"
posts = "postgres"
kafkaAddr = "localhost:9092"
kafkaTopic = "logs"
kafkaBatch = 5

[postgres]
user = "postgres"
host = "localhost"
port = "5432"
dbName = "comments"
sslMode = "disable"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := postgres.Config{
		User:     "postgres",
		Password: "secret",
		Host:     "localhost",
		Port:     "5432",
		DBName:   "comments",
		SSLMode:  "disable",
	}
	if cfg.Postgres != want {
		t.Errorf("want postgres config %+v, got %+v", want, cfg.Postgres)
	}
	if cfg.ServiceName != "blog-comments" || cfg.HTTPAddr != ":9000" {
		t.Errorf("unexpected service settings: %+v", cfg)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("want default log level info, got %q", cfg.LogLevel)
	}
	if !cfg.KafkaEnabled() || cfg.KafkaBatch != 5 {
		t.Errorf("want kafka enabled with batch 5, got %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Storage != StorageMemDB || cfg.Posts != PostsMemDB {
		t.Errorf("want memdb backends by default, got storage %q posts %q", cfg.Storage, cfg.Posts)
	}
	if cfg.HTTPAddr != ":8077" || cfg.ServiceName != "comments" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.KafkaEnabled() {
		t.Errorf("want kafka disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Errorf("want error for missing file")
	}
}

func TestLoadMalformed(t *testing.T) {
	if _, err := Load(writeConfig(t, "storage = ")); err == nil {
		t.Errorf("want error for malformed TOML")
	}
}

func TestConfig_Validate(t *testing.T) {
	validPG := postgres.Config{User: "u", Password: "p", Host: "h", Port: "5432", DBName: "d"}
	validMongo := mongo.Config{Host: "h", Port: "27017", DBName: "d"}

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "memdb", cfg: Config{Storage: StorageMemDB, Posts: PostsMemDB}},
		{name: "postgres", cfg: Config{Storage: StoragePostgres, Posts: PostsPostgres, Postgres: validPG}},
		{name: "mongo with memdb posts", cfg: Config{Storage: StorageMongo, Posts: PostsMemDB, Mongo: validMongo}},
		{name: "mongo with news posts", cfg: Config{Storage: StorageMongo, Posts: PostsNews, Mongo: validMongo, NewsServiceURL: "http://news:8066"}},
		{name: "unknown storage", cfg: Config{Storage: "redis", Posts: PostsMemDB}, wantErr: true},
		{name: "unknown posts", cfg: Config{Storage: StorageMemDB, Posts: "files"}, wantErr: true},
		{name: "postgres without password", cfg: Config{Storage: StoragePostgres, Posts: PostsPostgres, Postgres: postgres.Config{User: "u", Host: "h", Port: "5432", DBName: "d"}}, wantErr: true},
		{name: "mongo without host", cfg: Config{Storage: StorageMongo, Posts: PostsMemDB, Mongo: mongo.Config{Port: "27017", DBName: "d"}}, wantErr: true},
		{name: "news without url", cfg: Config{Storage: StorageMemDB, Posts: PostsNews}, wantErr: true},
		{name: "postgres storage with news posts", cfg: Config{Storage: StoragePostgres, Posts: PostsNews, Postgres: validPG, NewsServiceURL: "http://news:8066"}, wantErr: true},
		{name: "postgres posts with memdb storage", cfg: Config{Storage: StorageMemDB, Posts: PostsPostgres}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("want ErrInvalidConfig, got %v", err)
			}
		})
	}
}

package postgres

import (
	"bytes"
	"context"
	"errors"
	"os"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	log "github.com/sirupsen/logrus"

	"blogcomments/pkg/models"
	"blogcomments/pkg/storage"
)

const defaultPostgresPass = "some_pass"
const defaultPostgresPort = "5432"

func postgresConf() Config {
	pass := os.Getenv("POSTGRES_PASSWORD")
	if pass == "" {
		pass = defaultPostgresPass
	}

	port := os.Getenv("POSTGRES_PORT")
	if port == "" {
		port = defaultPostgresPort
	}

	return Config{
		User:     "postgres",
		Password: pass,
		Host:     "localhost",
		Port:     port,
		DBName:   "comments_test",
		SSLMode:  "disable",
	}
}

// storageConnect connects to the local test database and applies migrations.
// Tests are skipped when no database is reachable.
func storageConnect(t *testing.T) *Store {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conf := postgresConf()
	db, err := New(ctx, conf.ConString())
	if err != nil {
		t.Skipf("%v: %v", storage.ErrConnectDB, err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		t.Skipf("%v: %v", storage.ErrDBNotResponding, err)
	}
	if err := Migrate(ctx, conf.ConString()); err != nil {
		db.Close()
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		if err := truncate(db); err != nil {
			t.Errorf("unexpected error clearing tables: %v", err)
		}
		db.Close()
	})

	return db
}

// truncate restores the original state of DB for further testing.
func truncate(db *Store) error {
	_, err := db.db.Exec(context.Background(), "TRUNCATE TABLE comments, posts")
	return err
}

func TestMain(m *testing.M) {
	log.SetLevel(log.PanicLevel)
	exitCode := m.Run()
	os.Exit(exitCode)
}

func addTestPost(t *testing.T, db *Store) uuid.UUID {
	t.Helper()

	id, err := db.AddPost(context.Background(), models.Post{
		Title:     "A Tale of a Cat",
		Content:   "Content",
		Published: time.Date(2025, 3, 13, 5, 0, 10, 0, time.UTC),
		Link:      "https://example.com/" + uuid.Must(uuid.NewV4()).String(),
	})
	if err != nil {
		t.Fatalf("unexpected error while adding post: %v", err)
	}
	return id
}

func TestStore_Post(t *testing.T) {
	db := storageConnect(t)

	want := models.Post{
		Title:     "Second Post",
		Content:   "Content 2",
		Published: time.Date(2024, 10, 8, 22, 2, 0, 0, time.UTC),
		Link:      "https://example.com/2",
	}
	id, err := db.AddPost(context.Background(), want)
	if err != nil {
		t.Fatalf("unexpected error while adding post: %v", err)
	}
	want.ID = id

	got, err := db.Post(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error retrieving post %v: %v", id, err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("want post\n%+v\ngot post\n%+v\n", want, got)
	}
}

func TestStore_PostNotExist(t *testing.T) {
	db := storageConnect(t)

	post, err := db.Post(context.Background(), uuid.Must(uuid.NewV4()))
	if !errors.Is(err, storage.ErrPostNotFound) {
		t.Errorf("want error %v, got %v", storage.ErrPostNotFound, err)
	}
	if !reflect.DeepEqual(post, models.Post{}) {
		t.Errorf("want empty post, got post %+v", post)
	}
}

func TestStore_Save(t *testing.T) {
	db := storageConnect(t)
	postID := addTestPost(t, db)

	testComment := models.Comment{
		PostID:       postID,
		Author:       "John Doe",
		Content:      "This is a test comment",
		CreationDate: time.Date(2025, 1, 12, 10, 22, 13, 0, time.UTC),
	}

	got, err := db.Save(context.Background(), testComment)
	if err != nil {
		t.Fatalf("unexpected error saving comment: %v", err)
	}
	testComment.ID = got.ID
	if got.ID == uuid.Nil {
		t.Errorf("comment id has uuid.Nil value")
	}
	if !reflect.DeepEqual(got, testComment) {
		t.Errorf("want comment\n%+v\n\ngot comment\n%+v\n", testComment, got)
	}
}

func TestStore_SaveUnknownPost(t *testing.T) {
	db := storageConnect(t)

	_, err := db.Save(context.Background(), models.Comment{
		PostID:  uuid.Must(uuid.NewV4()),
		Author:  "John Doe",
		Content: "orphan",
	})
	if !errors.Is(err, storage.ErrPostNotFound) {
		t.Errorf("want error %v, got %v", storage.ErrPostNotFound, err)
	}
}

func TestStore_FindAllByPostID(t *testing.T) {
	db := storageConnect(t)
	postID := addTestPost(t, db)
	emptyPostID := addTestPost(t, db)

	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, content := range []string{"first", "second", "third"} {
		_, err := db.Save(context.Background(), models.Comment{
			PostID:       postID,
			Author:       "Alice",
			Content:      content,
			CreationDate: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("unexpected error adding comment: %v", err)
		}
	}

	tests := []struct {
		name        string
		postID      uuid.UUID
		sort        storage.Sort
		wantContent []string
	}{
		{name: "descending", postID: postID, sort: storage.ByCreationDateDesc, wantContent: []string{"third", "second", "first"}},
		{name: "ascending", postID: postID, sort: storage.Sort{Field: storage.FieldCreationDate}, wantContent: []string{"first", "second", "third"}},
		{name: "no comments", postID: emptyPostID, sort: storage.ByCreationDateDesc, wantContent: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comments, err := db.FindAllByPostID(context.Background(), tt.postID, tt.sort)
			if err != nil {
				t.Fatalf("FindAllByPostID returned error: %v", err)
			}
			gotContent := []string{}
			for _, c := range comments {
				gotContent = append(gotContent, c.Content)
			}
			if !reflect.DeepEqual(gotContent, tt.wantContent) {
				t.Errorf("want %v, got %v", tt.wantContent, gotContent)
			}
		})
	}
}

func TestStore_FindAllByPostIDEqualDates(t *testing.T) {
	db := storageConnect(t)
	postID := addTestPost(t, db)

	same := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for _, content := range []string{"a", "b", "c", "d"} {
		c, err := db.Save(context.Background(), models.Comment{
			PostID:       postID,
			Author:       "Alice",
			Content:      content,
			CreationDate: same,
		})
		if err != nil {
			t.Fatalf("unexpected error adding comment: %v", err)
		}
		ids = append(ids, c.ID)
	}

	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) > 0 })

	for range 3 {
		comments, err := db.FindAllByPostID(context.Background(), postID, storage.ByCreationDateDesc)
		if err != nil {
			t.Fatalf("FindAllByPostID returned error: %v", err)
		}
		got := make([]uuid.UUID, 0, len(comments))
		for _, c := range comments {
			got = append(got, c.ID)
		}
		if !reflect.DeepEqual(got, ids) {
			t.Fatalf("want equal dates ordered by id %v, got %v", ids, got)
		}
	}
}

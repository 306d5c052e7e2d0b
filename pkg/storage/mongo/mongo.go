package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"blogcomments/pkg/models"
	"blogcomments/pkg/storage"
)

const commentsCollection = "comments"

type Storage struct {
	client *mongo.Client
	dbName string
}

// New connects to Mongo and prepares the comments collection and its
// (post_id, creation_date) index.
func New(ctx context.Context, conf *Config) (*Storage, error) {
	client, err := mongo.Connect(ctx, conf.Options())
	if err != nil {
		return nil, err
	}

	s := Storage{client: client, dbName: conf.DBName}
	if err := s.createCollection(ctx, commentsCollection); err != nil {
		s.Close(ctx)
		return nil, err
	}
	if err := s.createIndexes(ctx); err != nil {
		s.Close(ctx)
		return nil, err
	}

	return &s, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Storage) Close(ctx context.Context) {
	s.client.Disconnect(ctx)
}

func (s *Storage) comments() *mongo.Collection {
	return s.client.Database(s.dbName).Collection(commentsCollection)
}

// Save inserts a new comment. The ID is always generated here; a zero creation date is
// set to the current time. Mongo stores millisecond precision, so the returned date is
// truncated to match what a later read yields.
func (s *Storage) Save(ctx context.Context, comment models.Comment) (models.Comment, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return models.Comment{}, err
	}
	comment.ID = id

	if comment.CreationDate.IsZero() {
		comment.CreationDate = time.Now()
	}
	comment.CreationDate = comment.CreationDate.UTC().Truncate(time.Millisecond)

	if _, err := s.comments().InsertOne(ctx, comment); err != nil {
		return models.Comment{}, err
	}

	return comment, nil
}

// FindAllByPostID returns all comments of the post sorted by creation date, then by _id.
func (s *Storage) FindAllByPostID(ctx context.Context, postID uuid.UUID, sort storage.Sort) ([]models.Comment, error) {
	if err := sort.Validate(); err != nil {
		return nil, err
	}

	direction := 1
	if sort.Descending {
		direction = -1
	}
	opts := options.Find().SetSort(bson.D{
		{Key: sort.Field, Value: direction},
		{Key: "_id", Value: direction},
	})

	cur, err := s.comments().Find(ctx, bson.M{"post_id": postID}, opts)
	if err != nil {
		return nil, err
	}

	comments := []models.Comment{}
	if err := cur.All(ctx, &comments); err != nil {
		return nil, err
	}

	for i := range comments {
		comments[i].CreationDate = comments[i].CreationDate.UTC()
	}

	return comments, nil
}

// createCollection creates a collection with the given name in the database if it doesn't already exist.
func (s *Storage) createCollection(ctx context.Context, collName string) error {
	collExists, err := collectionExists(ctx, s.client.Database(s.dbName), collName)
	if err != nil {
		return err
	}

	if !collExists {
		err := s.client.Database(s.dbName).CreateCollection(ctx, collName)
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *Storage) createIndexes(ctx context.Context) error {
	_, err := s.comments().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "post_id", Value: 1},
			{Key: storage.FieldCreationDate, Value: -1},
		},
		Options: options.Index().SetName("post_id_creation_date"),
	})
	if err != nil {
		return fmt.Errorf("failed to create comments index: %w", err)
	}
	return nil
}

// collectionExists checks if a collection with the given name exists in the database.
func collectionExists(ctx context.Context, db *mongo.Database, collName string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return false, fmt.Errorf("failed to list collection names: %w", err)
	}

	for _, name := range names {
		if name == collName {
			return true, nil
		}
	}

	return false, nil
}

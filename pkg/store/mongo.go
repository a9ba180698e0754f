package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nodescape/nodescape/pkg/observability"
)

// MongoConfig configures the MongoDB-backed store.
type MongoConfig struct {
	// URI is the MongoDB connection string.
	URI string

	// Database is the database name. Defaults to "nodescape".
	Database string

	// Collection is the collection name. Defaults to "snapshots".
	Collection string
}

// MongoStore persists snapshots in MongoDB, one document per snapshot.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// mongoEntry is the document layout. The snapshot name is the primary key,
// so Set replaces the previous payload.
type mongoEntry struct {
	Name    string    `bson:"_id"`
	Data    []byte    `bson:"data"`
	SavedAt time.Time `bson:"saved_at"`
}

// NewMongoStore connects to MongoDB and verifies the connection with a
// ping.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := cfg.Database
	if db == "" {
		db = "nodescape"
	}
	coll := cfg.Collection
	if coll == "" {
		coll = "snapshots"
	}
	return &MongoStore{client: client, coll: client.Database(db).Collection(coll)}, nil
}

// Get retrieves a snapshot by name.
func (s *MongoStore) Get(ctx context.Context, name string) ([]byte, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	var entry mongoEntry
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		observability.Store().OnMiss("snapshot")
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	observability.Store().OnHit("snapshot")
	return entry.Data, nil
}

// Set stores a snapshot under the given name.
func (s *MongoStore) Set(ctx context.Context, name string, data []byte) error {
	if name == "" {
		return ErrInvalidName
	}
	entry := mongoEntry{Name: name, Data: data, SavedAt: time.Now()}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": name}, entry, opts); err != nil {
		return err
	}
	observability.Store().OnSet("snapshot", len(data))
	return nil
}

// Delete removes a snapshot.
func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if name == "" {
		return ErrInvalidName
	}
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": name})
	return err
}

// List returns the stored snapshot names.
func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var names []string
	for cursor.Next(ctx) {
		var doc struct {
			Name string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		names = append(names, doc.Name)
	}
	return names, cursor.Err()
}

// Close disconnects the underlying client.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)

// Package mongostore serves package metadata from a MongoDB collection.
//
// Each package is one document keyed by name:
//
//	{
//	  "_id": "requests",
//	  "version": "2.31.0",
//	  "license": "Apache-2.0",
//	  "dependency_count": 2,
//	  "dependencies": ["urllib3", "idna"],
//	  "conflicts": [],
//	  "metadata": {"author": "Kenneth Reitz"}
//	}
//
// Missing documents map to deps.ErrPackageNotFound. Network failures and
// timeouts are wrapped with retry.Retryable so the graph builder retries
// them.
package mongostore

import (
	"context"
	stderrors "errors"
	"fmt"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/stacksolve/pkg/deps"
	"github.com/matzehuels/stacksolve/pkg/retry"
)

const (
	DefaultDatabase   = "stacksolve"
	DefaultCollection = "packages"
)

// Document is the stored form of one package.
type Document struct {
	Name          string   `bson:"_id"`
	deps.Metadata `bson:",inline"`
	Dependencies  []string `bson:"dependencies"`
}

// Store reads package documents from a collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Connect opens a client for uri and returns a store over db.packages.
// An empty db uses [DefaultDatabase].
func Connect(ctx context.Context, uri, db string) (*Store, error) {
	if db == "" {
		db = DefaultDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Store{client: client, coll: client.Database(db).Collection(DefaultCollection)}, nil
}

// New wraps an existing collection. Close is a no-op for stores built
// this way; the caller owns the client.
func New(coll *mongo.Collection) *Store {
	return &Store{coll: coll}
}

// Name identifies the store in logs, metrics and cache keys.
func (s *Store) Name() string {
	return "mongo:" + s.coll.Database().Name() + "." + s.coll.Name()
}

// Metadata returns the metadata document of name.
func (s *Store) Metadata(ctx context.Context, name string) (*deps.Metadata, error) {
	doc, err := s.find(ctx, name, bson.M{"dependencies": 0})
	if err != nil {
		return nil, err
	}
	return &doc.Metadata, nil
}

// Dependencies returns the dependency list of name.
func (s *Store) Dependencies(ctx context.Context, name string) ([]string, error) {
	doc, err := s.find(ctx, name, bson.M{"dependencies": 1})
	if err != nil {
		return nil, err
	}
	return doc.Dependencies, nil
}

func (s *Store) find(ctx context.Context, name string, projection bson.M) (*Document, error) {
	var doc Document
	opts := options.FindOne().SetProjection(projection)
	if err := s.coll.FindOne(ctx, bson.M{"_id": name}, opts).Decode(&doc); err != nil {
		return nil, classify(name, err)
	}
	return &doc, nil
}

// Put inserts or replaces the document for one package.
func (s *Store) Put(ctx context.Context, doc Document) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.Name}, doc, opts); err != nil {
		return classify(doc.Name, err)
	}
	return nil
}

// PutAll upserts docs in one unordered bulk write.
func (s *Store) PutAll(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(docs))
	for _, d := range docs {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": d.Name}).
			SetReplacement(d).
			SetUpsert(true))
	}
	_, err := s.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("bulk write %d packages: %w", len(docs), err)
	}
	return nil
}

// Close disconnects the client opened by [Connect].
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// classify maps driver errors onto the store contract.
func classify(name string, err error) error {
	switch {
	case stderrors.Is(err, mongo.ErrNoDocuments):
		return deps.NotFound(name)
	case mongo.IsNetworkError(err), mongo.IsTimeout(err):
		return retry.Retryable(fmt.Errorf("mongo lookup %s: %w", name, err))
	default:
		return fmt.Errorf("mongo lookup %s: %w", name, err)
	}
}

// DocumentsFrom converts store lookups into documents, which is how a
// catalog is copied into MongoDB.
func DocumentsFrom(ctx context.Context, src deps.Store, names []string) ([]Document, error) {
	docs := make([]Document, 0, len(names))
	for _, name := range names {
		m, err := src.Metadata(ctx, name)
		if err != nil {
			return nil, err
		}
		d, err := src.Dependencies(ctx, name)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{Name: name, Metadata: *m, Dependencies: slices.Clone(d)})
	}
	return docs, nil
}

var _ deps.Store = (*Store)(nil)

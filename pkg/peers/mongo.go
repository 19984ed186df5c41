package peers

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	MongoAppName    = "sync-module"
	MongoDatabase   = "sync-module-db"
	MongoCollection = "Proxy"
)

// MongoStore keeps one document per peer in the Proxy collection.
// A unique index on url backs the duplicate check.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	if database == "" {
		database = MongoDatabase
	}
	opts := options.Client().ApplyURI(uri).SetAppName(MongoAppName)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, storeErr("connect", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, storeErr("ping", err)
	}
	coll := client.Database(database).Collection(MongoCollection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "url", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("url_unique"),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, storeErr("create index", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) Exists(ctx context.Context, url string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"url": url}, options.Count().SetLimit(1))
	if err != nil {
		return false, storeErr("count", err)
	}
	return n > 0, nil
}

func (s *MongoStore) Insert(ctx context.Context, p Peer) error {
	if _, err := s.coll.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", p.URL, ErrDuplicatePeer)
		}
		return storeErr("insert", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, url string) (Peer, error) {
	var p Peer
	err := s.coll.FindOne(ctx, bson.M{"url": url}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Peer{}, ErrPeerNotFound
	}
	if err != nil {
		return Peer{}, storeErr("find", err)
	}
	return p, nil
}

func (s *MongoStore) Delete(ctx context.Context, url string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"url": url})
	return storeErr("delete", err)
}

func (s *MongoStore) List(ctx context.Context) ([]Peer, error) {
	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, storeErr("find", err)
	}
	out := []Peer{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, storeErr("cursor", err)
	}
	return out, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

package audit

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// Sink accepts and durably stores one change document.
type Sink interface {
	Write(ctx context.Context, doc Document) error
}

// MongoSink writes audit documents into a MongoDB collection.
type MongoSink struct {
	Coll *mongo.Collection
}

// NewMongoSink returns a sink over the named database and collection.
func NewMongoSink(client *mongo.Client, database, collection string) *MongoSink {
	return &MongoSink{Coll: client.Database(database).Collection(collection)}
}

// Write inserts one document.
func (s *MongoSink) Write(ctx context.Context, doc Document) error {
	_, err := s.Coll.InsertOne(ctx, doc)
	return err
}

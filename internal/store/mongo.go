package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/reshop/server/internal/models"
)

// ErrInvalidID is returned when a client-supplied id is not an ObjectID.
var ErrInvalidID = errors.New("invalid id")

// Documents is the document-store surface the handlers use. Documents are
// opaque bson.M values; a missing document is (nil, nil), not an error.
type Documents interface {
	Find(ctx context.Context, filter bson.M) ([]bson.M, error)
	FindOne(ctx context.Context, filter bson.M) (bson.M, error)
	FindByID(ctx context.Context, id string) (bson.M, error)
	Insert(ctx context.Context, doc bson.M) (*models.InsertResult, error)
	Upsert(ctx context.Context, filter, set bson.M) (*models.UpdateResult, error)
	UpsertByID(ctx context.Context, id string, set bson.M) (*models.UpdateResult, error)
	DeleteByID(ctx context.Context, id string) (*models.DeleteResult, error)
	DeleteMany(ctx context.Context, filter bson.M) (*models.DeleteResult, error)
}

// MongoCollection implements Documents over one MongoDB collection.
type MongoCollection struct {
	col *mongo.Collection
}

func NewMongoCollection(db *mongo.Database, name string) *MongoCollection {
	return &MongoCollection{col: db.Collection(name)}
}

// ParseID converts a hex string into an ObjectID.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w %q", ErrInvalidID, id)
	}
	return oid, nil
}

func (s *MongoCollection) Find(ctx context.Context, filter bson.M) ([]bson.M, error) {
	if filter == nil {
		filter = bson.M{}
	}
	cur, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("mongo find %s: %w", s.col.Name(), err)
	}
	defer cur.Close(ctx)

	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo find %s: %w", s.col.Name(), err)
	}
	if docs == nil {
		docs = []bson.M{}
	}
	return docs, nil
}

func (s *MongoCollection) FindOne(ctx context.Context, filter bson.M) (bson.M, error) {
	var doc bson.M
	err := s.col.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find one %s: %w", s.col.Name(), err)
	}
	return doc, nil
}

func (s *MongoCollection) FindByID(ctx context.Context, id string) (bson.M, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.FindOne(ctx, bson.M{models.FieldID: oid})
}

func (s *MongoCollection) Insert(ctx context.Context, doc bson.M) (*models.InsertResult, error) {
	res, err := s.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("mongo insert %s: %w", s.col.Name(), err)
	}
	return &models.InsertResult{Acknowledged: true, InsertedID: res.InsertedID}, nil
}

func (s *MongoCollection) Upsert(ctx context.Context, filter, set bson.M) (*models.UpdateResult, error) {
	res, err := s.col.UpdateOne(ctx, filter, bson.M{"$set": set}, options.Update().SetUpsert(true))
	if err != nil {
		return nil, fmt.Errorf("mongo upsert %s: %w", s.col.Name(), err)
	}
	return &models.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
		UpsertedID:    res.UpsertedID,
	}, nil
}

func (s *MongoCollection) UpsertByID(ctx context.Context, id string, set bson.M) (*models.UpdateResult, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	// $set may not touch the immutable _id.
	delete(set, models.FieldID)
	return s.Upsert(ctx, bson.M{models.FieldID: oid}, set)
}

func (s *MongoCollection) DeleteByID(ctx context.Context, id string) (*models.DeleteResult, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.deleteOne(ctx, bson.M{models.FieldID: oid})
}

func (s *MongoCollection) deleteOne(ctx context.Context, filter bson.M) (*models.DeleteResult, error) {
	res, err := s.col.DeleteOne(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("mongo delete %s: %w", s.col.Name(), err)
	}
	return &models.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

func (s *MongoCollection) DeleteMany(ctx context.Context, filter bson.M) (*models.DeleteResult, error) {
	res, err := s.col.DeleteMany(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("mongo delete many %s: %w", s.col.Name(), err)
	}
	return &models.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

// Connect opens a MongoDB client. Documents nested inside results decode as
// bson.M so they marshal to plain JSON objects.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoCollection(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("find returns documents", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		oid := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{
				{Key: "_id", Value: oid},
				{Key: "productCategory", Value: "electronics"},
			}),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch),
		)
		s := &MongoCollection{col: mt.Coll}

		docs, err := s.Find(ctx, bson.M{"productCategory": "electronics"})
		require.NoError(mt, err)
		require.Len(mt, docs, 1)
		assert.Equal(mt, oid, docs[0]["_id"])
		assert.Equal(mt, "electronics", docs[0]["productCategory"])
	})

	mt.Run("find with no match is an empty slice", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		s := &MongoCollection{col: mt.Coll}

		docs, err := s.Find(ctx, nil)
		require.NoError(mt, err)
		assert.NotNil(mt, docs)
		assert.Empty(mt, docs)
	})

	mt.Run("find one missing is nil without error", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		s := &MongoCollection{col: mt.Coll}

		doc, err := s.FindOne(ctx, bson.M{"email": "nobody@example.com"})
		require.NoError(mt, err)
		assert.Nil(mt, doc)
	})

	mt.Run("invalid id", func(mt *mtest.T) {
		s := &MongoCollection{col: mt.Coll}

		_, err := s.FindByID(ctx, "not-an-object-id")
		assert.ErrorIs(mt, err, ErrInvalidID)
		_, err = s.DeleteByID(ctx, "zzz")
		assert.ErrorIs(mt, err, ErrInvalidID)
		_, err = s.UpsertByID(ctx, "", bson.M{})
		assert.ErrorIs(mt, err, ErrInvalidID)
	})

	mt.Run("insert", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		s := &MongoCollection{col: mt.Coll}

		res, err := s.Insert(ctx, bson.M{"name": "lamp"})
		require.NoError(mt, err)
		assert.True(mt, res.Acknowledged)
		assert.NotNil(mt, res.InsertedID)
	})

	mt.Run("insert write error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "duplicate key error",
		}))
		s := &MongoCollection{col: mt.Coll}

		_, err := s.Insert(ctx, bson.M{"name": "lamp"})
		assert.Error(mt, err)
	})

	mt.Run("upsert inserts", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "n", Value: 1},
			{Key: "nModified", Value: 0},
			{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: oid}}}},
		})
		s := &MongoCollection{col: mt.Coll}

		res, err := s.Upsert(ctx, bson.M{"email": "alice@example.com"}, bson.M{"email": "alice@example.com"})
		require.NoError(mt, err)
		assert.Equal(mt, int64(1), res.UpsertedCount)
		assert.Equal(mt, int64(0), res.MatchedCount)
		assert.Equal(mt, oid, res.UpsertedID)
	})

	mt.Run("delete by id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		s := &MongoCollection{col: mt.Coll}

		res, err := s.DeleteByID(ctx, primitive.NewObjectID().Hex())
		require.NoError(mt, err)
		assert.Equal(mt, int64(1), res.DeletedCount)
	})

	mt.Run("delete many", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}))
		s := &MongoCollection{col: mt.Coll}

		res, err := s.DeleteMany(ctx, bson.M{"productId": "p1"})
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), res.DeletedCount)
	})
}

func TestParseID(t *testing.T) {
	oid := primitive.NewObjectID()

	got, err := ParseID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, got)

	_, err = ParseID("12345")
	assert.ErrorIs(t, err, ErrInvalidID)
}

package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/HSouheill/matrix_backend/models"
)

var testTime = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

const commissionsNamespace = "matrix_test.levelCommissions"

func newCommission() *models.LevelCommission {
	return &models.LevelCommission{
		MemberID:  primitive.NewObjectID(),
		Level:     1,
		Downlines: 5,
		Amount:    decimal.NewFromInt(20000),
		Status:    models.CommissionStatusPending,
		CreatedAt: testTime,
	}
}

func TestCommissionRepository_InsertIfAbsent(t *testing.T) {
	mt := newMockT(t)

	mt.Run("created", func(mt *mtest.T) {
		repo := &CommissionRepository{collection: mt.Coll}
		c := newCommission()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: primitive.NewObjectID()}}}},
		))

		created, err := repo.InsertIfAbsent(context.Background(), c)
		require.NoError(mt, err)
		assert.True(mt, created)
		assert.False(mt, c.ID.IsZero())

		// The amount goes out as Decimal128 through the registry codec.
		cmd := mt.GetStartedEvent().Command
		amount := cmd.Lookup("updates", "0", "u", "$setOnInsert", "amount")
		d, ok := amount.Decimal128OK()
		require.True(mt, ok)
		assert.Equal(mt, "20000", d.String())
	})

	mt.Run("already exists", func(mt *mtest.T) {
		repo := &CommissionRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
		))

		created, err := repo.InsertIfAbsent(context.Background(), newCommission())
		require.NoError(mt, err)
		assert.False(mt, created)
	})

	mt.Run("lost upsert race", func(mt *mtest.T) {
		repo := &CommissionRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: matrix.levelCommissions index: memberId_1_level_1",
		}))

		created, err := repo.InsertIfAbsent(context.Background(), newCommission())
		require.NoError(mt, err)
		assert.False(mt, created)
	})

	mt.Run("other write error", func(mt *mtest.T) {
		repo := &CommissionRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Message: "not authorized",
			Name:    "Unauthorized",
		}))

		created, err := repo.InsertIfAbsent(context.Background(), newCommission())
		assert.Error(mt, err)
		assert.False(mt, created)
	})
}

func TestCommissionRepository_Transition(t *testing.T) {
	mt := newMockT(t)

	mt.Run("applies while in status", func(mt *mtest.T) {
		repo := &CommissionRepository{collection: mt.Coll}
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "level", Value: 2},
			{Key: "amount", Value: decimal128(mt, "50000")},
			{Key: "status", Value: models.CommissionStatusApproved},
		}}))

		c, err := repo.Transition(context.Background(), id, models.CommissionStatusPending,
			bson.M{"status": models.CommissionStatusApproved})
		require.NoError(mt, err)
		assert.Equal(mt, models.CommissionStatusApproved, c.Status)
		assert.True(mt, decimal.NewFromInt(50000).Equal(c.Amount))

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, models.CommissionStatusPending, cmd.Lookup("query", "status").StringValue())
	})

	mt.Run("no longer in status", func(mt *mtest.T) {
		repo := &CommissionRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.Transition(context.Background(), primitive.NewObjectID(), models.CommissionStatusPending,
			bson.M{"status": models.CommissionStatusRejected})
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestCommissionRepository_SumIssued(t *testing.T) {
	mt := newMockT(t)

	mt.Run("decodes decimal sum", func(mt *mtest.T) {
		repo := &CommissionRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, commissionsNamespace, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: decimal128(mt, "70000.50")},
		}))

		total, err := repo.SumIssued(context.Background(), primitive.NewObjectID())
		require.NoError(mt, err)
		assert.Equal(mt, "70000.5", total.String())
	})

	mt.Run("nothing issued", func(mt *mtest.T) {
		repo := &CommissionRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, commissionsNamespace, mtest.FirstBatch))

		total, err := repo.SumIssued(context.Background(), primitive.NewObjectID())
		require.NoError(mt, err)
		assert.True(mt, total.IsZero())
	})
}

func TestCommissionRepository_FindByID(t *testing.T) {
	mt := newMockT(t)

	mt.Run("missing", func(mt *mtest.T) {
		repo := &CommissionRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, commissionsNamespace, mtest.FirstBatch))

		_, err := repo.FindByID(context.Background(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

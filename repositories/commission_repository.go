package repositories

import (
	"context"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HSouheill/matrix_backend/config"
	"github.com/HSouheill/matrix_backend/models"
)

// CommissionFilter narrows List results. Zero values match everything.
type CommissionFilter struct {
	Status   string
	MemberID *primitive.ObjectID
}

type CommissionRepository struct {
	collection *mongo.Collection
}

func NewCommissionRepository(db *mongo.Client) *CommissionRepository {
	return &CommissionRepository{
		collection: config.GetCollection(db, config.CommissionsCollection),
	}
}

// InsertIfAbsent creates the commission unless one already exists for the
// same member and level. It reports whether a document was created.
func (r *CommissionRepository) InsertIfAbsent(ctx context.Context, c *models.LevelCommission) (bool, error) {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"memberId": c.MemberID, "level": c.Level},
		bson.M{"$setOnInsert": c},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		// A concurrent upsert for the same key loses on the unique index.
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return res.UpsertedCount == 1, nil
}

func (r *CommissionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.LevelCommission, error) {
	var c models.LevelCommission
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CommissionRepository) List(ctx context.Context, f CommissionFilter) ([]models.LevelCommission, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.MemberID != nil {
		filter["memberId"] = *f.MemberID
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	list := []models.LevelCommission{}
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Transition applies set to the commission only while it is in status from.
// ErrNotFound means the commission is missing or no longer in that status.
func (r *CommissionRepository) Transition(ctx context.Context, id primitive.ObjectID, from string, set bson.M) (*models.LevelCommission, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c models.LevelCommission
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": set},
		opts,
	).Decode(&c)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// SumIssued totals approved and paid commissions of a member
func (r *CommissionRepository) SumIssued(ctx context.Context, memberID primitive.ObjectID) (decimal.Decimal, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"memberId": memberID,
			"status":   bson.M{"$in": []string{models.CommissionStatusApproved, models.CommissionStatusPaid}},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$amount"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return decimal.Zero, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total decimal.Decimal `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return decimal.Zero, err
	}
	if len(rows) == 0 {
		return decimal.Zero, nil
	}
	return rows[0].Total, nil
}

// CountByStatus counts a member's commissions in the given status
func (r *CommissionRepository) CountByStatus(ctx context.Context, memberID primitive.ObjectID, status string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"memberId": memberID, "status": status})
}

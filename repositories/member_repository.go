package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HSouheill/matrix_backend/config"
	"github.com/HSouheill/matrix_backend/models"
)

type MemberRepository struct {
	collection *mongo.Collection
}

func NewMemberRepository(db *mongo.Client) *MemberRepository {
	return &MemberRepository{
		collection: config.GetCollection(db, config.MembersCollection),
	}
}

// Create inserts a new member and sets its ID
func (r *MemberRepository) Create(ctx context.Context, member *models.Member) error {
	res, err := r.collection.InsertOne(ctx, member)
	if err != nil {
		return translate(err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		member.ID = id
	}
	return nil
}

func (r *MemberRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Member, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MemberRepository) FindByEmail(ctx context.Context, email string) (*models.Member, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MemberRepository) FindByReferralCode(ctx context.Context, code string) (*models.Member, error) {
	return r.findOne(ctx, bson.M{"referralCode": code})
}

func (r *MemberRepository) findOne(ctx context.Context, filter bson.M) (*models.Member, error) {
	var member models.Member
	if err := r.collection.FindOne(ctx, filter).Decode(&member); err != nil {
		return nil, translate(err)
	}
	return &member, nil
}

// Count returns the number of registered members
func (r *MemberRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// Activate moves a pending member to active. Members that are not pending
// are left untouched and ErrNotFound is returned.
func (r *MemberRepository) Activate(ctx context.Context, id primitive.ObjectID, pin string, at time.Time) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.MemberStatusPending},
		bson.M{"$set": bson.M{
			"status":        models.MemberStatusActive,
			"activationPin": pin,
			"activatedAt":   at,
			"updatedAt":     at,
		}},
	)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListDirectReferrals returns the members sponsored directly by id
func (r *MemberRepository) ListDirectReferrals(ctx context.Context, id primitive.ObjectID) ([]models.Member, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"sponsorId": id}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	members := []models.Member{}
	if err := cursor.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// DownlineCounts returns, for each of the first depth levels below the
// member, how many active members sit at that level. Index 0 holds the
// direct referrals.
func (r *MemberRepository) DownlineCounts(ctx context.Context, id primitive.ObjectID, depth int) ([]int, error) {
	counts := make([]int, depth)
	if depth <= 0 {
		return counts, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": id}}},
		{{Key: "$graphLookup", Value: bson.M{
			"from":             config.MembersCollection,
			"startWith":        "$_id",
			"connectFromField": "_id",
			"connectToField":   "sponsorId",
			"as":               "downline",
			"maxDepth":         depth - 1,
			"depthField":       "depth",
		}}},
		{{Key: "$unwind", Value: "$downline"}},
		{{Key: "$match", Value: bson.M{"downline.status": models.MemberStatusActive}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$downline.depth",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Depth int `bson:"_id"`
		Count int `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.Depth >= 0 && row.Depth < depth {
			counts[row.Depth] = row.Count
		}
	}
	return counts, nil
}

// Upline returns the sponsor chain of the member, nearest sponsor first,
// limited to depth ancestors.
func (r *MemberRepository) Upline(ctx context.Context, id primitive.ObjectID, depth int) ([]primitive.ObjectID, error) {
	if depth <= 0 {
		return nil, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": id}}},
		{{Key: "$graphLookup", Value: bson.M{
			"from":             config.MembersCollection,
			"startWith":        "$sponsorId",
			"connectFromField": "sponsorId",
			"connectToField":   "_id",
			"as":               "upline",
			"maxDepth":         depth - 1,
			"depthField":       "depth",
		}}},
		{{Key: "$unwind", Value: "$upline"}},
		{{Key: "$sort", Value: bson.M{"upline.depth": 1}}},
		{{Key: "$project", Value: bson.M{"_id": "$upline._id"}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids, nil
}

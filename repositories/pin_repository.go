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

// PinFilter narrows List results. Zero values match everything.
type PinFilter struct {
	Status     string
	StockistID *primitive.ObjectID
	Limit      int64
}

type PinRepository struct {
	collection *mongo.Collection
}

func NewPinRepository(db *mongo.Client) *PinRepository {
	return &PinRepository{
		collection: config.GetCollection(db, config.PinsCollection),
	}
}

// InsertMany stores freshly generated pins
func (r *PinRepository) InsertMany(ctx context.Context, pins []models.Pin) error {
	if len(pins) == 0 {
		return nil
	}
	docs := make([]interface{}, len(pins))
	for i := range pins {
		if pins[i].ID.IsZero() {
			pins[i].ID = primitive.NewObjectID()
		}
		docs[i] = pins[i]
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return translate(err)
}

// Redeem atomically marks an unused pin as used by memberID. ErrNotFound is
// returned when the code does not exist or was already used.
func (r *PinRepository) Redeem(ctx context.Context, code string, memberID primitive.ObjectID, at time.Time) (*models.Pin, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var pin models.Pin
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"code": code, "status": models.PinStatusUnused},
		bson.M{"$set": bson.M{
			"status": models.PinStatusUsed,
			"usedBy": memberID,
			"usedAt": at,
		}},
		opts,
	).Decode(&pin)
	if err != nil {
		return nil, translate(err)
	}
	return &pin, nil
}

// Release returns a redeemed pin to the unused pool
func (r *PinRepository) Release(ctx context.Context, code string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"code": code, "status": models.PinStatusUsed},
		bson.M{
			"$set":   bson.M{"status": models.PinStatusUnused},
			"$unset": bson.M{"usedBy": "", "usedAt": ""},
		},
	)
	return translate(err)
}

func (r *PinRepository) List(ctx context.Context, f PinFilter) ([]models.Pin, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.StockistID != nil {
		filter["stockistId"] = *f.StockistID
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	pins := []models.Pin{}
	if err := cursor.All(ctx, &pins); err != nil {
		return nil, err
	}
	return pins, nil
}

package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HSouheill/matrix_backend/config"
	"github.com/HSouheill/matrix_backend/matrix"
	"github.com/HSouheill/matrix_backend/models"
)

const scheduleSettingKey = "commissionSchedule"

type SettingsRepository struct {
	collection *mongo.Collection
}

func NewSettingsRepository(db *mongo.Client) *SettingsRepository {
	return &SettingsRepository{
		collection: config.GetCollection(db, config.SettingsCollection),
	}
}

// GetSchedule returns the stored schedule override, or ErrNotFound
func (r *SettingsRepository) GetSchedule(ctx context.Context) (matrix.Schedule, error) {
	var setting models.ScheduleSetting
	if err := r.collection.FindOne(ctx, bson.M{"_id": scheduleSettingKey}).Decode(&setting); err != nil {
		return nil, translate(err)
	}
	return setting.Schedule, nil
}

// SaveSchedule replaces the stored schedule override
func (r *SettingsRepository) SaveSchedule(ctx context.Context, s matrix.Schedule) error {
	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": scheduleSettingKey},
		models.ScheduleSetting{Key: scheduleSettingKey, Schedule: s},
		options.Replace().SetUpsert(true),
	)
	return err
}

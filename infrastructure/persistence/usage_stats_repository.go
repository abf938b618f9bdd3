package persistence

import (
	"context"
	"errors"

	"postpilot/domain/model"
	"postpilot/domain/repository"
	"postpilot/infrastructure/logger"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const usageCollection = "usage_stats"

// UsageStatsRepository keeps one document per user with daily counters nested
// under date keys. Deletion is a partial $unset update so concurrent sweeps
// never clobber unrelated keys.
type UsageStatsRepository struct {
	mongoDb *mongo.Client
	dbName  string
}

func NewUsageStatsRepository(db *mongo.Client, dbName string) repository.IUsageStats {
	return &UsageStatsRepository{mongoDb: db, dbName: dbName}
}

func (r *UsageStatsRepository) collection() *mongo.Collection {
	return r.mongoDb.Database(r.dbName).Collection(usageCollection)
}

func (r *UsageStatsRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	if r.mongoDb == nil {
		return nil, errors.New("usage store not available")
	}
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.collection().Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer func(cursor *mongo.Cursor, ctx context.Context) {
		if err := cursor.Close(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing cursor")
		}
	}(cursor, ctx)

	var userIDs []string
	for cursor.Next(ctx) {
		var doc struct {
			UserID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while decoding")
			continue
		}
		userIDs = append(userIDs, doc.UserID)
	}
	return userIDs, cursor.Err()
}

func (r *UsageStatsRepository) GetDaily(ctx context.Context, userID string) (map[string]model.DailyUsage, error) {
	if r.mongoDb == nil {
		return nil, errors.New("usage store not available")
	}
	var stats model.UsageStats
	err := r.collection().FindOne(ctx, bson.M{"_id": userID}).Decode(&stats)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return map[string]model.DailyUsage{}, nil
		}
		return nil, err
	}
	if stats.Daily == nil {
		stats.Daily = map[string]model.DailyUsage{}
	}
	return stats.Daily, nil
}

func (r *UsageStatsRepository) DeleteDaily(ctx context.Context, userID string, dates []string) error {
	if r.mongoDb == nil {
		return errors.New("usage store not available")
	}
	if len(dates) == 0 {
		return nil
	}
	unset := bson.M{}
	for _, date := range dates {
		unset["daily."+date] = ""
	}
	_, err := r.collection().UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$unset": unset})
	return err
}

func (r *UsageStatsRepository) IncrementPublishCount(ctx context.Context, userID string, date string) error {
	if r.mongoDb == nil {
		return errors.New("usage store not available")
	}
	update := bson.M{"$inc": bson.M{"daily." + date + ".publish_count": int64(1)}}
	opts := options.UpdateOne().SetUpsert(true)
	_, err := r.collection().UpdateOne(ctx, bson.M{"_id": userID}, update, opts)
	return err
}

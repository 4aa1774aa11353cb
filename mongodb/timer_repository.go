package mongodb

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/veylabs/rolegate/domain"
)

// TimerRepositoryMongo implements domain.TimerRepository on the role_timers
// collection, keyed by TikTok username.
type TimerRepositoryMongo struct {
	collection *mongo.Collection
}

// NewTimerRepository creates the repository. The collection needs no
// secondary indexes: every access is by _id or a full scan for the sweep.
func NewTimerRepository(db *mongo.Database) *TimerRepositoryMongo {
	return &TimerRepositoryMongo{collection: db.Collection(GiftTimersCollection)}
}

func (r *TimerRepositoryMongo) Touch(ctx context.Context, tikTokUsername string, lastGiftAt time.Time) error {
	timer := domain.GiftTimer{TikTokUsername: tikTokUsername, LastGiftAt: lastGiftAt.UTC()}
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": tikTokUsername}, &timer,
		options.Replace().SetUpsert(true))
	if err != nil {
		log.Error().Err(err).Str("tiktok_username", tikTokUsername).Msg("Error touching gift timer")
		return err
	}
	return nil
}

func (r *TimerRepositoryMongo) Exists(ctx context.Context, tikTokUsername string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": tikTokUsername})
	if err != nil {
		log.Error().Err(err).Str("tiktok_username", tikTokUsername).Msg("Error checking gift timer existence")
		return false, err
	}
	return count > 0, nil
}

func (r *TimerRepositoryMongo) Delete(ctx context.Context, tikTokUsername string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": tikTokUsername})
	if err != nil {
		log.Error().Err(err).Str("tiktok_username", tikTokUsername).Msg("Error deleting gift timer")
		return err
	}
	if result.DeletedCount == 0 {
		return domain.ErrTimerNotFound
	}
	return nil
}

func (r *TimerRepositoryMongo) List(ctx context.Context) ([]*domain.GiftTimer, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		log.Error().Err(err).Msg("Error listing gift timers")
		return nil, err
	}
	defer cursor.Close(ctx)

	var timers []*domain.GiftTimer
	if err = cursor.All(ctx, &timers); err != nil {
		log.Error().Err(err).Msg("Error decoding listed gift timers")
		return nil, err
	}
	return timers, nil
}

// Ensure interface compliance
var _ domain.TimerRepository = (*TimerRepositoryMongo)(nil)

package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/veylabs/rolegate/domain"
)

// LinkRepositoryMongo implements domain.LinkRepository on the links
// collection. The TikTok username is the document _id, so the one-link-per
// TikTok-username invariant is enforced by the collection itself.
type LinkRepositoryMongo struct {
	collection *mongo.Collection
}

// NewLinkRepository creates the repository and ensures the reverse-lookup
// index on discord_id used by !unlink and !whoami.
func NewLinkRepository(ctx context.Context, db *mongo.Database) (*LinkRepositoryMongo, error) {
	repo := &LinkRepositoryMongo{collection: db.Collection(LinksCollection)}
	if err := repo.createIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create %s indexes: %w", LinksCollection, err)
	}
	return repo, nil
}

func (r *LinkRepositoryMongo) createIndexes(ctx context.Context) error {
	// Not unique: several TikTok usernames may be claimed by the same
	// Discord user (alt accounts).
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "discord_id", Value: 1}},
	})
	return err
}

func (r *LinkRepositoryMongo) Upsert(ctx context.Context, tikTokUsername, discordID string) error {
	now := time.Now().UTC()
	filter := bson.M{"_id": tikTokUsername}
	update := bson.M{
		"$set":         bson.M{"discord_id": discordID, "updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		log.Error().Err(err).Str("tiktok_username", tikTokUsername).Msg("Error upserting link")
		return err
	}
	return nil
}

func (r *LinkRepositoryMongo) FindByTikTok(ctx context.Context, tikTokUsername string) (string, error) {
	var link domain.Link
	err := r.collection.FindOne(ctx, bson.M{"_id": tikTokUsername}).Decode(&link)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", domain.ErrLinkNotFound
		}
		log.Error().Err(err).Str("tiktok_username", tikTokUsername).Msg("Error finding link by TikTok username")
		return "", err
	}
	return link.DiscordID, nil
}

func (r *LinkRepositoryMongo) FindByDiscord(ctx context.Context, discordID string) (string, error) {
	var link domain.Link
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}})
	err := r.collection.FindOne(ctx, bson.M{"discord_id": discordID}, opts).Decode(&link)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", domain.ErrLinkNotFound
		}
		log.Error().Err(err).Str("discord_id", discordID).Msg("Error finding link by Discord ID")
		return "", err
	}
	return link.TikTokUsername, nil
}

func (r *LinkRepositoryMongo) DeleteByDiscord(ctx context.Context, discordID string) (string, error) {
	var link domain.Link
	opts := options.FindOneAndDelete().SetSort(bson.D{{Key: "created_at", Value: 1}})
	err := r.collection.FindOneAndDelete(ctx, bson.M{"discord_id": discordID}, opts).Decode(&link)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", domain.ErrLinkNotFound
		}
		log.Error().Err(err).Str("discord_id", discordID).Msg("Error deleting link by Discord ID")
		return "", err
	}
	return link.TikTokUsername, nil
}

func (r *LinkRepositoryMongo) List(ctx context.Context) ([]*domain.Link, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		log.Error().Err(err).Msg("Error listing links")
		return nil, err
	}
	defer cursor.Close(ctx)

	var links []*domain.Link
	if err = cursor.All(ctx, &links); err != nil {
		log.Error().Err(err).Msg("Error decoding listed links")
		return nil, err
	}
	return links, nil
}

// Ensure interface compliance
var _ domain.LinkRepository = (*LinkRepositoryMongo)(nil)

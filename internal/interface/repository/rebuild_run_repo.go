package repository

import (
	"context"

	"invoice-reconciliation-service/internal/domain/entity"
	"invoice-reconciliation-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRebuildRunRepository implements the RebuildRunRepository interface
type MongoRebuildRunRepository struct {
	collection *mongo.Collection
}

// NewMongoRebuildRunRepository creates a new MongoDB rebuild run repository
func NewMongoRebuildRunRepository(db *mongo.Database) repository.RebuildRunRepository {
	collection := db.Collection("rebuild_runs")

	ctx := context.Background()
	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.M{"startedAt": -1}},
		{Keys: bson.M{"status": 1}},
	})

	return &MongoRebuildRunRepository{
		collection: collection,
	}
}

// Save stores a rebuild run
func (r *MongoRebuildRunRepository) Save(ctx context.Context, run *entity.RebuildRun) error {
	_, err := r.collection.InsertOne(ctx, run)
	return err
}

// FindRecent returns the latest runs, newest first
func (r *MongoRebuildRunRepository) FindRecent(ctx context.Context, limit int) ([]*entity.RebuildRun, error) {
	limit64 := int64(limit)
	cursor, err := r.collection.Find(ctx, bson.M{}, &options.FindOptions{
		Limit: &limit64,
		Sort:  bson.D{{Key: "startedAt", Value: -1}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	runs := make([]*entity.RebuildRun, 0)
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

// NoopRebuildRunRepository discards runs. Used when MongoDB is not configured.
type NoopRebuildRunRepository struct{}

func (NoopRebuildRunRepository) Save(context.Context, *entity.RebuildRun) error { return nil }

func (NoopRebuildRunRepository) FindRecent(context.Context, int) ([]*entity.RebuildRun, error) {
	return []*entity.RebuildRun{}, nil
}

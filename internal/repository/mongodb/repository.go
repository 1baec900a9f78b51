package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dairyops/coop/internal/domain/models"
)

// Repository defines the interface for snapshot archival.
type Repository interface {
	SaveSnapshot(ctx context.Context, snapshot models.ProcurementSnapshot) error
	LatestSnapshot(ctx context.Context) (*models.ProcurementSnapshot, error)
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: "procurement_snapshots",
	}, nil
}

// SaveSnapshot upserts the day's procurement snapshot, so re-running the
// nightly job never duplicates a date.
func (r *MongoDBRepository) SaveSnapshot(ctx context.Context, snapshot models.ProcurementSnapshot) error {
	collection := r.client.Database(r.dbName).Collection(r.collName)
	filter := bson.M{"date": snapshot.Date}
	update := bson.M{"$set": snapshot}
	_, err := collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert procurement snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the most recent archived snapshot, or nil when the
// archive is empty.
func (r *MongoDBRepository) LatestSnapshot(ctx context.Context) (*models.ProcurementSnapshot, error) {
	collection := r.client.Database(r.dbName).Collection(r.collName)
	opts := options.FindOne().SetSort(bson.D{{Key: "date", Value: -1}})

	var snapshot models.ProcurementSnapshot
	err := collection.FindOne(ctx, bson.M{}, opts).Decode(&snapshot)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest snapshot: %w", err)
	}
	return &snapshot, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

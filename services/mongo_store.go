package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"findash_backend/models"
)

// MongoBarCollection is the collection holding one document per (symbol, date).
const MongoBarCollection = "stock_data"

// MongoBarStore persists daily bars in MongoDB. One document per bar, keyed
// by a unique compound (symbol, date) index.
type MongoBarStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoBarStore connects to MongoDB, verifies the connection and ensures
// the (symbol, date) unique index exists.
func NewMongoBarStore(ctx context.Context, uri, database string) (*MongoBarStore, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongodb uri is empty")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetMaxPoolSize(10).
		SetMinPoolSize(2).
		SetMaxConnIdleTime(30 * time.Second).
		SetConnectTimeout(30 * time.Second).
		SetRetryWrites(true).
		SetRetryReads(true)

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		client.Disconnect(connectCtx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	store := &MongoBarStore{
		client:     client,
		collection: client.Database(database).Collection(MongoBarCollection),
	}

	if err := store.createIndexes(connectCtx); err != nil {
		log.Printf("Warning: failed to create MongoDB indexes: %v", err)
	}

	log.Println("MongoDB bar store connected")
	return store, nil
}

// createIndexes ensures the unique (symbol, date) key index used by upserts
// and the per-symbol date-sorted scans.
func (s *MongoBarStore) createIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "symbol", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// FindLatest returns the most recent stored bar for symbol, or nil when the
// symbol has no stored history.
func (s *MongoBarStore) FindLatest(ctx context.Context, symbol string) (*models.Bar, error) {
	opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "date", Value: -1}})

	var bar models.Bar
	err := s.collection.FindOne(opCtx, bson.M{"symbol": symbol}, opts).Decode(&bar)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest bar for %s: %w", symbol, err)
	}
	return &bar, nil
}

// FindRange returns up to limit bars for symbol, newest first.
func (s *MongoBarStore) FindRange(ctx context.Context, symbol string, limit int) ([]models.Bar, error) {
	opCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.collection.Find(opCtx, bson.M{"symbol": symbol}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query bars for %s: %w", symbol, err)
	}
	defer cursor.Close(opCtx)

	var bars []models.Bar
	if err := cursor.All(opCtx, &bars); err != nil {
		return nil, fmt.Errorf("failed to decode bars for %s: %w", symbol, err)
	}
	return bars, nil
}

// Upsert inserts or overwrites the bar keyed by (symbol, date). The $set
// update with upsert matches the key atomically, so re-running a sync over
// the same range produces the same stored state.
func (s *MongoBarStore) Upsert(ctx context.Context, bar models.Bar) error {
	opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"symbol": bar.Symbol, "date": bar.Date}
	update := bson.M{"$set": bar}
	opts := options.Update().SetUpsert(true)

	if _, err := s.collection.UpdateOne(opCtx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert bar %s/%s: %w", bar.Symbol, bar.Date, err)
	}
	return nil
}

// DeleteAll removes every stored bar for symbol.
func (s *MongoBarStore) DeleteAll(ctx context.Context, symbol string) (int64, error) {
	opCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	res, err := s.collection.DeleteMany(opCtx, bson.M{"symbol": symbol})
	if err != nil {
		return 0, fmt.Errorf("failed to delete bars for %s: %w", symbol, err)
	}
	return res.DeletedCount, nil
}

// InsertMany inserts a batch of bars.
func (s *MongoBarStore) InsertMany(ctx context.Context, bars []models.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	opCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	docs := make([]interface{}, len(bars))
	for i, bar := range bars {
		docs[i] = bar
	}

	if _, err := s.collection.InsertMany(opCtx, docs); err != nil {
		return fmt.Errorf("failed to insert %d bars: %w", len(bars), err)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoBarStore) Close(ctx context.Context) error {
	opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.client.Disconnect(opCtx)
}

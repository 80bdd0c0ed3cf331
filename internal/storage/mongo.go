// Package storage persists review results and feeds the downstream
// vectorization pipeline.
package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/DifanaDAP/ai-reviewer/internal/model"
)

const schemaVersion = "2.0"

// ReviewDocument is the persisted form of one review run. The raw diff is
// stored alongside the result for later vectorization.
type ReviewDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	PRNumber      int                `bson:"pr_number"`
	PRTitle       string             `bson:"pr_title"`
	Repo          string             `bson:"repo"`
	Timestamp     time.Time          `bson:"timestamp"`
	Metrics       model.PRMetrics    `bson:"metrics"`
	Feedbacks     []model.Feedback   `bson:"feedbacks"`
	Summary       string             `bson:"summary"`
	Positives     []string           `bson:"positives"`
	OverallStatus string             `bson:"overall_status"`
	Diff          string             `bson:"diff,omitempty"`
	Vectorized    bool               `bson:"vectorized"`
	CreatedAt     time.Time          `bson:"_created_at"`
	Version       string             `bson:"_version"`
}

// MongoStore stores review documents in the reviews collection.
type MongoStore struct {
	client  *mongo.Client
	reviews *mongo.Collection
}

// NewMongoStore connects, verifies the connection, and ensures indexes for
// the common query patterns.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	s := &MongoStore{
		client:  client,
		reviews: client.Database(database).Collection("reviews"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "pr_number", Value: 1}}},
		{Keys: bson.D{{Key: "repo", Value: 1}}},
		{Keys: bson.D{{Key: "timestamp", Value: 1}}},
		{Keys: bson.D{{Key: "repo", Value: 1}, {Key: "pr_number", Value: 1}}},
	}
	if _, err := s.reviews.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// SaveReview inserts a review result and returns the new document ID.
func (s *MongoStore) SaveReview(ctx context.Context, r *model.ReviewResult, diff string) (string, error) {
	doc := ReviewDocument{
		PRNumber:      r.PRNumber,
		PRTitle:       r.PRTitle,
		Repo:          r.Repo,
		Timestamp:     r.Timestamp,
		Metrics:       r.Metrics,
		Feedbacks:     r.Feedbacks,
		Summary:       r.Summary,
		Positives:     r.Positives,
		OverallStatus: r.OverallStatus().String(),
		Diff:          diff,
		CreatedAt:     time.Now().UTC(),
		Version:       schemaVersion,
	}

	res, err := s.reviews.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert review: %w", err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return id.Hex(), nil
}

// LatestReview returns the most recent review for a PR, or nil when none
// exists.
func (s *MongoStore) LatestReview(ctx context.Context, repo string, prNumber int) (*ReviewDocument, error) {
	filter := bson.M{"repo": repo, "pr_number": prNumber}
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	var doc ReviewDocument
	err := s.reviews.FindOne(ctx, filter, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find review: %w", err)
	}
	return &doc, nil
}

// ReviewsByRepo returns the most recent reviews for a repository.
func (s *MongoStore) ReviewsByRepo(ctx context.Context, repo string, limit int64) ([]ReviewDocument, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cur, err := s.reviews.Find(ctx, bson.M{"repo": repo}, opts)
	if err != nil {
		return nil, fmt.Errorf("find reviews: %w", err)
	}
	defer cur.Close(ctx)

	var docs []ReviewDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	return docs, nil
}

// PendingVectorization returns reviews not yet vectorized, newest first.
func (s *MongoStore) PendingVectorization(ctx context.Context, limit int64) ([]ReviewDocument, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cur, err := s.reviews.Find(ctx, bson.M{"vectorized": bson.M{"$ne": true}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find pending reviews: %w", err)
	}
	defer cur.Close(ctx)

	var docs []ReviewDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode pending reviews: %w", err)
	}
	return docs, nil
}

// MarkVectorized flags a review document as processed by the vectorization
// pipeline.
func (s *MongoStore) MarkVectorized(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("parse document id: %w", err)
	}

	res, err := s.reviews.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"vectorized": true, "vectorized_at": time.Now().UTC()}})
	if err != nil {
		return false, fmt.Errorf("mark vectorized: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// mongodb.go - MongoDB-backed session store

package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bosocmputer/pharmacist_assistant/internal/order"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sessionCollection = "prescription_sessions"

// MongoStore keeps sessions in the prescription_sessions collection.
// MongoDB's TTL monitor removes expired documents.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	ttl        time.Duration
}

// NewMongoStore connects, verifies the connection and ensures the TTL index
func NewMongoStore(ctx context.Context, uri, dbName string, ttl time.Duration) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	store := &MongoStore{
		client:     client,
		collection: client.Database(dbName).Collection(sessionCollection),
		ttl:        ttl,
	}

	if err := store.ensureIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	log.Println("✅ Connected to MongoDB successfully!")
	return store, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	if s.ttl <= 0 {
		return nil
	}
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "created_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(s.ttl.Seconds())).SetName("session_ttl"),
	})
	if err != nil {
		return fmt.Errorf("failed to create session TTL index: %w", err)
	}
	return nil
}

// Save upserts the session
func (s *MongoStore) Save(ctx context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": sess.ID}, sess, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Get loads a session. Documents past the TTL are treated as missing even
// before the TTL monitor deletes them.
func (s *MongoStore) Get(ctx context.Context, id string) (*Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var sess Session
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&sess)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	if s.ttl > 0 && time.Since(sess.CreatedAt) >= s.ttl {
		return nil, ErrSessionNotFound
	}
	return &sess, nil
}

// SaveOrder stores the edited order lines and message on the session
func (s *MongoStore) SaveOrder(ctx context.Context, id string, lines []order.Line, message string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"order_lines":   lines,
			"order_message": message,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Close disconnects the client
func (s *MongoStore) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.client.Disconnect(ctx); err != nil {
		return err
	}
	log.Println("MongoDB connection closed")
	return nil
}

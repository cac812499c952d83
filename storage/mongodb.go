package storage

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pmalinen/EncryptBin/models"
)

const mongoCallTimeout = 10 * time.Second

// MongoStore implements PasteStore on MongoDB, keeping meta and content
// together in one document per paste.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

type mongoDoc struct {
	ID      string        `bson:"_id"`
	Meta    *models.Paste `bson:"meta,omitempty"`
	Content []byte        `bson:"content,omitempty"`
}

// NewMongoStore creates a new MongoDB storage backend.
func NewMongoStore(uri, dbName, collName string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoCallTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	store := &MongoStore{
		client:     client,
		collection: client.Database(dbName).Collection(collName),
	}
	if err := store.createIndexes(); err != nil {
		return nil, err
	}
	return store, nil
}

func (m *MongoStore) createIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Index on the expiry timestamp for sweeper scans
	expiresIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "meta.expires", Value: 1}},
	}
	_, err := m.collection.Indexes().CreateOne(ctx, expiresIndex)
	return err
}

func (m *MongoStore) StoreMeta(ctx context.Context, paste *models.Paste) error {
	ctx, cancel := context.WithTimeout(ctx, mongoCallTimeout)
	defer cancel()

	_, err := m.collection.UpdateOne(ctx,
		bson.M{"_id": paste.ID},
		bson.M{"$set": bson.M{"meta": paste}},
		options.Update().SetUpsert(true))
	if err != nil {
		log.Printf("[ERROR] Mongo StoreMeta: failed to upsert metadata for %s: %v", paste.ID, err)
	}
	return err
}

func (m *MongoStore) GetMeta(ctx context.Context, id string) (*models.Paste, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoCallTimeout)
	defer cancel()

	var doc mongoDoc
	err := m.collection.FindOne(ctx, bson.M{"_id": id},
		options.FindOne().SetProjection(bson.M{"meta": 1})).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		log.Printf("[ERROR] Mongo GetMeta: failed to get metadata for %s: %v", id, err)
		return nil, err
	}
	return doc.Meta, nil
}

func (m *MongoStore) StoreContent(ctx context.Context, id string, content []byte) error {
	ctx, cancel := context.WithTimeout(ctx, mongoCallTimeout)
	defer cancel()

	_, err := m.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"content": content}},
		options.Update().SetUpsert(true))
	if err != nil {
		log.Printf("[ERROR] Mongo StoreContent: failed to upsert content for %s: %v", id, err)
	}
	return err
}

func (m *MongoStore) GetContent(ctx context.Context, id string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoCallTimeout)
	defer cancel()

	var doc mongoDoc
	err := m.collection.FindOne(ctx, bson.M{"_id": id},
		options.FindOne().SetProjection(bson.M{"content": 1})).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		log.Printf("[ERROR] Mongo GetContent: failed to get content for %s: %v", id, err)
		return nil, err
	}
	if doc.Content == nil {
		return nil, nil
	}
	return doc.Content, nil
}

func (m *MongoStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, mongoCallTimeout)
	defer cancel()

	// DeleteOne on an absent id matches nothing, which is fine
	_, err := m.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		log.Printf("[ERROR] Mongo Delete: failed to delete %s: %v", id, err)
	}
	return err
}

func (m *MongoStore) List(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoCallTimeout)
	defer cancel()

	cursor, err := m.collection.Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		log.Printf("[ERROR] Mongo List: failed to list ids: %v", err)
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var ids []string
	for cursor.Next(ctx) {
		var doc mongoDoc
		if err := cursor.Decode(&doc); err != nil {
			log.Printf("[ERROR] Mongo List: failed to decode document: %v", err)
			continue
		}
		ids = append(ids, doc.ID)
	}
	return ids, cursor.Err()
}

func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoCallTimeout)
	defer cancel()
	return m.client.Disconnect(ctx)
}

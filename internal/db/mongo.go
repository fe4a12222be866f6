package db

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go-fcmap/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoConfig struct {
	URI       string
	Database  string
	Endpoints string
	Zones     string
}

// MongoStore keeps endpoints and zones in two MongoDB collections with
// unique indexes on their keys. It has no switch inventory.
type MongoStore struct {
	client    *mongo.Client
	endpoints *mongo.Collection
	zones     *mongo.Collection
}

func OpenMongo(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	database := client.Database(cfg.Database)
	s := &MongoStore{
		client:    client,
		endpoints: database.Collection(cfg.Endpoints),
		zones:     database.Collection(cfg.Zones),
	}
	for coll, key := range map[*mongo.Collection]string{s.endpoints: "wwpn", s.zones: "zone_name"} {
		_, err := coll.Indexes().CreateOne(connectCtx, mongo.IndexModel{
			Keys:    bson.D{{Key: key, Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("mongo index on %s: %w", key, err)
		}
	}
	return s, nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

// upsert replaces the document matching key or inserts doc.
func upsert(ctx context.Context, coll *mongo.Collection, filter bson.M, doc interface{}) (bool, error) {
	err := coll.FindOne(ctx, filter).Err()
	switch {
	case err == nil:
		_, err = coll.ReplaceOne(ctx, filter, doc)
		return false, err
	case errors.Is(err, mongo.ErrNoDocuments):
		_, err = coll.InsertOne(ctx, doc)
		return true, err
	default:
		return false, err
	}
}

func (s *MongoStore) UpsertEndpoint(ctx context.Context, ep *models.Endpoint) (bool, error) {
	return upsert(ctx, s.endpoints, bson.M{"wwpn": ep.WWPN}, ep)
}

func (s *MongoStore) UpsertZone(ctx context.Context, z *models.Zone) (bool, error) {
	return upsert(ctx, s.zones, bson.M{"zone_name": z.ZoneName}, z)
}

func (s *MongoStore) FindEndpoint(ctx context.Context, wwpn string) (*models.Endpoint, error) {
	var ep models.Endpoint
	err := s.endpoints.FindOne(ctx, bson.M{"wwpn": strings.ToLower(wwpn)}).Decode(&ep)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ep, nil
}

func (s *MongoStore) FindZone(ctx context.Context, name string) (*models.Zone, error) {
	var z models.Zone
	err := s.zones.FindOne(ctx, bson.M{"zone_name": name}).Decode(&z)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &z, nil
}

func (s *MongoStore) SearchEndpoints(ctx context.Context, pattern string, limit int) ([]models.Endpoint, error) {
	opts := options.Find().SetSort(bson.D{{Key: "wwpn", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	filter := bson.M{"wwpn": bson.M{"$regex": regexp.QuoteMeta(strings.ToLower(pattern))}}
	return s.find(ctx, filter, opts)
}

func (s *MongoStore) ListEndpoints(ctx context.Context) ([]models.Endpoint, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "switch_ip", Value: 1},
		{Key: "port_index", Value: 1},
		{Key: "wwpn", Value: 1},
	})
	return s.find(ctx, bson.M{}, opts)
}

func (s *MongoStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Endpoint, error) {
	cur, err := s.endpoints.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var eps []models.Endpoint
	if err := cur.All(ctx, &eps); err != nil {
		return nil, err
	}
	return eps, nil
}

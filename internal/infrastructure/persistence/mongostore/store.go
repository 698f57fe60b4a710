package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/backoffice/internal/domain/setting"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const colSettings = "settings"

// Connect opens a client for cfg and verifies the connection
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client, err := mongo.Connect(options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongostore: ping: %w", err)
	}
	return client, nil
}

// SettingRepository implements setting.Repository on a MongoDB collection
type SettingRepository struct {
	col *mongo.Collection
	now func() time.Time
}

var _ setting.Repository = (*SettingRepository)(nil)

// NewSettingRepository creates a repository on db's settings collection
func NewSettingRepository(db *mongo.Database) *SettingRepository {
	return &SettingRepository{col: db.Collection(colSettings), now: time.Now}
}

// Migrate creates the settings indexes. The unique key index only covers
// active documents so a removed key can be recreated.
func (r *SettingRepository) Migrate(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "key", Value: 1}},
			Options: options.Index().
				SetName("ux_settings_key_active").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"removed": false}),
		},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "key", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("mongostore: migrate %s indexes: %w", colSettings, err)
	}
	return nil
}

func activeFilter(extra bson.M) bson.M {
	filter := bson.M{"removed": false}
	for k, v := range extra {
		filter[k] = v
	}
	return filter
}

// Create inserts a new setting
func (r *SettingRepository) Create(ctx context.Context, s *setting.Setting) error {
	doc, err := toSettingDoc(s)
	if err != nil {
		return err
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return shared.NewDomainError(shared.ErrAlreadyExists.Code,
				fmt.Sprintf("Setting '%s' already exists", s.Key))
		}
		return fmt.Errorf("mongostore: create setting %q: %w", s.Key, err)
	}
	return nil
}

// FindByKey returns the active setting for key
func (r *SettingRepository) FindByKey(ctx context.Context, key string) (*setting.Setting, error) {
	var doc settingDoc
	err := r.col.FindOne(ctx, activeFilter(bson.M{"key": key})).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("mongostore: find setting %q: %w", key, err)
	}
	return doc.toDomain()
}

// FindByKeys returns the active settings whose key is in keys
func (r *SettingRepository) FindByKeys(ctx context.Context, keys []string) ([]setting.Setting, error) {
	if len(keys) == 0 {
		return []setting.Setting{}, nil
	}
	return r.find(ctx, activeFilter(bson.M{"key": bson.M{"$in": keys}}))
}

// FindAll returns every active setting ordered by category and key
func (r *SettingRepository) FindAll(ctx context.Context) ([]setting.Setting, error) {
	return r.find(ctx, activeFilter(nil))
}

// FindByCategory returns the active settings of category
func (r *SettingRepository) FindByCategory(ctx context.Context, category string) ([]setting.Setting, error) {
	return r.find(ctx, activeFilter(bson.M{"category": category}))
}

func (r *SettingRepository) find(ctx context.Context, filter bson.M) ([]setting.Setting, error) {
	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "key", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongostore: find settings: %w", err)
	}
	var docs []settingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongostore: decode settings: %w", err)
	}

	out := make([]setting.Setting, 0, len(docs))
	for i := range docs {
		s, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, nil
}

// UpdateValue replaces the payload with one FindOneAndUpdate whose filter
// includes the stored value_type
func (r *SettingRepository) UpdateValue(ctx context.Context, key string, value setting.Value) (*setting.Setting, error) {
	if value.IsZero() {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code,
			fmt.Sprintf("Setting '%s' requires a value", key))
	}
	payload, num, err := encodeValue(value)
	if err != nil {
		return nil, fmt.Errorf("mongostore: encode setting %q: %w", key, err)
	}

	set := bson.M{"updated_at": r.now()}
	if num != nil {
		set["num_value"] = *num
	} else {
		set["value"] = *payload
	}
	return r.findOneAndUpdate(ctx, key, value.Type(), bson.M{"$set": set})
}

// Increment runs $inc on num_value and returns the document after the
// update. A missing num_value is created as 1.
func (r *SettingRepository) Increment(ctx context.Context, key string) (*setting.Setting, error) {
	one, err := bson.ParseDecimal128("1")
	if err != nil {
		return nil, err
	}
	return r.findOneAndUpdate(ctx, key, setting.ValueTypeNumber, bson.M{
		"$inc": bson.M{"num_value": one},
		"$set": bson.M{"updated_at": r.now()},
	})
}

func (r *SettingRepository) findOneAndUpdate(ctx context.Context, key string, vt setting.ValueType, update bson.M) (*setting.Setting, error) {
	filter := activeFilter(bson.M{"key": key, "value_type": string(vt)})
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc settingDoc
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, r.missOrMismatch(ctx, key, vt)
	}
	if err != nil {
		return nil, fmt.Errorf("mongostore: update setting %q: %w", key, err)
	}
	return doc.toDomain()
}

func (r *SettingRepository) missOrMismatch(ctx context.Context, key string, want setting.ValueType) error {
	var doc settingDoc
	opts := options.FindOne().SetProjection(bson.M{"value_type": 1})
	err := r.col.FindOne(ctx, activeFilter(bson.M{"key": key}), opts).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return shared.ErrNotFound
	case err != nil:
		return fmt.Errorf("mongostore: find setting %q: %w", key, err)
	default:
		return shared.NewDomainError(shared.ErrTypeMismatch.Code,
			fmt.Sprintf("Setting '%s' holds %s, not %s", key, doc.ValueType, want))
	}
}

// Remove soft-deletes the active setting for key
func (r *SettingRepository) Remove(ctx context.Context, key string) error {
	res, err := r.col.UpdateOne(ctx, activeFilter(bson.M{"key": key}),
		bson.M{"$set": bson.M{"removed": true, "updated_at": r.now()}})
	if err != nil {
		return fmt.Errorf("mongostore: remove setting %q: %w", key, err)
	}
	if res.MatchedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

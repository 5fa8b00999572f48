// File: database/repository/settings/settings_mongo.go
package settingsRepo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/outrigger999/rental-recon/database"
	"github.com/outrigger999/rental-recon/models"
)

const opTimeout = 5 * time.Second

// Repository manages the single global settings record.
type Repository interface {
	// Get returns the settings record, creating an empty one when missing.
	Get(ctx context.Context) (*models.Settings, error)
	// UpdateOrigin sets the commute origin address.
	UpdateOrigin(ctx context.Context, originAddress string) (*models.Settings, error)
}

type mongoSettingsRepo struct {
	coll *mongo.Collection
}

// NewMongoSettingsRepo returns a Repository backed by the settings collection.
func NewMongoSettingsRepo() Repository {
	return &mongoSettingsRepo{coll: database.Collection("settings")}
}

func (r *mongoSettingsRepo) Get(ctx context.Context) (*models.Settings, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var s models.Settings
	err := r.coll.FindOne(ctx, bson.M{}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		s = models.Settings{ID: uuid.New().String(), OriginAddress: ""}
		if _, err := r.coll.InsertOne(ctx, s); err != nil {
			return nil, err
		}
		return &s, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *mongoSettingsRepo) UpdateOrigin(ctx context.Context, originAddress string) (*models.Settings, error) {
	s, err := r.Get(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	s.OriginAddress = originAddress
	if _, err := r.coll.UpdateOne(ctx,
		bson.M{"id": s.ID},
		bson.M{"$set": bson.M{"originAddress": originAddress}}); err != nil {
		return nil, err
	}
	return s, nil
}

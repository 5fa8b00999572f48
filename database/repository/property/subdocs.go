// File: database/repository/property/subdocs.go
package propertyRepo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/outrigger999/rental-recon/models"
)

func (r *mongoPropertyRepo) AddImage(ctx context.Context, propertyID string, img models.PropertyImage) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": propertyID},
		bson.M{"$push": bson.M{"images": img}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoPropertyRepo) DemoteMainImage(ctx context.Context, propertyID string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"img.isMain": true}},
	})
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"id": propertyID},
		bson.M{"$set": bson.M{"images.$[img].isMain": false}},
		opts)
	return err
}

func (r *mongoPropertyRepo) GetImage(ctx context.Context, propertyID, imageID string) (*models.PropertyImage, error) {
	p, err := r.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	for i := range p.Images {
		if p.Images[i].ID == imageID {
			return &p.Images[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *mongoPropertyRepo) DeleteImage(ctx context.Context, propertyID, imageID string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": propertyID},
		bson.M{"$pull": bson.M{"images": bson.M{"id": imageID}}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 || res.ModifiedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoPropertyRepo) AddNote(ctx context.Context, propertyID string, note models.PropertyNote) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": propertyID},
		bson.M{"$push": bson.M{"notes": note}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoPropertyRepo) ListNotes(ctx context.Context, propertyID string) ([]models.PropertyNote, error) {
	p, err := r.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if p.Notes == nil {
		return []models.PropertyNote{}, nil
	}
	return p.Notes, nil
}

func (r *mongoPropertyRepo) DeleteNote(ctx context.Context, propertyID, noteID string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": propertyID},
		bson.M{"$pull": bson.M{"notes": bson.M{"id": noteID}}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 || res.ModifiedCount == 0 {
		return ErrNotFound
	}
	return nil
}

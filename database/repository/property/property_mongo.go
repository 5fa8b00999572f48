// File: database/repository/property/property_mongo.go
package propertyRepo

import (
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/outrigger999/rental-recon/database"
)

// mongoPropertyRepo is the MongoDB-backed Repository implementation.
type mongoPropertyRepo struct {
	coll *mongo.Collection
}

// NewMongoPropertyRepo returns a Repository backed by the properties collection.
func NewMongoPropertyRepo() Repository {
	return &mongoPropertyRepo{coll: database.Collection("properties")}
}

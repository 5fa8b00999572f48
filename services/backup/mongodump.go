package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDump returns a DumpFunc exporting the named collections as a single
// JSON document keyed by collection name.
func MongoDump(client *mongo.Client, dbName string, collections []string) DumpFunc {
	return func(ctx context.Context, w io.Writer) error {
		dump := make(map[string][]bson.M, len(collections))
		for _, name := range collections {
			cursor, err := client.Database(dbName).Collection(name).Find(ctx, bson.M{})
			if err != nil {
				return fmt.Errorf("dump %s: %w", name, err)
			}
			docs := []bson.M{}
			if err := cursor.All(ctx, &docs); err != nil {
				return fmt.Errorf("dump %s: %w", name, err)
			}
			// ObjectIDs do not survive a JSON round trip; documents carry
			// their own id field.
			for _, doc := range docs {
				delete(doc, "_id")
			}
			dump[name] = docs
		}

		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(dump)
	}
}

package mongotools

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nikmy/txflow/pkg/errors"
)

// SetAll merges field documents into one $set update.
// Fields whose value is a nil pointer are left out.
func SetAll(fieldKVs ...bson.M) bson.M {
	s := make(bson.M, len(fieldKVs))
	for _, kv := range fieldKVs {
		for k, v := range kv {
			if v == nil {
				continue
			}
			s[k] = v
		}
	}

	return bson.M{"$set": s}
}

func All() bson.M {
	return bson.M{}
}

func FilterByID(id any) bson.M {
	return bson.M{"_id": id}
}

// Field makes a single field document. A nil value gives an
// untyped nil, so SetAll skips it.
func Field[T any](field string, value *T) bson.M {
	if value == nil {
		return bson.M{field: nil}
	}
	return bson.M{field: *value}
}

// FilterFunc decodes every document of c and keeps those accepted
// by filterFunc; a nil filterFunc keeps everything. c is closed.
func FilterFunc[T any](ctx context.Context, c *mongo.Cursor, filterFunc func(T) bool) ([]T, error) {
	defer c.Close(ctx)

	var filtered []T
	for c.Next(ctx) {
		var item T
		if err := c.Decode(&item); err != nil {
			return nil, errors.WrapFailf(err, "decode document %d", len(filtered))
		}

		if filterFunc == nil || filterFunc(item) {
			filtered = append(filtered, item)
		}
	}

	return filtered, errors.WrapFail(c.Err(), "iterate cursor")
}

package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nikmy/txflow/internal/txn"
	"github.com/nikmy/txflow/pkg/errors"
	"github.com/nikmy/txflow/pkg/mongotools"
)

// Find builds a query decoding documents of collection that
// match filter. keep filters decoded documents further and may be nil.
func Find[T any](
	collection string,
	filter any,
	keep func(T) bool,
	opts ...*options.FindOptions,
) txn.QueryFunc[*Handle, T] {
	if filter == nil {
		filter = mongotools.All()
	}

	return func(ctx context.Context, h *Handle) (*txn.CursorResult[T], error) {
		ctx = h.Bind(ctx)

		cursor, err := h.Collection(collection).Find(ctx, filter, opts...)
		if err != nil {
			return nil, errors.WrapFailf(err, "find in %s", collection)
		}

		items, err := mongotools.FilterFunc(ctx, cursor, keep)
		if err != nil {
			return nil, err
		}
		return txn.NewCursorResult(items), nil
	}
}

func InsertMany(collection string, docs ...any) txn.Func[*Handle] {
	return func(ctx context.Context, h *Handle) error {
		if len(docs) == 0 {
			return nil
		}
		_, err := h.Collection(collection).InsertMany(h.Bind(ctx), docs)
		return errors.WrapFailf(err, "insert into %s", collection)
	}
}

// SetByID builds a transaction applying mongotools.SetAll(fields...)
// to the document with the given id.
func SetByID(collection string, id any, fields ...bson.M) txn.Func[*Handle] {
	return func(ctx context.Context, h *Handle) error {
		res, err := h.Collection(collection).UpdateOne(
			h.Bind(ctx),
			mongotools.FilterByID(id),
			mongotools.SetAll(fields...),
		)
		if err != nil {
			return errors.WrapFailf(err, "update %v in %s", id, collection)
		}
		if res.MatchedCount == 0 {
			return errors.Failf("update %v in %s: no such document", id, collection)
		}
		return nil
	}
}

func DeleteMany(collection string, filter any) txn.Func[*Handle] {
	return func(ctx context.Context, h *Handle) error {
		_, err := h.Collection(collection).DeleteMany(h.Bind(ctx), filter)
		return errors.WrapFailf(err, "delete from %s", collection)
	}
}

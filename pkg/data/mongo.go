package data

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/lassoview/pkg/errors"
)

// MongoSource loads each dataset from the MongoDB collection of the same name.
// Documents are returned in natural order; the _id field is dropped.
type MongoSource struct {
	client   *mongo.Client
	database string
}

// NewMongoSource connects to uri and reads collections from database.
func NewMongoSource(ctx context.Context, uri, database string) (*MongoSource, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb")
	}
	return &MongoSource{client: client, database: database}, nil
}

// Load returns every document of the named collection as a record.
func (s *MongoSource) Load(ctx context.Context, name string) ([]Record, error) {
	if err := errors.ValidateDatasetName(name); err != nil {
		return nil, err
	}
	cur, err := s.client.Database(s.database).Collection(name).Find(ctx, bson.D{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "find %s", name)
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "read %s", name)
	}
	if len(docs) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "dataset %q not found", name)
	}
	records := make([]Record, len(docs))
	for i, doc := range docs {
		records[i] = fromBSON(doc)
	}
	return records, nil
}

// Close disconnects the client.
func (s *MongoSource) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// fromBSON normalizes BSON values to the types CSV auto-typing produces.
func fromBSON(doc bson.M) Record {
	rec := make(Record, len(doc))
	for k, v := range doc {
		if k == "_id" {
			continue
		}
		switch x := v.(type) {
		case int32:
			rec[k] = float64(x)
		case int64:
			rec[k] = float64(x)
		case float64, string, bool, nil:
			rec[k] = x
		case primitive.Decimal128:
			rec[k] = x.String()
		default:
			rec[k] = fmt.Sprint(x)
		}
	}
	return rec
}

var _ Source = (*MongoSource)(nil)

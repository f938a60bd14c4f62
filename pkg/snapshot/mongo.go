package snapshot

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/symbol/pkg/codec"
	"github.com/matzehuels/symbol/pkg/errors"
	"github.com/matzehuels/symbol/pkg/symbol"
)

// DefaultCollection holds snapshot records.
const DefaultCollection = "records"

// MongoStore keeps snapshots as MongoDB documents, one per record.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type document struct {
	Graph        string `bson:"graph"`
	Revision     string `bson:"revision"`
	codec.Record `bson:",inline"`
}

// NewMongoStore connects to uri and uses the records collection of
// database.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "connect %s", uri)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "ping %s", uri)
	}
	st := &MongoStore{client: client, coll: client.Database(database).Collection(DefaultCollection)}
	_, err = st.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "graph", Value: 1}, {Key: "name", Value: 1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create index")
	}
	return st, nil
}

// Save replaces the documents of name and returns a fresh revision UUID.
func (st *MongoStore) Save(ctx context.Context, name string, s *symbol.Store) (string, error) {
	rs, err := records(name, s)
	if err != nil {
		return "", err
	}
	rev := uuid.NewString()
	docs := make([]any, len(rs))
	for i, r := range rs {
		docs[i] = document{Graph: name, Revision: rev, Record: r}
	}

	if _, err := st.coll.InsertMany(ctx, docs); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "insert %s", name)
	}
	filter := bson.M{"graph": name, "revision": bson.M{"$ne": rev}}
	if _, err := st.coll.DeleteMany(ctx, filter); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "prune %s", name)
	}
	return rev, nil
}

// Load decodes the documents of name in name order.
func (st *MongoStore) Load(ctx context.Context, name string, opts codec.DecodeOptions) (*codec.Graph, error) {
	cur, err := st.coll.Find(ctx, bson.M{"graph": name}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "find %s", name)
	}
	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", name)
	}
	if len(docs) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "no snapshot %s", name)
	}
	records := make([]codec.Record, len(docs))
	for i, d := range docs {
		records[i] = d.Record
	}
	return codec.FromRecords(records, opts)
}

// Delete removes every document of name.
func (st *MongoStore) Delete(ctx context.Context, name string) error {
	if _, err := st.coll.DeleteMany(ctx, bson.M{"graph": name}); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete %s", name)
	}
	return nil
}

// Close disconnects the client.
func (st *MongoStore) Close(ctx context.Context) error {
	return st.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)

// Package export writes the surviving category graph to the remote
// document store: one document per node into the categories/edges
// collection, replacing whatever the previous run left there.
package export

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aimless-wiki/db/internal/graph"
)

const (
	databaseName   = "categories"
	collectionName = "edges"
)

// URI builds the cluster connection string from credentials, escaping
// both so passwords with reserved characters survive.
func URI(username, password, host string) string {
	return fmt.Sprintf("mongodb+srv://%s:%s@%s/?retryWrites=true&w=majority",
		url.QueryEscape(username), url.QueryEscape(password), host)
}

// Client wraps the edges collection of the document store.
type Client struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Connect dials the document store and pings it, so credential problems
// surface before any destructive write.
func Connect(ctx context.Context, uri string) (*Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to document store")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(err, "pinging document store")
	}

	return &Client{
		client: client,
		coll:   client.Database(databaseName).Collection(collectionName),
	}, nil
}

// Close releases the connection.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// ReplaceAll deletes every existing document and inserts the given ones.
// Returns the number of documents written.
func (c *Client) ReplaceAll(ctx context.Context, docs []graph.Document) (int, error) {
	if _, err := c.coll.DeleteMany(ctx, bson.D{}); err != nil {
		return 0, errors.Wrap(err, "clearing edges collection")
	}
	if len(docs) == 0 {
		return 0, nil
	}

	payload := make([]interface{}, len(docs))
	for i, doc := range docs {
		payload[i] = doc
	}
	res, err := c.coll.InsertMany(ctx, payload)
	if err != nil {
		return 0, errors.Wrap(err, "inserting edge documents")
	}
	return len(res.InsertedIDs), nil
}

package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoOpts struct {
	URI         string
	Database    string
	Timeout     time.Duration
	MaxPoolSize uint64
}

// NewMongo connects and pings; the caller owns Disconnect.
func NewMongo(ctx context.Context, o MongoOpts) (*mongo.Client, *mongo.Database, error) {
	if o.URI == "" {
		return nil, nil, fmt.Errorf("mongo uri is empty")
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	copts := options.Client().
		ApplyURI(o.URI).
		SetConnectTimeout(o.Timeout).
		SetServerSelectionTimeout(o.Timeout)
	if o.MaxPoolSize > 0 {
		copts.SetMaxPoolSize(o.MaxPoolSize)
	}

	cctx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()
	client, err := mongo.Connect(cctx, copts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, client.Database(o.Database), nil
}

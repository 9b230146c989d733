// Package qdrantdb owns all Qdrant operations: collection lifecycle, point
// upserts and similarity queries. It is the only component with durable
// state across runs.
package qdrantdb

import (
	"github.com/qdrant/go-client/qdrant"
)

// Client wraps the gRPC client.
type Client struct {
	Client *qdrant.Client
}

// NewClient dials the Qdrant gRPC port. An empty apiKey connects without
// authentication.
func NewClient(host string, port int, apiKey string) (*Client, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
	})
	if err != nil {
		return nil, err
	}
	return &Client{Client: client}, nil
}

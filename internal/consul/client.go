// Package consul provides service registration and discovery on HashiCorp
// Consul. Every service registers itself on startup; the gateway resolves
// healthy instances through the same client.
package consul

import (
	consulapi "github.com/hashicorp/consul/api"
)

// Client wraps the Consul API client.
type Client struct {
	api *consulapi.Client
}

// NewClient creates a Consul client. An empty token disables ACL auth.
func NewClient(addr, token string) (*Client, error) {
	config := consulapi.DefaultConfig()
	config.Address = addr
	if token != "" {
		config.Token = token
	}

	client, err := consulapi.NewClient(config)
	if err != nil {
		return nil, err
	}
	return &Client{api: client}, nil
}

// API returns the underlying Consul API client.
func (c *Client) API() *consulapi.Client {
	return c.api
}

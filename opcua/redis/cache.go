// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package redis implements an endpoint-discovery cache decorator over
// discovery.Finder, so repeated FindServers/GetEndpoints calls against
// the same discovery endpoint do not re-issue the underlying OPC UA
// discovery service request inside the TTL window.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/absmach/opcua-adapter/discovery"
	"github.com/absmach/opcua-adapter/message"
)

const (
	findServersPrefix = "opcua:discovery:find"
	endpointsPrefix   = "opcua:discovery:endpoints"
)

var _ discovery.Finder = (*Cache)(nil)

// Cache wraps a discovery.Finder, caching each discoveryEndpointURI's
// results in Redis for ttl before re-querying the underlying finder.
type Cache struct {
	client *redis.Client
	finder discovery.Finder
	prefix string
	ttl    time.Duration
}

// New builds a Cache over finder. prefix namespaces the keys (matching
// lora/redis/routemap.go's prefix-keyed shape); ttl <= 0 disables
// expiry tracking and the cache entry lives until evicted.
func New(client *redis.Client, finder discovery.Finder, prefix string, ttl time.Duration) *Cache {
	return &Cache{client: client, finder: finder, prefix: prefix, ttl: ttl}
}

func (c *Cache) findServersKey(discoveryEndpointURI string) string {
	return fmt.Sprintf("%s:%s:%s", c.prefix, findServersPrefix, discoveryEndpointURI)
}

func (c *Cache) endpointsKey(discoveryEndpointURI string) string {
	return fmt.Sprintf("%s:%s:%s", c.prefix, endpointsPrefix, discoveryEndpointURI)
}

// FindServers returns the cached candidate list for discoveryEndpointURI
// when present, otherwise queries finder and caches the result.
func (c *Cache) FindServers(ctx context.Context, discoveryEndpointURI string) ([]discovery.FoundServer, error) {
	key := c.findServersKey(discoveryEndpointURI)

	if cached, err := c.client.Get(ctx, key).Result(); err == nil {
		var servers []discovery.FoundServer
		if jsonErr := json.Unmarshal([]byte(cached), &servers); jsonErr == nil {
			return servers, nil
		}
	}

	servers, err := c.finder.FindServers(ctx, discoveryEndpointURI)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(servers); err == nil {
		c.client.Set(ctx, key, encoded, c.ttl)
	}
	return servers, nil
}

// GetEndpoints returns the cached endpoint list for discoveryEndpointURI
// when present, otherwise queries finder and caches the result.
func (c *Cache) GetEndpoints(ctx context.Context, discoveryEndpointURI string) ([]*message.EndpointInfo, error) {
	key := c.endpointsKey(discoveryEndpointURI)

	if cached, err := c.client.Get(ctx, key).Result(); err == nil {
		var endpoints []*message.EndpointInfo
		if jsonErr := json.Unmarshal([]byte(cached), &endpoints); jsonErr == nil {
			return endpoints, nil
		}
	}

	endpoints, err := c.finder.GetEndpoints(ctx, discoveryEndpointURI)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(endpoints); err == nil {
		c.client.Set(ctx, key, encoded, c.ttl)
	}
	return endpoints, nil
}

// Invalidate removes both cache entries for discoveryEndpointURI, the
// Remove half of lora/redis/routemap.go's Save/Get/Remove shape.
func (c *Cache) Invalidate(ctx context.Context, discoveryEndpointURI string) error {
	return c.client.Del(ctx, c.findServersKey(discoveryEndpointURI), c.endpointsKey(discoveryEndpointURI)).Err()
}

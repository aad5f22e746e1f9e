// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package registry implements the process-wide session registry: a map
// from an endpoint's "host:port" key to a connected client, with atomic
// add/remove semantics and teardown of background work when the last
// session closes.
package registry

import (
	"context"
	"net"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/absmach/opcua-adapter/message"
	"github.com/absmach/opcua-adapter/omap"
	"github.com/absmach/opcua-adapter/opcua/client"
	"github.com/absmach/opcua-adapter/pkg/errors"
)

var (
	errNotConnected = errors.New("endpoint is not connected")
	errInvalidURI   = errors.New("invalid endpoint URI")
)

// Dialer opens a new Client connection to an endpoint URI; production code
// supplies client.Dial, tests supply a fake.
type Dialer func(ctx context.Context, endpointURI string) (client.Client, error)

// StatusFunc is the status-callback signature fired on connect/disconnect
// transitions, matching the {STATUS_CLIENT_STARTED, STATUS_STOP_CLIENT}
// events in the status callback routing table.
type StatusFunc func(event message.StatusEvent, endpoint *message.EndpointInfo)

// TeardownFunc is invoked once, when the last session is removed from the
// registry - the hook subscription/delivery-queue teardown attaches to.
type TeardownFunc func()

// session is a registered connection: the live client plus the endpoint
// info it was opened with.
type session struct {
	client   client.Client
	endpoint *message.EndpointInfo
}

// Registry is the process-wide endpoint -> client map described by the
// specification's session registry component. It is safe for concurrent
// use.
type Registry struct {
	sessions *omap.Map[*session]
	count    int64

	dial     Dialer
	onStatus StatusFunc
	teardown TeardownFunc

	mu sync.Mutex
}

// New builds an empty registry. dial opens new connections; onStatus (may
// be nil) receives STATUS_CLIENT_STARTED/STATUS_STOP_CLIENT events;
// teardown (may be nil) runs once when the client count returns to zero.
func New(dial Dialer, onStatus StatusFunc, teardown TeardownFunc) *Registry {
	return &Registry{
		sessions: omap.New[*session](),
		dial:     dial,
		onStatus: onStatus,
		teardown: teardown,
	}
}

// HostPort parses endpointURI and returns its "host:port" identity key -
// the only identity the registry uses; the path portion is informational.
// A URI without an explicit port is returned as-is (no default-port
// rewrite is performed - see §6 of the endpoint URI contract).
func HostPort(endpointURI string) (string, error) {
	u, err := url.Parse(endpointURI)
	if err != nil || u.Host == "" {
		return "", errInvalidURI
	}
	if _, _, err := net.SplitHostPort(u.Host); err != nil {
		// No explicit port: accept the host as-is, informationally.
		return u.Host, nil
	}
	return u.Host, nil
}

// Connect opens a new client connection to endpointURI. It returns false,
// with a nil error and without dialing, if the key is already present in
// the registry. On success the new session is inserted, the process-wide
// client count is incremented, and STATUS_CLIENT_STARTED fires.
func (r *Registry) Connect(ctx context.Context, endpointURI string) (bool, error) {
	key, err := HostPort(endpointURI)
	if err != nil {
		return false, errors.Wrap(errInvalidURI, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions.Get(key); ok {
		return false, nil
	}

	c, err := r.dial(ctx, endpointURI)
	if err != nil {
		return false, nil
	}

	endpoint := &message.EndpointInfo{EndpointURI: endpointURI}
	r.sessions.Set(key, &session{client: c, endpoint: endpoint})
	atomic.AddInt64(&r.count, 1)

	if r.onStatus != nil {
		r.onStatus(message.StatusEventClientStarted, endpoint)
	}
	return true, nil
}

// Disconnect removes the session keyed by endpoint.EndpointURI's
// host:port, closes its client and fires STATUS_STOP_CLIENT. Calling
// Disconnect twice for the same endpoint is safe: the second call is a
// no-op and fires no status callback. When the client count falls to
// zero, the registered teardown hook runs.
func (r *Registry) Disconnect(ctx context.Context, endpoint *message.EndpointInfo) error {
	key, err := HostPort(endpoint.EndpointURI)
	if err != nil {
		return errors.Wrap(errInvalidURI, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions.Get(key)
	if !ok {
		return nil
	}
	r.sessions.Delete(key)

	if err := s.client.Close(ctx); err != nil {
		return err
	}

	if r.onStatus != nil {
		r.onStatus(message.StatusEventStopClient, s.endpoint)
	}

	if atomic.AddInt64(&r.count, -1) == 0 && r.teardown != nil {
		r.teardown()
	}
	return nil
}

// Get returns the live client for endpointURI's host:port key.
func (r *Registry) Get(endpointURI string) (client.Client, error) {
	key, err := HostPort(endpointURI)
	if err != nil {
		return nil, errors.Wrap(errInvalidURI, err)
	}
	s, ok := r.sessions.Get(key)
	if !ok {
		return nil, errNotConnected
	}
	return s.client, nil
}

// Len reports the number of active sessions.
func (r *Registry) Len() int {
	return r.sessions.Len()
}

// Keys returns the host:port identity of every active session, in connect
// order.
func (r *Registry) Keys() []string {
	return r.sessions.Keys()
}

// Endpoints returns the endpoint info of every active session, in connect
// order - the showNodeList façade operation.
func (r *Registry) Endpoints() []*message.EndpointInfo {
	keys := r.sessions.Keys()
	out := make([]*message.EndpointInfo, 0, len(keys))
	for _, k := range keys {
		if s, ok := r.sessions.Get(k); ok {
			out = append(out, s.endpoint)
		}
	}
	return out
}

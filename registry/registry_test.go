// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package registry_test

import (
	"context"
	"testing"

	"github.com/absmach/opcua-adapter/message"
	"github.com/absmach/opcua-adapter/opcua/client"
	"github.com/absmach/opcua-adapter/registry"
	"github.com/gopcua/opcua/ua"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	closeErr error
	closed   bool
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) Connect(context.Context) error { return nil }
func (f *fakeClient) Close(context.Context) error    { f.closed = true; return f.closeErr }
func (f *fakeClient) GetEndpoints(context.Context) ([]*ua.EndpointDescription, error) {
	return nil, nil
}
func (f *fakeClient) Read(context.Context, *ua.ReadRequest) (*ua.ReadResponse, error) { return nil, nil }
func (f *fakeClient) Write(context.Context, *ua.WriteRequest) (*ua.WriteResponse, error) {
	return nil, nil
}
func (f *fakeClient) Browse(context.Context, *ua.BrowseRequest) (*ua.BrowseResponse, error) {
	return nil, nil
}
func (f *fakeClient) BrowseNext(context.Context, *ua.BrowseNextRequest) (*ua.BrowseNextResponse, error) {
	return nil, nil
}
func (f *fakeClient) Call(context.Context, *ua.CallMethodRequest) (*ua.CallMethodResult, error) {
	return nil, nil
}
func (f *fakeClient) CreateSubscription(context.Context, *client.SubscriptionParams, chan<- *client.PublishNotification) (client.Subscription, error) {
	return nil, nil
}

func dialerFor(c client.Client, err error) registry.Dialer {
	return func(context.Context, string) (client.Client, error) { return c, err }
}

func TestConnectThenDuplicate(t *testing.T) {
	r := registry.New(dialerFor(&fakeClient{}, nil), nil, nil)

	ok, err := r.Connect(context.Background(), "opc.tcp://localhost:4840")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Connect(context.Background(), "opc.tcp://localhost:4840")
	require.NoError(t, err)
	assert.False(t, ok, "second connect to the same host:port must fail")

	assert.Equal(t, 1, r.Len())
}

func TestConnectDifferentEndpointsBothSucceed(t *testing.T) {
	r := registry.New(dialerFor(&fakeClient{}, nil), nil, nil)

	ok, err := r.Connect(context.Background(), "opc.tcp://host-a:4840")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Connect(context.Background(), "opc.tcp://host-b:4840")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, 2, r.Len())
}

func TestIdempotentDisconnect(t *testing.T) {
	var startEvents, stopEvents []message.StatusEvent
	onStatus := func(evt message.StatusEvent, _ *message.EndpointInfo) {
		if evt == message.StatusEventClientStarted {
			startEvents = append(startEvents, evt)
		} else {
			stopEvents = append(stopEvents, evt)
		}
	}

	r := registry.New(dialerFor(&fakeClient{}, nil), onStatus, nil)
	ok, err := r.Connect(context.Background(), "opc.tcp://localhost:4840")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, startEvents, 1)

	require.NoError(t, r.Disconnect(context.Background(), &message.EndpointInfo{EndpointURI: "opc.tcp://localhost:4840"}))
	assert.Len(t, stopEvents, 1)

	// Second disconnect is a no-op: no further status callback fires.
	require.NoError(t, r.Disconnect(context.Background(), &message.EndpointInfo{EndpointURI: "opc.tcp://localhost:4840"}))
	assert.Len(t, stopEvents, 1, "idempotent disconnect must not fire a second stop event")
}

func TestTeardownFiresWhenLastSessionCloses(t *testing.T) {
	var torndown bool
	r := registry.New(dialerFor(&fakeClient{}, nil), nil, func() { torndown = true })

	_, err := r.Connect(context.Background(), "opc.tcp://host-a:4840")
	require.NoError(t, err)
	_, err = r.Connect(context.Background(), "opc.tcp://host-b:4840")
	require.NoError(t, err)

	require.NoError(t, r.Disconnect(context.Background(), &message.EndpointInfo{EndpointURI: "opc.tcp://host-a:4840"}))
	assert.False(t, torndown, "teardown must not fire while sessions remain")

	require.NoError(t, r.Disconnect(context.Background(), &message.EndpointInfo{EndpointURI: "opc.tcp://host-b:4840"}))
	assert.True(t, torndown, "teardown must fire once the last session closes")
}

func TestGetUnknownEndpoint(t *testing.T) {
	r := registry.New(dialerFor(&fakeClient{}, nil), nil, nil)
	_, err := r.Get("opc.tcp://localhost:4840")
	assert.Error(t, err)
}

func TestHostPortNoPortNoRewrite(t *testing.T) {
	key, err := registry.HostPort("opc.tcp://localhost/path")
	require.NoError(t, err)
	assert.Equal(t, "localhost", key, "a URI lacking an explicit port is accepted as-is, no default-port rewrite")
}

func TestHostPortWithPort(t *testing.T) {
	key, err := registry.HostPort("opc.tcp://localhost:4840/path")
	require.NoError(t, err)
	assert.Equal(t, "localhost:4840", key)
}

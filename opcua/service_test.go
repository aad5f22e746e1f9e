// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package opcua_test

import (
	"context"
	"testing"
	"time"

	"github.com/absmach/opcua-adapter/discovery"
	"github.com/absmach/opcua-adapter/message"
	"github.com/absmach/opcua-adapter/opcua"
	"github.com/absmach/opcua-adapter/opcua/client"
	"github.com/absmach/opcua-adapter/queue"
	"github.com/gopcua/opcua/ua"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	readResp *ua.ReadResponse
	readErr  error
	closed   bool
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) Connect(context.Context) error { return nil }
func (f *fakeClient) Close(context.Context) error   { f.closed = true; return nil }
func (f *fakeClient) GetEndpoints(context.Context) ([]*ua.EndpointDescription, error) {
	return nil, nil
}
func (f *fakeClient) Read(context.Context, *ua.ReadRequest) (*ua.ReadResponse, error) {
	return f.readResp, f.readErr
}
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

type fakeFinder struct{}

func (fakeFinder) FindServers(context.Context, string) ([]discovery.FoundServer, error) {
	return nil, nil
}
func (fakeFinder) GetEndpoints(context.Context, string) ([]*message.EndpointInfo, error) {
	return nil, nil
}

func newFacade(c client.Client) *opcua.Facade {
	dial := func(context.Context, string) (client.Client, error) { return c, nil }
	return opcua.New(opcua.Config{QueueCapacity: 8, SupportedApplicationTypes: 15}, dial, fakeFinder{}, nil, nil, nil)
}

func TestConnectDisconnectIdempotent(t *testing.T) {
	f := newFacade(&fakeClient{})

	ok, err := f.ConnectClient(context.Background(), "opc.tcp://localhost:4840")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.ConnectClient(context.Background(), "opc.tcp://localhost:4840")
	require.NoError(t, err)
	assert.False(t, ok, "duplicate connect must fail per registry-uniqueness invariant")

	endpoint := &message.EndpointInfo{EndpointURI: "opc.tcp://localhost:4840"}
	require.NoError(t, f.DisconnectClient(context.Background(), endpoint))
	require.NoError(t, f.DisconnectClient(context.Background(), endpoint), "second disconnect must be a no-op")
}

func TestReadNodeNotConnected(t *testing.T) {
	f := newFacade(&fakeClient{})
	endpoint := &message.EndpointInfo{EndpointURI: "opc.tcp://localhost:4840"}

	_, result := f.ReadNode(context.Background(), endpoint, message.CmdRead, []*message.NodeInfo{{NodeID: &message.NodeID{Value: "x"}}})
	assert.Equal(t, message.StatusParamInvalid, result)
}

func TestShowNodeListReflectsConnectedSessions(t *testing.T) {
	f := newFacade(&fakeClient{})
	ctx := context.Background()

	_, err := f.ConnectClient(ctx, "opc.tcp://localhost:4840")
	require.NoError(t, err)

	list := f.ShowNodeList(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, "opc.tcp://localhost:4840", list[0].EndpointURI)
}

func TestConfigureStartsDispatcher(t *testing.T) {
	f := newFacade(&fakeClient{})
	delivered := make(chan *message.EdgeMessage, 1)
	f.Configure(queue.Callbacks{
		OnError: func(m *message.EdgeMessage) { delivered <- m },
	})

	ctx := context.Background()
	endpoint := &message.EndpointInfo{EndpointURI: "opc.tcp://localhost:4840"}
	_, result := f.ReadNode(ctx, endpoint, message.CmdRead, []*message.NodeInfo{{NodeID: &message.NodeID{Value: "x"}}})
	assert.Equal(t, message.StatusParamInvalid, result)

	// BrowseNode on an unconnected endpoint queues an ERROR message, which
	// the running dispatcher hands to OnError.
	assert.Equal(t, message.StatusParamInvalid, f.BrowseNode(ctx, endpoint, []*message.Request{{NodeInfo: &message.NodeInfo{NodeID: &message.NodeID{Value: "x"}}}}))
	select {
	case m := <-delivered:
		assert.Equal(t, message.TypeError, m.Type)
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not deliver the queued error message")
	}
}

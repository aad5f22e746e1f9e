// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package client_test

import (
	"context"
	"testing"

	"github.com/absmach/opcua-adapter/opcua/client"
	"github.com/gopcua/opcua/ua"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient is a minimal in-memory stand-in for GopcuaClient, used by this
// package's tests to exercise the Client interface without a live server.
// The domain packages' tests define their own fakes.
type fakeClient struct {
	connectErr error
	closeErr   error
	closed     bool

	endpoints []*ua.EndpointDescription

	readResp  *ua.ReadResponse
	readErr   error
	writeResp *ua.WriteResponse
	writeErr  error

	browseResp     *ua.BrowseResponse
	browseErr      error
	browseNextResp *ua.BrowseNextResponse
	browseNextErr  error

	callResult *ua.CallMethodResult
	callErr    error

	subscription client.Subscription
	subErr       error
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) Connect(context.Context) error { return f.connectErr }
func (f *fakeClient) Close(context.Context) error   { f.closed = true; return f.closeErr }

func (f *fakeClient) GetEndpoints(context.Context) ([]*ua.EndpointDescription, error) {
	return f.endpoints, nil
}

func (f *fakeClient) Read(context.Context, *ua.ReadRequest) (*ua.ReadResponse, error) {
	return f.readResp, f.readErr
}

func (f *fakeClient) Write(context.Context, *ua.WriteRequest) (*ua.WriteResponse, error) {
	return f.writeResp, f.writeErr
}

func (f *fakeClient) Browse(context.Context, *ua.BrowseRequest) (*ua.BrowseResponse, error) {
	return f.browseResp, f.browseErr
}

func (f *fakeClient) BrowseNext(context.Context, *ua.BrowseNextRequest) (*ua.BrowseNextResponse, error) {
	return f.browseNextResp, f.browseNextErr
}

func (f *fakeClient) Call(context.Context, *ua.CallMethodRequest) (*ua.CallMethodResult, error) {
	return f.callResult, f.callErr
}

func (f *fakeClient) CreateSubscription(context.Context, *client.SubscriptionParams, chan<- *client.PublishNotification) (client.Subscription, error) {
	return f.subscription, f.subErr
}

func TestFakeClientGetEndpoints(t *testing.T) {
	want := []*ua.EndpointDescription{{EndpointURL: "opc.tcp://localhost:4840"}}
	f := &fakeClient{endpoints: want}

	got, err := f.GetEndpoints(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFakeClientClose(t *testing.T) {
	f := &fakeClient{}
	require.NoError(t, f.Close(context.Background()))
	assert.True(t, f.closed)
}

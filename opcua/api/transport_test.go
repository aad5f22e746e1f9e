// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/absmach/opcua-adapter/discovery"
	"github.com/absmach/opcua-adapter/message"
	"github.com/absmach/opcua-adapter/opcua"
	"github.com/absmach/opcua-adapter/opcua/api"
	"github.com/absmach/opcua-adapter/queue"
)

type fakeService struct {
	connected bool
}

var _ opcua.Service = (*fakeService)(nil)

func (f *fakeService) Configure(queue.Callbacks) {}
func (f *fakeService) CreateServer(context.Context, *message.EndpointInfo) error { return nil }
func (f *fakeService) CloseServer(context.Context, *message.EndpointInfo) error  { return nil }
func (f *fakeService) ConnectClient(context.Context, string) (bool, error) {
	ok := !f.connected
	f.connected = true
	return ok, nil
}
func (f *fakeService) DisconnectClient(context.Context, *message.EndpointInfo) error {
	f.connected = false
	return nil
}
func (f *fakeService) FindServers(context.Context, string, []string, []string) ([]discovery.FoundServer, []error) {
	return []discovery.FoundServer{{ApplicationURI: "urn:demo"}}, nil
}
func (f *fakeService) GetEndpointInfo(context.Context, string) ([]*message.EndpointInfo, error) {
	return nil, nil
}
func (f *fakeService) ReadNode(_ context.Context, endpoint *message.EndpointInfo, _ message.Command, _ []*message.NodeInfo) (*message.EdgeMessage, message.Result) {
	return &message.EdgeMessage{Type: message.TypeGeneralResponse, Endpoint: endpoint, Result: message.StatusOK}, message.StatusOK
}
func (f *fakeService) WriteNode(_ context.Context, endpoint *message.EndpointInfo, _ []*message.Request) (*message.EdgeMessage, message.Result) {
	return &message.EdgeMessage{Type: message.TypeGeneralResponse, Endpoint: endpoint, Result: message.StatusOK}, message.StatusOK
}
func (f *fakeService) BrowseNode(context.Context, *message.EndpointInfo, []*message.Request) message.Result {
	return message.StatusOK
}
func (f *fakeService) BrowseViews(context.Context, *message.EndpointInfo, []*message.Request) ([]*message.ViewNodeInfo, message.Result) {
	return nil, message.StatusOK
}
func (f *fakeService) BrowseNext(context.Context, *message.EndpointInfo, []*message.Request, []*message.ContinuationPoint) message.Result {
	return message.StatusOK
}
func (f *fakeService) CallMethod(_ context.Context, endpoint *message.EndpointInfo, _ *message.Request) (*message.EdgeMessage, message.Result) {
	return &message.EdgeMessage{Type: message.TypeGeneralResponse, Endpoint: endpoint, Result: message.StatusOK}, message.StatusOK
}
func (f *fakeService) HandleSubscription(_ context.Context, endpoint *message.EndpointInfo, _ []*message.Request) (*message.EdgeMessage, message.Result) {
	return &message.EdgeMessage{Type: message.TypeGeneralResponse, Endpoint: endpoint, Result: message.StatusOK}, message.StatusOK
}
func (f *fakeService) ShowNodeList(context.Context) []*message.EndpointInfo {
	if !f.connected {
		return nil
	}
	return []*message.EndpointInfo{{EndpointURI: "opc.tcp://localhost:4840"}}
}

func TestConnectAndShowNodeList(t *testing.T) {
	srv := httptest.NewServer(api.MakeHandler(&fakeService{}, "test-instance"))
	defer srv.Close()

	body, _ := json.Marshal(map[string]string{"endpoint_uri": "opc.tcp://localhost:4840"})
	resp, err := http.Post(srv.URL+"/clients", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var connectOut map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&connectOut))
	assert.True(t, connectOut["connected"])

	listResp, err := http.Get(srv.URL + "/clients")
	require.NoError(t, err)
	defer listResp.Body.Close()

	var list struct {
		Endpoints []*message.EndpointInfo `json:"endpoints"`
	}
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&list))
	require.Len(t, list.Endpoints, 1)
	assert.Equal(t, "opc.tcp://localhost:4840", list.Endpoints[0].EndpointURI)
}

func TestReadNodeRejectsMissingEndpoint(t *testing.T) {
	srv := httptest.NewServer(api.MakeHandler(&fakeService{}, "test-instance"))
	defer srv.Close()

	body, _ := json.Marshal(map[string]any{"nodes": []any{}})
	resp, err := http.Post(srv.URL+"/read", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := httptest.NewServer(api.MakeHandler(&fakeService{}, "test-instance"))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	metricsResp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	assert.Equal(t, http.StatusOK, metricsResp.StatusCode)
}

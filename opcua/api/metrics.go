// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"time"

	"github.com/go-kit/kit/metrics"

	"github.com/absmach/opcua-adapter/discovery"
	"github.com/absmach/opcua-adapter/message"
	"github.com/absmach/opcua-adapter/opcua"
	"github.com/absmach/opcua-adapter/queue"
)

var _ opcua.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     opcua.Service
}

// MetricsMiddleware instruments svc by tracking request count and latency
// per method, the counter+summary pair internal.MakeMetrics builds.
func MetricsMiddleware(svc opcua.Service, counter metrics.Counter, latency metrics.Histogram) opcua.Service {
	return &metricsMiddleware{counter: counter, latency: latency, svc: svc}
}

func (mm *metricsMiddleware) observe(method string, begin time.Time) {
	mm.counter.With("method", method).Add(1)
	mm.latency.With("method", method).Observe(float64(time.Since(begin).Microseconds()))
}

func (mm *metricsMiddleware) Configure(cbs queue.Callbacks) {
	defer mm.observe("configure", time.Now())
	mm.svc.Configure(cbs)
}

func (mm *metricsMiddleware) CreateServer(ctx context.Context, endpoint *message.EndpointInfo) error {
	defer mm.observe("create_server", time.Now())
	return mm.svc.CreateServer(ctx, endpoint)
}

func (mm *metricsMiddleware) CloseServer(ctx context.Context, endpoint *message.EndpointInfo) error {
	defer mm.observe("close_server", time.Now())
	return mm.svc.CloseServer(ctx, endpoint)
}

func (mm *metricsMiddleware) ConnectClient(ctx context.Context, endpointURI string) (bool, error) {
	defer mm.observe("connect_client", time.Now())
	return mm.svc.ConnectClient(ctx, endpointURI)
}

func (mm *metricsMiddleware) DisconnectClient(ctx context.Context, endpoint *message.EndpointInfo) error {
	defer mm.observe("disconnect_client", time.Now())
	return mm.svc.DisconnectClient(ctx, endpoint)
}

func (mm *metricsMiddleware) FindServers(ctx context.Context, discoveryEndpointURI string, serverURIs, localeIDs []string) ([]discovery.FoundServer, []error) {
	defer mm.observe("find_servers", time.Now())
	return mm.svc.FindServers(ctx, discoveryEndpointURI, serverURIs, localeIDs)
}

func (mm *metricsMiddleware) GetEndpointInfo(ctx context.Context, discoveryEndpointURI string) ([]*message.EndpointInfo, error) {
	defer mm.observe("get_endpoint_info", time.Now())
	return mm.svc.GetEndpointInfo(ctx, discoveryEndpointURI)
}

func (mm *metricsMiddleware) ReadNode(ctx context.Context, endpoint *message.EndpointInfo, cmd message.Command, nodes []*message.NodeInfo) (*message.EdgeMessage, message.Result) {
	defer mm.observe("read_node", time.Now())
	return mm.svc.ReadNode(ctx, endpoint, cmd, nodes)
}

func (mm *metricsMiddleware) WriteNode(ctx context.Context, endpoint *message.EndpointInfo, requests []*message.Request) (*message.EdgeMessage, message.Result) {
	defer mm.observe("write_node", time.Now())
	return mm.svc.WriteNode(ctx, endpoint, requests)
}

func (mm *metricsMiddleware) BrowseNode(ctx context.Context, endpoint *message.EndpointInfo, reqs []*message.Request) message.Result {
	defer mm.observe("browse_node", time.Now())
	return mm.svc.BrowseNode(ctx, endpoint, reqs)
}

func (mm *metricsMiddleware) BrowseViews(ctx context.Context, endpoint *message.EndpointInfo, reqs []*message.Request) ([]*message.ViewNodeInfo, message.Result) {
	defer mm.observe("browse_views", time.Now())
	return mm.svc.BrowseViews(ctx, endpoint, reqs)
}

func (mm *metricsMiddleware) BrowseNext(ctx context.Context, endpoint *message.EndpointInfo, reqs []*message.Request, continuation []*message.ContinuationPoint) message.Result {
	defer mm.observe("browse_next", time.Now())
	return mm.svc.BrowseNext(ctx, endpoint, reqs, continuation)
}

func (mm *metricsMiddleware) CallMethod(ctx context.Context, endpoint *message.EndpointInfo, req *message.Request) (*message.EdgeMessage, message.Result) {
	defer mm.observe("call_method", time.Now())
	return mm.svc.CallMethod(ctx, endpoint, req)
}

func (mm *metricsMiddleware) HandleSubscription(ctx context.Context, endpoint *message.EndpointInfo, reqs []*message.Request) (*message.EdgeMessage, message.Result) {
	defer mm.observe("handle_subscription", time.Now())
	return mm.svc.HandleSubscription(ctx, endpoint, reqs)
}

func (mm *metricsMiddleware) ShowNodeList(ctx context.Context) []*message.EndpointInfo {
	defer mm.observe("show_node_list", time.Now())
	return mm.svc.ShowNodeList(ctx)
}

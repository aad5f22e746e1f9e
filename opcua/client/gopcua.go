// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"sync"
	"time"

	"github.com/gopcua/opcua"
	"github.com/gopcua/opcua/ua"
)

var _ Client = (*GopcuaClient)(nil)

// GopcuaClient adapts a real *opcua.Client to the Client seam.
type GopcuaClient struct {
	inner *opcua.Client
}

// Dial constructs and connects a GopcuaClient to endpointURI.
func Dial(ctx context.Context, endpointURI string, opts ...opcua.Option) (*GopcuaClient, error) {
	c, err := opcua.NewClient(endpointURI, opts...)
	if err != nil {
		return nil, err
	}
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	return &GopcuaClient{inner: c}, nil
}

func (g *GopcuaClient) Connect(ctx context.Context) error { return g.inner.Connect(ctx) }
func (g *GopcuaClient) Close(ctx context.Context) error   { return g.inner.Close(ctx) }

func (g *GopcuaClient) GetEndpoints(ctx context.Context) ([]*ua.EndpointDescription, error) {
	resp, err := g.inner.GetEndpoints(ctx, &ua.GetEndpointsRequest{})
	if err != nil {
		return nil, err
	}
	return resp.Endpoints, nil
}

func (g *GopcuaClient) Read(ctx context.Context, req *ua.ReadRequest) (*ua.ReadResponse, error) {
	return g.inner.Read(ctx, req)
}

func (g *GopcuaClient) Write(ctx context.Context, req *ua.WriteRequest) (*ua.WriteResponse, error) {
	return g.inner.Write(ctx, req)
}

func (g *GopcuaClient) Browse(ctx context.Context, req *ua.BrowseRequest) (*ua.BrowseResponse, error) {
	return g.inner.Browse(ctx, req)
}

func (g *GopcuaClient) BrowseNext(ctx context.Context, req *ua.BrowseNextRequest) (*ua.BrowseNextResponse, error) {
	return g.inner.BrowseNext(ctx, req)
}

func (g *GopcuaClient) Call(ctx context.Context, req *ua.CallMethodRequest) (*ua.CallMethodResult, error) {
	resp, err := g.inner.Call(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (g *GopcuaClient) CreateSubscription(ctx context.Context, params *SubscriptionParams, notifyCh chan<- *PublishNotification) (Subscription, error) {
	raw := make(chan *opcua.PublishNotificationData, 16)
	inner, err := g.inner.Subscribe(ctx, &opcua.SubscriptionParameters{
		Interval:                   millis(params.Interval),
		LifetimeCount:              params.LifetimeCount,
		MaxKeepAliveCount:          params.MaxKeepAliveCount,
		MaxNotificationsPerPublish: params.MaxNotifsPerPublish,
		Priority:                   params.Priority,
	}, raw)
	if err != nil {
		return nil, err
	}
	sub := &gopcuaSubscription{inner: inner, itemByHandle: make(map[uint32]uint32)}
	go sub.relayNotifications(raw, notifyCh)
	return sub, nil
}

var _ Subscription = (*gopcuaSubscription)(nil)

// gopcuaSubscription wraps one real subscription. ClientHandle is the only
// identifier gopcua echoes back on a PublishNotificationData's
// DataChangeNotification - the server-assigned MonitoredItemID never is -
// so itemByHandle translates the handle a Monitor call minted back to the
// real MonitoredItemID the rest of this package's callers operate on.
type gopcuaSubscription struct {
	inner *opcua.Subscription

	mu           sync.Mutex
	nextHandle   uint32
	itemByHandle map[uint32]uint32
}

func (s *gopcuaSubscription) ID() uint32 { return s.inner.SubscriptionID }

func (s *gopcuaSubscription) Monitor(ctx context.Context, ts ua.TimestampsToReturn, reqs ...*MonitorRequest) ([]uint32, error) {
	createReqs := make([]*ua.MonitoredItemCreateRequest, len(reqs))
	handles := make([]uint32, len(reqs))

	s.mu.Lock()
	for i, r := range reqs {
		s.nextHandle++
		handles[i] = s.nextHandle
		createReqs[i] = opcua.NewMonitoredItemCreateRequestWithDefaults(r.NodeID, r.AttributeID, handles[i])
		createReqs[i].RequestedParameters.SamplingInterval = r.SamplingInterval
	}
	s.mu.Unlock()

	resp, err := s.inner.Monitor(ctx, ts, createReqs...)
	if err != nil {
		return nil, err
	}

	ids := make([]uint32, len(resp.Results))
	s.mu.Lock()
	for i, res := range resp.Results {
		ids[i] = res.MonitoredItemID
		s.itemByHandle[handles[i]] = res.MonitoredItemID
	}
	s.mu.Unlock()
	return ids, nil
}

func (s *gopcuaSubscription) Unmonitor(ctx context.Context, monitoredItemIDs ...uint32) error {
	_, err := s.inner.Unmonitor(ctx, monitoredItemIDs...)
	if err != nil {
		return err
	}

	removed := make(map[uint32]bool, len(monitoredItemIDs))
	for _, id := range monitoredItemIDs {
		removed[id] = true
	}
	s.mu.Lock()
	for handle, itemID := range s.itemByHandle {
		if removed[itemID] {
			delete(s.itemByHandle, handle)
		}
	}
	s.mu.Unlock()
	return nil
}

func (s *gopcuaSubscription) ModifyMonitoredItems(ctx context.Context, ts ua.TimestampsToReturn, reqs ...*MonitorRequest) error {
	modifyReqs := make([]*ua.MonitoredItemModifyRequest, len(reqs))
	for i, r := range reqs {
		modifyReqs[i] = &ua.MonitoredItemModifyRequest{
			MonitoredItemID: r.MonitoredItemID,
			RequestedParameters: &ua.MonitoringParameters{
				SamplingInterval: r.SamplingInterval,
			},
		}
	}
	_, err := s.inner.ModifyMonitoredItems(ctx, ts, modifyReqs...)
	return err
}

func (s *gopcuaSubscription) ModifySubscription(ctx context.Context, params *SubscriptionParams) error {
	return s.inner.ModifySubscription(ctx, opcua.SubscriptionParameters{
		Interval:                   millis(params.Interval),
		LifetimeCount:              params.LifetimeCount,
		MaxKeepAliveCount:          params.MaxKeepAliveCount,
		MaxNotificationsPerPublish: params.MaxNotifsPerPublish,
		Priority:                   params.Priority,
	})
}

func (s *gopcuaSubscription) SetMonitoringMode(ctx context.Context, mode ua.MonitoringMode, monitoredItemIDs ...uint32) error {
	_, err := s.inner.SetMonitoringMode(ctx, mode, monitoredItemIDs...)
	return err
}

func (s *gopcuaSubscription) SetPublishingMode(ctx context.Context, enabled bool) error {
	_, err := s.inner.SetPublishingMode(ctx, enabled)
	return err
}

func (s *gopcuaSubscription) Republish(ctx context.Context, retransmitSequenceNumber uint32) (*ua.NotificationMessage, error) {
	return s.inner.Republish(ctx, retransmitSequenceNumber)
}

func (s *gopcuaSubscription) Cancel(ctx context.Context) error {
	return s.inner.Cancel(ctx)
}

// relayNotifications translates each notification's ClientHandle back to
// the real MonitoredItemID via itemByHandle before delivering it - a
// notification for a handle this subscription never minted (or already
// unmonitored) is dropped rather than forwarded with a wrong id.
func (s *gopcuaSubscription) relayNotifications(raw <-chan *opcua.PublishNotificationData, out chan<- *PublishNotification) {
	for data := range raw {
		if data.Error != nil {
			out <- &PublishNotification{Error: data.Error}
			continue
		}
		event, ok := data.Value.(*ua.DataChangeNotification)
		if !ok {
			continue
		}
		for _, item := range event.MonitoredItems {
			s.mu.Lock()
			itemID, known := s.itemByHandle[item.ClientHandle]
			s.mu.Unlock()
			if !known {
				continue
			}
			out <- &PublishNotification{
				SubscriptionID:  data.SubscriptionID,
				MonitoredItemID: itemID,
				Value:           item.Value,
			}
		}
	}
}

func millis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

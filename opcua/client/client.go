// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package client defines the seam between the domain packages (registry,
// discovery, readwrite, browse, subscription) and the underlying OPC UA
// wire-protocol implementation. Production code is backed by
// github.com/gopcua/opcua; tests substitute a fake satisfying the same
// interface.
package client

import (
	"context"

	"github.com/gopcua/opcua/ua"
)

// Client is the subset of the underlying OPC UA client every domain
// package depends on. It is deliberately expressed in terms of the wire
// library's own ua.* request/response types - those are the external
// collaborator named in scope, not something this module re-invents.
type Client interface {
	Connect(ctx context.Context) error
	Close(ctx context.Context) error

	GetEndpoints(ctx context.Context) ([]*ua.EndpointDescription, error)

	Read(ctx context.Context, req *ua.ReadRequest) (*ua.ReadResponse, error)
	Write(ctx context.Context, req *ua.WriteRequest) (*ua.WriteResponse, error)
	Browse(ctx context.Context, req *ua.BrowseRequest) (*ua.BrowseResponse, error)
	BrowseNext(ctx context.Context, req *ua.BrowseNextRequest) (*ua.BrowseNextResponse, error)
	Call(ctx context.Context, req *ua.CallMethodRequest) (*ua.CallMethodResult, error)

	CreateSubscription(ctx context.Context, params *SubscriptionParams, notifyCh chan<- *PublishNotification) (Subscription, error)
}

// SubscriptionParams mirrors the subset of gopcua's SubscriptionParameters
// the subscription engine configures per the Create subtype.
type SubscriptionParams struct {
	Interval           float64
	LifetimeCount      uint32
	MaxKeepAliveCount  uint32
	MaxNotifsPerPublish uint32
	Priority           uint8
}

// MonitorRequest describes one monitored item to attach to a Subscription.
// Context is not passed to the wire library and is not copied into any
// PublishNotification; notifications are correlated by their
// MonitoredItemID instead. MonitoredItemID is the server-assigned id
// from the Monitor call that created the item; it is ignored by Monitor
// itself (which is creating the item) and required by
// ModifyMonitoredItems, which targets an already-existing item.
type MonitorRequest struct {
	NodeID           *ua.NodeID
	AttributeID      ua.AttributeID
	SamplingInterval float64
	MonitoredItemID  uint32
	Context          any
}

// PublishNotification is the decoded payload delivered to notifyCh for a
// data-change on one monitored item.
type PublishNotification struct {
	SubscriptionID  uint32
	MonitoredItemID uint32
	Context         any
	Value           *ua.DataValue
	Error           error
}

// Subscription is the seam over gopcua's *opcua.Subscription used by the
// subscription engine.
type Subscription interface {
	ID() uint32
	Monitor(ctx context.Context, ts ua.TimestampsToReturn, reqs ...*MonitorRequest) ([]uint32, error)
	Unmonitor(ctx context.Context, monitoredItemIDs ...uint32) error
	ModifyMonitoredItems(ctx context.Context, ts ua.TimestampsToReturn, reqs ...*MonitorRequest) error
	ModifySubscription(ctx context.Context, params *SubscriptionParams) error
	SetMonitoringMode(ctx context.Context, mode ua.MonitoringMode, monitoredItemIDs ...uint32) error
	SetPublishingMode(ctx context.Context, enabled bool) error
	Republish(ctx context.Context, retransmitSequenceNumber uint32) (*ua.NotificationMessage, error)
	Cancel(ctx context.Context) error
}

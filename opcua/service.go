// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package opcua

import (
	"context"
	"log/slog"

	"github.com/absmach/opcua-adapter/browse"
	"github.com/absmach/opcua-adapter/discovery"
	"github.com/absmach/opcua-adapter/message"
	"github.com/absmach/opcua-adapter/pkg/errors"
	"github.com/absmach/opcua-adapter/queue"
	"github.com/absmach/opcua-adapter/readwrite"
	"github.com/absmach/opcua-adapter/registry"
	"github.com/absmach/opcua-adapter/subscription"
)

var (
	errNotConnected = errors.New("endpoint is not connected")
	errBadSubtype   = errors.New("unrecognized subscription subtype")
)

// Service specifies the façade API every application (and every decorator
// - logging, metrics) builds against: connect/disconnect, discovery,
// read/write, browse and subscribe, plus the delivery-queue dispatcher
// lifecycle. It is the public surface named C9 in the specification.
type Service interface {
	// Configure registers the dispatcher callbacks and starts the receive
	// queue's dispatcher goroutine. Calling it twice replaces the previous
	// callback table.
	Configure(cbs queue.Callbacks)

	// CreateServer / CloseServer only log the request. The embedded-server
	// address-space primitives themselves are an out-of-scope collaborator
	// (§1); these calls fire no SERVER_STARTED/STOP_SERVER status event.
	CreateServer(ctx context.Context, endpoint *message.EndpointInfo) error
	CloseServer(ctx context.Context, endpoint *message.EndpointInfo) error

	// ConnectClient opens a session to endpointURI, returning false
	// (without error) on a duplicate connect per the registry-uniqueness
	// invariant.
	ConnectClient(ctx context.Context, endpointURI string) (bool, error)

	// DisconnectClient tears down the session for endpoint, idempotently.
	DisconnectClient(ctx context.Context, endpoint *message.EndpointInfo) error

	// FindServers and GetEndpointInfo perform discovery against a
	// (possibly unconnected) discovery endpoint URI.
	FindServers(ctx context.Context, discoveryEndpointURI string, serverURIs, localeIDs []string) ([]discovery.FoundServer, []error)
	GetEndpointInfo(ctx context.Context, discoveryEndpointURI string) ([]*message.EndpointInfo, error)

	// ReadNode / WriteNode issue one batched Read or Write against an
	// already-connected endpoint.
	ReadNode(ctx context.Context, endpoint *message.EndpointInfo, cmd message.Command, nodes []*message.NodeInfo) (*message.EdgeMessage, message.Result)
	WriteNode(ctx context.Context, endpoint *message.EndpointInfo, requests []*message.Request) (*message.EdgeMessage, message.Result)

	// BrowseNode / BrowseViews / BrowseNext drive the browse engine,
	// streaming BROWSE_RESPONSE messages through the receive queue as a
	// side effect.
	BrowseNode(ctx context.Context, endpoint *message.EndpointInfo, reqs []*message.Request) message.Result
	BrowseViews(ctx context.Context, endpoint *message.EndpointInfo, reqs []*message.Request) ([]*message.ViewNodeInfo, message.Result)
	BrowseNext(ctx context.Context, endpoint *message.EndpointInfo, reqs []*message.Request, continuation []*message.ContinuationPoint) message.Result

	// CallMethod invokes one OPC UA method and decodes its output
	// arguments back to versatile values.
	CallMethod(ctx context.Context, endpoint *message.EndpointInfo, req *message.Request) (*message.EdgeMessage, message.Result)

	// HandleSubscription dispatches to the subscription engine's
	// Create/Modify/Delete/Republish subtypes based on req.Sub.Subtype.
	HandleSubscription(ctx context.Context, endpoint *message.EndpointInfo, reqs []*message.Request) (*message.EdgeMessage, message.Result)

	// ShowNodeList reports the endpoints of every currently connected
	// session, in connect order.
	ShowNodeList(ctx context.Context) []*message.EndpointInfo
}

var _ Service = (*Facade)(nil)

// Facade wires the session registry, discovery service, read/write
// executor, browse engine and subscription engine behind the Service
// interface, and owns the two delivery queues and their dispatcher.
type Facade struct {
	cfg Config
	log *slog.Logger

	registry *registry.Registry
	disco    *discovery.Service
	subs     *subscription.Engine

	sendQ *queue.Queue
	recvQ *queue.Queue
	disp  *queue.Dispatcher
}

// New builds a Facade. dial opens new client connections (production code
// supplies a wrapper around client.Dial); finder performs pre-connect
// discovery; onStatus (may be nil) receives connect/disconnect status
// events; onReport (may be nil) is an additional sink for every REPORT a
// subscription notification produces - the façade wires this to the NATS
// fan-out publisher.
func New(cfg Config, dial registry.Dialer, finder discovery.Finder, log *slog.Logger, onStatus registry.StatusFunc, onReport func(*message.EdgeMessage)) *Facade {
	capacity := cfg.QueueCapacity
	sendQ := queue.New(capacity)
	recvQ := queue.New(capacity)

	f := &Facade{
		cfg:   cfg,
		log:   log,
		sendQ: sendQ,
		recvQ: recvQ,
		disco: discovery.New(finder, cfg.ApplicationTypeMask()),
		subs:  subscription.New(recvQ, log),
	}
	if onReport != nil {
		f.subs.OnReport(onReport)
	}

	f.registry = registry.New(dial, onStatus, f.teardown)
	return f
}

// teardown is the registry's last-out hook: it drains both delivery
// queues, per §4.1's "tears down the registry map and drains the delivery
// queues" contract. Each session's publish pump is already stopped by
// DisconnectClient before the registry removes that session, so when this
// hook runs the registry holds no keys and the StopSession loop is empty.
func (f *Facade) teardown() {
	for _, key := range f.registry.Keys() {
		f.subs.StopSession(key)
	}
	f.recvQ.Drain()
	f.sendQ.Drain()
}

// Configure registers the dispatcher callback table and starts the
// dispatcher goroutine draining the receive queue.
func (f *Facade) Configure(cbs queue.Callbacks) {
	f.disp = queue.NewDispatcher(f.recvQ, cbs, f.log)
	go f.disp.Run(context.Background())
}

// CreateServer / CloseServer are non-goals of the core (§1: server-side
// address-space storage is an external collaborator); they only log the
// lifecycle transition an embedded server would otherwise drive through
// the status callback.
func (f *Facade) CreateServer(_ context.Context, endpoint *message.EndpointInfo) error {
	if f.log != nil {
		f.log.Info("create server requested; server-side address space is out of scope", slog.String("endpoint", endpoint.EndpointURI))
	}
	return nil
}

func (f *Facade) CloseServer(_ context.Context, endpoint *message.EndpointInfo) error {
	if f.log != nil {
		f.log.Info("close server requested", slog.String("endpoint", endpoint.EndpointURI))
	}
	return nil
}

func (f *Facade) ConnectClient(ctx context.Context, endpointURI string) (bool, error) {
	return f.registry.Connect(ctx, endpointURI)
}

func (f *Facade) DisconnectClient(ctx context.Context, endpoint *message.EndpointInfo) error {
	key, err := registry.HostPort(endpoint.EndpointURI)
	if err == nil {
		f.subs.StopSession(key)
	}
	return f.registry.Disconnect(ctx, endpoint)
}

func (f *Facade) FindServers(ctx context.Context, discoveryEndpointURI string, serverURIs, localeIDs []string) ([]discovery.FoundServer, []error) {
	return f.disco.FindServers(ctx, discoveryEndpointURI, serverURIs, localeIDs)
}

func (f *Facade) GetEndpointInfo(ctx context.Context, discoveryEndpointURI string) ([]*message.EndpointInfo, error) {
	return f.disco.GetEndpoints(ctx, discoveryEndpointURI)
}

func (f *Facade) ReadNode(ctx context.Context, endpoint *message.EndpointInfo, cmd message.Command, nodes []*message.NodeInfo) (*message.EdgeMessage, message.Result) {
	c, err := f.registry.Get(endpoint.EndpointURI)
	if err != nil {
		return message.NewErrorMessage(endpoint, message.StatusParamInvalid, errNotConnected.Error(), nil), message.StatusParamInvalid
	}
	return readwrite.New(c).Read(ctx, endpoint, cmd, nodes, f.cfg.MaxAge())
}

func (f *Facade) WriteNode(ctx context.Context, endpoint *message.EndpointInfo, requests []*message.Request) (*message.EdgeMessage, message.Result) {
	c, err := f.registry.Get(endpoint.EndpointURI)
	if err != nil {
		return message.NewErrorMessage(endpoint, message.StatusParamInvalid, errNotConnected.Error(), nil), message.StatusParamInvalid
	}
	return readwrite.New(c).Write(ctx, endpoint, requests)
}

func (f *Facade) BrowseNode(ctx context.Context, endpoint *message.EndpointInfo, reqs []*message.Request) message.Result {
	c, err := f.registry.Get(endpoint.EndpointURI)
	if err != nil {
		f.recvQ.TryEnqueue(message.NewErrorMessage(endpoint, message.StatusParamInvalid, errNotConnected.Error(), nil))
		return message.StatusParamInvalid
	}
	return browse.New(c, f.recvQ, f.log).Browse(ctx, endpoint, reqs)
}

func (f *Facade) BrowseViews(ctx context.Context, endpoint *message.EndpointInfo, reqs []*message.Request) ([]*message.ViewNodeInfo, message.Result) {
	c, err := f.registry.Get(endpoint.EndpointURI)
	if err != nil {
		return nil, message.StatusParamInvalid
	}
	return browse.New(c, f.recvQ, f.log).BrowseViews(ctx, endpoint, reqs)
}

func (f *Facade) BrowseNext(ctx context.Context, endpoint *message.EndpointInfo, reqs []*message.Request, continuation []*message.ContinuationPoint) message.Result {
	c, err := f.registry.Get(endpoint.EndpointURI)
	if err != nil {
		f.recvQ.TryEnqueue(message.NewErrorMessage(endpoint, message.StatusParamInvalid, errNotConnected.Error(), nil))
		return message.StatusParamInvalid
	}
	return browse.New(c, f.recvQ, f.log).BrowseNext(ctx, endpoint, reqs, continuation)
}

func (f *Facade) HandleSubscription(ctx context.Context, endpoint *message.EndpointInfo, reqs []*message.Request) (*message.EdgeMessage, message.Result) {
	if len(reqs) == 0 {
		return message.NewErrorMessage(endpoint, message.StatusParamInvalid, "empty subscription batch", nil), message.StatusParamInvalid
	}
	c, err := f.registry.Get(endpoint.EndpointURI)
	if err != nil {
		return message.NewErrorMessage(endpoint, message.StatusParamInvalid, errNotConnected.Error(), nil), message.StatusParamInvalid
	}
	key, err := registry.HostPort(endpoint.EndpointURI)
	if err != nil {
		return message.NewErrorMessage(endpoint, message.StatusParamInvalid, err.Error(), nil), message.StatusParamInvalid
	}

	first := reqs[0].Sub
	subtype := message.SubCreate
	if first != nil {
		subtype = first.Subtype
	}

	switch subtype {
	case message.SubCreate:
		return f.subs.Create(ctx, c, endpoint, key, reqs)
	case message.SubModify:
		return f.subs.Modify(ctx, endpoint, key, reqs[0])
	case message.SubDelete:
		return f.subs.Delete(ctx, endpoint, key, reqs[0].NodeInfo.ValueAlias)
	case message.SubRepublish:
		return f.subs.Republish(ctx, endpoint, key, reqs[0].NodeInfo.ValueAlias)
	default:
		return message.NewErrorMessage(endpoint, message.StatusParamInvalid, errBadSubtype.Error(), nil), message.StatusParamInvalid
	}
}

func (f *Facade) ShowNodeList(_ context.Context) []*message.EndpointInfo {
	return f.registry.Endpoints()
}

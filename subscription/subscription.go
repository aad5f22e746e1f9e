// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package subscription implements the per-session monitored-item lifecycle
// described by the specification's subscription engine: create/modify/
// delete/republish subtypes, a dedicated publish-pump goroutine per
// session that cooperates with the shared client through a serialization
// lock, and correlation of asynchronous data-change notifications back to
// the record that registered them.
package subscription

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/absmach/opcua-adapter/message"
	"github.com/absmach/opcua-adapter/omap"
	"github.com/absmach/opcua-adapter/opcua/client"
	"github.com/absmach/opcua-adapter/pkg/errors"
	"github.com/absmach/opcua-adapter/queue"
	"github.com/absmach/opcua-adapter/readwrite"
	"github.com/gopcua/opcua/ua"
)

// MinimumPublishingInterval is EDGE_UA_MINIMUM_PUBLISHING_TIME: the
// interval the publish pump sleeps between liveness checks of its
// session's notification channel.
const MinimumPublishingInterval = 5 * time.Millisecond

// RepublishSequenceNumber is the fixed retransmitSequenceNumber every
// republish uses, regardless of the subscription's actual last-seen
// sequence number - an apparent simplification in the original this
// implementation preserves verbatim per spec.
const RepublishSequenceNumber = 2

var (
	errEmptyBatch     = errors.New("empty subscription batch")
	errDuplicateAlias = errors.New("duplicate valueAlias in subscription batch")
	errAliasExists    = errors.New("valueAlias already subscribed for this session")
	errUnknownAlias   = errors.New("valueAlias has no subscription record")
	errUnknownSub     = errors.New("subscription id has no active subscription")
	errNoSubscriptions = errors.New("session has no active subscriptions")
)

// record is one monitored item's bookkeeping: the (subscription-id,
// monitored-item-id) pair the data-change handler correlates
// notifications by, and the registered request message clone it was
// created from.
type record struct {
	subscriptionID  uint32
	monitoredItemID uint32
	nodeInfo        *message.NodeInfo
	registered      *message.EdgeMessage
}

// sessionState is the clientSubscription record from the specification:
// per-session subscription bookkeeping plus the publish pump's lifecycle.
type sessionState struct {
	mu sync.Mutex // serialization mutex guarding client calls and list mutation

	items    *omap.Map[*record]
	byHandle map[uint64]*record
	subs     map[uint32]client.Subscription
	subCount int

	notifyCh  chan *client.PublishNotification
	pumpStop  context.CancelFunc
	pumpDone  chan struct{}
}

func newSessionState() *sessionState {
	return &sessionState{
		items:    omap.New[*record](),
		byHandle: make(map[uint64]*record),
		subs:     make(map[uint32]client.Subscription),
		notifyCh: make(chan *client.PublishNotification, 64),
	}
}

func handleKey(subscriptionID, monitoredItemID uint32) uint64 {
	return uint64(subscriptionID)<<32 | uint64(monitoredItemID)
}

// subscriptionReferenced reports whether any remaining record still
// points at subscriptionID.
func (st *sessionState) subscriptionReferenced(subscriptionID uint32) bool {
	found := false
	st.items.Range(func(_ string, r *record) bool {
		if r.subscriptionID == subscriptionID {
			found = true
			return false
		}
		return true
	})
	return found
}

// Engine is the subscription engine (C8): per-session publish pumps and
// monitored-item lifecycle, delivering REPORT messages to a receive queue.
type Engine struct {
	mu       sync.Mutex
	sessions map[string]*sessionState

	recv     *queue.Queue
	log      *slog.Logger
	onReport func(*message.EdgeMessage)
}

// New builds a subscription Engine delivering REPORT messages into
// recvQueue.
func New(recvQueue *queue.Queue, log *slog.Logger) *Engine {
	return &Engine{sessions: make(map[string]*sessionState), recv: recvQueue, log: log}
}

// OnReport registers an additional sink invoked for every REPORT message a
// data-change notification produces, right after it is built. The façade
// wires this to the NATS fan-out publisher.
func (e *Engine) OnReport(fn func(*message.EdgeMessage)) {
	e.onReport = fn
}

func (e *Engine) session(key string) *sessionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.sessions[key]
	if !ok {
		st = newSessionState()
		e.sessions[key] = st
	}
	return st
}

func (e *Engine) lookupSession(key string) (*sessionState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.sessions[key]
	return st, ok
}

// Create implements Edge_Create_Sub: pre-validates the batch for duplicate
// or already-registered valueAliases, opens a new underlying subscription
// sized to the caller's publishing parameters, creates one monitored item
// per request with a shared data-change handler binding (session,
// valueAlias) as its context, and starts the session's publish pump if
// this session had zero prior subscriptions.
func (e *Engine) Create(ctx context.Context, c client.Client, endpoint *message.EndpointInfo, sessionKey string, reqs []*message.Request) (*message.EdgeMessage, message.Result) {
	if len(reqs) == 0 {
		return message.NewErrorMessage(endpoint, message.StatusParamInvalid, errEmptyBatch.Error(), nil), message.StatusParamInvalid
	}

	seen := make(map[string]bool, len(reqs))
	for _, r := range reqs {
		alias := r.NodeInfo.ValueAlias
		if seen[alias] {
			return message.NewErrorMessage(endpoint, message.StatusBadRequestCancelledByClient, errDuplicateAlias.Error(), r.NodeInfo), message.StatusBadRequestCancelledByClient
		}
		seen[alias] = true
	}

	st := e.session(sessionKey)
	st.mu.Lock()

	for _, r := range reqs {
		if _, ok := st.items.Get(r.NodeInfo.ValueAlias); ok {
			st.mu.Unlock()
			return message.NewErrorMessage(endpoint, message.StatusBadRequestCancelledByClient, errAliasExists.Error(), r.NodeInfo), message.StatusBadRequestCancelledByClient
		}
	}

	first := reqs[0].Sub
	if first == nil {
		first = &message.SubRequest{}
	}
	params := &client.SubscriptionParams{
		Interval:            first.PublishingInterval,
		LifetimeCount:       first.LifetimeCount,
		MaxKeepAliveCount:   first.MaxKeepAliveCount,
		MaxNotifsPerPublish: first.MaxNotificationsPerPub,
		Priority:            first.Priority,
	}

	sub, err := c.CreateSubscription(ctx, params, st.notifyCh)
	if err != nil {
		st.mu.Unlock()
		return message.NewErrorMessage(endpoint, message.StatusServiceResultBad, err.Error(), nil), message.StatusServiceResultBad
	}
	if !first.PublishingEnabled {
		if err := sub.SetPublishingMode(ctx, false); err != nil {
			st.mu.Unlock()
			return message.NewErrorMessage(endpoint, message.StatusServiceResultBad, err.Error(), nil), message.StatusServiceResultBad
		}
	}

	monReqs := make([]*client.MonitorRequest, len(reqs))
	for i, r := range reqs {
		nodeID, err := client.ToUA(r.NodeInfo.NodeID)
		if err != nil {
			st.mu.Unlock()
			return message.NewErrorMessage(endpoint, message.StatusParamInvalid, err.Error(), r.NodeInfo), message.StatusParamInvalid
		}
		interval := first.SamplingInterval
		if r.Sub != nil && r.Sub.SamplingInterval > 0 {
			interval = r.Sub.SamplingInterval
		}
		monReqs[i] = &client.MonitorRequest{NodeID: nodeID, AttributeID: ua.AttributeIDValue, SamplingInterval: interval}
	}

	itemIDs, err := sub.Monitor(ctx, ua.TimestampsToReturnBoth, monReqs...)
	if err != nil {
		st.mu.Unlock()
		return message.NewErrorMessage(endpoint, message.StatusServiceResultBad, err.Error(), nil), message.StatusServiceResultBad
	}
	if len(itemIDs) != len(reqs) {
		st.mu.Unlock()
		return message.NewErrorMessage(endpoint, message.StatusInternalError, "monitored item count does not match request count", nil), message.StatusInternalError
	}

	st.subs[sub.ID()] = sub
	st.subCount++
	wasEmpty := st.subCount == 1

	for i, r := range reqs {
		rec := &record{
			subscriptionID:  sub.ID(),
			monitoredItemID: itemIDs[i],
			nodeInfo:        r.NodeInfo.Clone(),
			registered: &message.EdgeMessage{
				Type:     message.TypeSendRequest,
				Command:  message.CmdSubscribe,
				Endpoint: endpoint.Clone(),
				Requests: []*message.Request{r.Clone()},
			},
		}
		st.items.Set(r.NodeInfo.ValueAlias, rec)
		st.byHandle[handleKey(rec.subscriptionID, rec.monitoredItemID)] = rec
	}
	st.mu.Unlock()

	if wasEmpty {
		e.startPump(sessionKey, st, c)
	}

	return &message.EdgeMessage{Type: message.TypeGeneralResponse, Command: message.CmdSubscribe, Endpoint: endpoint, Result: message.StatusOK}, message.StatusOK
}

// Modify implements Edge_Modify_Sub: looks the record up by valueAlias,
// issues ModifySubscription/ModifyMonitoredItems with the new parameters,
// then SetMonitoringMode(Reporting) and SetPublishingMode.
func (e *Engine) Modify(ctx context.Context, endpoint *message.EndpointInfo, sessionKey string, req *message.Request) (*message.EdgeMessage, message.Result) {
	st, ok := e.lookupSession(sessionKey)
	if !ok {
		return message.NewErrorMessage(endpoint, message.StatusBadNoSubscription, errNoSubscriptions.Error(), req.NodeInfo), message.StatusBadNoSubscription
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	rec, ok := st.items.Get(req.NodeInfo.ValueAlias)
	if !ok {
		return message.NewErrorMessage(endpoint, message.StatusBadMonitoredItemIDInvalid, errUnknownAlias.Error(), req.NodeInfo), message.StatusBadMonitoredItemIDInvalid
	}
	sub, ok := st.subs[rec.subscriptionID]
	if !ok {
		return message.NewErrorMessage(endpoint, message.StatusBadSubscriptionIDInvalid, errUnknownSub.Error(), req.NodeInfo), message.StatusBadSubscriptionIDInvalid
	}

	spec := req.Sub
	if spec == nil {
		spec = &message.SubRequest{}
	}
	nodeID, err := client.ToUA(req.NodeInfo.NodeID)
	if err != nil {
		return message.NewErrorMessage(endpoint, message.StatusParamInvalid, err.Error(), req.NodeInfo), message.StatusParamInvalid
	}

	if err := sub.ModifySubscription(ctx, &client.SubscriptionParams{
		Interval:            spec.PublishingInterval,
		LifetimeCount:       spec.LifetimeCount,
		MaxKeepAliveCount:   spec.MaxKeepAliveCount,
		MaxNotifsPerPublish: spec.MaxNotificationsPerPub,
		Priority:            spec.Priority,
	}); err != nil {
		return message.NewErrorMessage(endpoint, message.StatusServiceResultBad, err.Error(), req.NodeInfo), message.StatusServiceResultBad
	}

	if err := sub.ModifyMonitoredItems(ctx, ua.TimestampsToReturnBoth, &client.MonitorRequest{
		NodeID:           nodeID,
		AttributeID:      ua.AttributeIDValue,
		SamplingInterval: spec.SamplingInterval,
		MonitoredItemID:  rec.monitoredItemID,
	}); err != nil {
		return message.NewErrorMessage(endpoint, message.StatusServiceResultBad, err.Error(), req.NodeInfo), message.StatusServiceResultBad
	}

	if err := sub.SetMonitoringMode(ctx, ua.MonitoringModeReporting, rec.monitoredItemID); err != nil {
		return message.NewErrorMessage(endpoint, message.StatusServiceResultBad, err.Error(), req.NodeInfo), message.StatusServiceResultBad
	}
	if err := sub.SetPublishingMode(ctx, spec.PublishingEnabled); err != nil {
		return message.NewErrorMessage(endpoint, message.StatusServiceResultBad, err.Error(), req.NodeInfo), message.StatusServiceResultBad
	}

	if e.log != nil {
		e.log.Info("subscription modified",
			slog.String("valueAlias", req.NodeInfo.ValueAlias),
			slog.Float64("requestedSamplingInterval", spec.SamplingInterval),
			slog.Float64("requestedPublishingInterval", spec.PublishingInterval))
	}

	rec.registered.Requests[0] = req.Clone()

	return &message.EdgeMessage{Type: message.TypeGeneralResponse, Command: message.CmdSubscribe, Endpoint: endpoint, Result: message.StatusOK}, message.StatusOK
}

// Delete implements Edge_Delete_Sub: removes the monitored item, then - if
// the subscription-id is no longer referenced by any remaining record -
// removes the subscription. When the last subscription on the session is
// removed, the publish pump is stopped and joined before Delete returns.
func (e *Engine) Delete(ctx context.Context, endpoint *message.EndpointInfo, sessionKey string, valueAlias string) (*message.EdgeMessage, message.Result) {
	st, ok := e.lookupSession(sessionKey)
	if !ok {
		return message.NewErrorMessage(endpoint, message.StatusBadNoSubscription, errNoSubscriptions.Error(), nil), message.StatusBadNoSubscription
	}

	st.mu.Lock()
	rec, ok := st.items.Get(valueAlias)
	if !ok {
		st.mu.Unlock()
		return message.NewErrorMessage(endpoint, message.StatusBadMonitoredItemIDInvalid, errUnknownAlias.Error(), nil), message.StatusBadMonitoredItemIDInvalid
	}
	sub, ok := st.subs[rec.subscriptionID]
	if !ok {
		st.mu.Unlock()
		return message.NewErrorMessage(endpoint, message.StatusBadSubscriptionIDInvalid, errUnknownSub.Error(), nil), message.StatusBadSubscriptionIDInvalid
	}

	if err := sub.Unmonitor(ctx, rec.monitoredItemID); err != nil {
		st.mu.Unlock()
		return message.NewErrorMessage(endpoint, message.StatusServiceResultBad, err.Error(), nil), message.StatusServiceResultBad
	}
	st.items.Delete(valueAlias)
	delete(st.byHandle, handleKey(rec.subscriptionID, rec.monitoredItemID))

	if !st.subscriptionReferenced(rec.subscriptionID) {
		if err := sub.Cancel(ctx); err != nil && e.log != nil {
			e.log.Warn("subscription cancel failed", slog.String("session", sessionKey), slog.String("error", err.Error()))
		}
		delete(st.subs, rec.subscriptionID)
		st.subCount--
	}
	shouldStop := st.subCount == 0
	st.mu.Unlock()

	if shouldStop {
		e.stopPump(sessionKey, st)
	}

	return &message.EdgeMessage{Type: message.TypeGeneralResponse, Command: message.CmdSubscribe, Endpoint: endpoint, Result: message.StatusOK}, message.StatusOK
}

// Republish implements Edge_Republish_Sub: issues a republish with the
// fixed RepublishSequenceNumber. BADMESSAGENOTAVAILABLE is downgraded to a
// log-only warning rather than an error response.
func (e *Engine) Republish(ctx context.Context, endpoint *message.EndpointInfo, sessionKey string, valueAlias string) (*message.EdgeMessage, message.Result) {
	st, ok := e.lookupSession(sessionKey)
	if !ok {
		return message.NewErrorMessage(endpoint, message.StatusBadNoSubscription, errNoSubscriptions.Error(), nil), message.StatusBadNoSubscription
	}

	st.mu.Lock()
	rec, ok := st.items.Get(valueAlias)
	if !ok {
		st.mu.Unlock()
		return message.NewErrorMessage(endpoint, message.StatusBadMonitoredItemIDInvalid, errUnknownAlias.Error(), nil), message.StatusBadMonitoredItemIDInvalid
	}
	sub, ok := st.subs[rec.subscriptionID]
	st.mu.Unlock()
	if !ok {
		return message.NewErrorMessage(endpoint, message.StatusBadSubscriptionIDInvalid, errUnknownSub.Error(), nil), message.StatusBadSubscriptionIDInvalid
	}

	notif, err := sub.Republish(ctx, RepublishSequenceNumber)
	if err != nil {
		if strings.Contains(err.Error(), "BadMessageNotAvailable") {
			if e.log != nil {
				e.log.Warn("republish: message not available", slog.String("valueAlias", valueAlias))
			}
			return &message.EdgeMessage{Type: message.TypeGeneralResponse, Command: message.CmdSubscribe, Endpoint: endpoint, Result: message.StatusBadMessageNotAvailable}, message.StatusBadMessageNotAvailable
		}
		return message.NewErrorMessage(endpoint, message.StatusServiceResultBad, err.Error(), nil), message.StatusServiceResultBad
	}

	out := &message.EdgeMessage{Type: message.TypeGeneralResponse, Command: message.CmdSubscribe, Endpoint: endpoint, Result: message.StatusOK}
	if notif != nil {
		out.Responses = []*message.Response{{NodeInfo: rec.nodeInfo.Clone()}}
	}
	return out, message.StatusOK
}

// StopSession is the stopSubscriptionThread(session) operation: callable
// from any thread, safe to call even if no pump is running for the
// session.
func (e *Engine) StopSession(sessionKey string) {
	st, ok := e.lookupSession(sessionKey)
	if !ok {
		return
	}
	st.mu.Lock()
	st.subCount = 0
	st.mu.Unlock()
	e.stopPump(sessionKey, st)

	e.mu.Lock()
	delete(e.sessions, sessionKey)
	e.mu.Unlock()
}

func (e *Engine) startPump(sessionKey string, st *sessionState, c client.Client) {
	ctx, cancel := context.WithCancel(context.Background())
	st.mu.Lock()
	st.pumpStop = cancel
	st.pumpDone = make(chan struct{})
	st.mu.Unlock()
	go e.runPump(ctx, sessionKey, st)
}

// stopPump signals the pump goroutine to exit and blocks until it has, per
// the subscription-join invariant: the pump thread has terminated before
// Delete/StopSession returns. Safe to call when no pump is running.
func (e *Engine) stopPump(sessionKey string, st *sessionState) {
	st.mu.Lock()
	stop, done := st.pumpStop, st.pumpDone
	st.pumpStop, st.pumpDone = nil, nil
	st.mu.Unlock()

	if stop == nil {
		return
	}
	stop()
	<-done
}

// runPump is the publish-pump goroutine: it drains the session's shared
// notification channel (fed by every subscription created on this
// session) and ticks at MinimumPublishingInterval so the flag flip in
// stopPump is observed within one interval even with no traffic, as the
// concurrency model requires.
func (e *Engine) runPump(ctx context.Context, sessionKey string, st *sessionState) {
	defer close(st.pumpDone)

	ticker := time.NewTicker(MinimumPublishingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case note := <-st.notifyCh:
			e.handleNotification(sessionKey, st, note)
		case <-ticker.C:
		}
	}
}

// handleNotification is the data-change handler: it skips notifications
// whose status is not OK or that carry no value, looks the record up by
// (subscriptionID, monitoredItemID), decodes the value with the same
// rules the reader uses, attaches the server timestamp, and enqueues a
// REPORT message.
func (e *Engine) handleNotification(sessionKey string, st *sessionState, note *client.PublishNotification) {
	if note == nil {
		return
	}
	if note.Error != nil {
		if e.log != nil {
			e.log.Warn("publish notification error", slog.String("session", sessionKey), slog.String("error", note.Error.Error()))
		}
		return
	}
	if note.Value == nil || note.Value.Status != ua.StatusOK || note.Value.Value == nil {
		return
	}

	st.mu.Lock()
	rec, ok := st.byHandle[handleKey(note.SubscriptionID, note.MonitoredItemID)]
	st.mu.Unlock()
	if !ok {
		return
	}

	val, err := readwrite.DecodeVariant(note.Value.Value)
	if err != nil {
		if e.log != nil {
			e.log.Warn("failed to decode data-change value", slog.String("valueAlias", rec.nodeInfo.ValueAlias), slog.String("error", err.Error()))
		}
		return
	}

	serverTime := time.Now()
	if !note.Value.ServerTimestamp.IsZero() {
		serverTime = note.Value.ServerTimestamp
	}

	report := &message.EdgeMessage{
		Type:     message.TypeReport,
		Command:  message.CmdSubscribe,
		Endpoint: rec.registered.Endpoint.Clone(),
		Responses: []*message.Response{{
			NodeInfo: rec.nodeInfo.Clone(),
			Value:    val,
		}},
		Result:     message.StatusOK,
		ServerTime: serverTime,
	}

	if e.recv != nil && !e.recv.TryEnqueue(report) && e.log != nil {
		e.log.Warn("dropped subscription report, receive queue full", slog.String("valueAlias", rec.nodeInfo.ValueAlias))
	}
	if e.onReport != nil {
		e.onReport(report)
	}
}

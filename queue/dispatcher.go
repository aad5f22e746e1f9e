// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package queue

import (
	"context"
	"log/slog"

	"github.com/absmach/opcua-adapter/message"
)

// Callbacks groups the application-facing handlers the dispatcher may
// invoke for a received message. Exactly one of the message callbacks fires
// per dequeued EdgeMessage, selected by its Type; an unrecognized Type is
// silently dropped, matching the façade's delivery contract.
type Callbacks struct {
	OnResponse   func(*message.EdgeMessage)
	OnBrowse     func(*message.EdgeMessage)
	OnReport     func(*message.EdgeMessage)
	OnError      func(*message.EdgeMessage)
	OnStart      func(message.StatusEvent, *message.EndpointInfo)
	OnStop       func(message.StatusEvent, *message.EndpointInfo)
	OnNetwork    func(message.StatusEvent, *message.EndpointInfo)
}

// Dispatcher drains a receive Queue on a single goroutine and routes each
// message to the registered callback family.
type Dispatcher struct {
	queue *Queue
	cbs   Callbacks
	log   *slog.Logger
}

// NewDispatcher builds a dispatcher over recvQueue using cbs as the
// callback table.
func NewDispatcher(recvQueue *Queue, cbs Callbacks, log *slog.Logger) *Dispatcher {
	return &Dispatcher{queue: recvQueue, cbs: cbs, log: log}
}

// Run drains the receive queue until ctx is cancelled. It is meant to run
// on its own goroutine - the dispatcher thread described in the
// concurrency model.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		msg, err := d.queue.Dequeue(ctx)
		if err != nil {
			return
		}
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg *message.EdgeMessage) {
	switch msg.Type {
	case message.TypeGeneralResponse:
		if d.cbs.OnResponse != nil {
			d.cbs.OnResponse(msg)
		}
	case message.TypeBrowseResponse:
		if d.cbs.OnBrowse != nil {
			d.cbs.OnBrowse(msg)
		}
	case message.TypeReport:
		if d.cbs.OnReport != nil {
			d.cbs.OnReport(msg)
		}
	case message.TypeError:
		if d.cbs.OnError != nil {
			d.cbs.OnError(msg)
		}
	default:
		if d.log != nil {
			d.log.Warn("dropped message with unrecognized type", slog.String("type", string(msg.Type)))
		}
	}
}

// DispatchStatus routes a status event to the start/stop/network callback
// family it belongs to, per the {SERVER_STARTED,CLIENT_STARTED} -> start,
// {STOP_SERVER,STOP_CLIENT} -> stop, {CONNECTED,DISCONNECTED} -> network
// routing table.
func (d *Dispatcher) DispatchStatus(evt message.StatusEvent, endpoint *message.EndpointInfo) {
	kind, ok := message.RouteStatusEvent(evt)
	if !ok {
		if d.log != nil {
			d.log.Warn("dropped unrecognized status event", slog.String("event", string(evt)))
		}
		return
	}
	switch kind {
	case message.CallbackStart:
		if d.cbs.OnStart != nil {
			d.cbs.OnStart(evt, endpoint)
		}
	case message.CallbackStop:
		if d.cbs.OnStop != nil {
			d.cbs.OnStop(evt, endpoint)
		}
	case message.CallbackNetwork:
		if d.cbs.OnNetwork != nil {
			d.cbs.OnNetwork(evt, endpoint)
		}
	}
}

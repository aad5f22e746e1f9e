// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package queue implements the bounded send/receive delivery queues that
// decouple the façade's synchronous callers from the asynchronous
// dispatcher that invokes application callbacks.
package queue

import (
	"context"

	"github.com/absmach/opcua-adapter/message"
)

// DefaultCapacity is the default bounded queue depth; Enqueue blocks once a
// queue holds this many pending messages.
const DefaultCapacity = 256

// Queue is a bounded FIFO of EdgeMessages, safe for concurrent producers and
// a single consumer.
type Queue struct {
	ch chan *message.EdgeMessage
}

// New returns an empty bounded queue with the given capacity.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{ch: make(chan *message.EdgeMessage, capacity)}
}

// Enqueue pushes msg onto the queue, blocking if it is full until capacity
// frees up or ctx is cancelled.
func (q *Queue) Enqueue(ctx context.Context, msg *message.EdgeMessage) error {
	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryEnqueue pushes msg without blocking, reporting false if the queue is
// full.
func (q *Queue) TryEnqueue(msg *message.EdgeMessage) bool {
	select {
	case q.ch <- msg:
		return true
	default:
		return false
	}
}

// Dequeue blocks until a message is available or ctx is cancelled.
func (q *Queue) Dequeue(ctx context.Context) (*message.EdgeMessage, error) {
	select {
	case msg := <-q.ch:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len reports the number of messages currently queued.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Drain removes and discards every pending message, returning the count
// discarded. Used during session teardown once a client's last session is
// removed from the registry.
func (q *Queue) Drain() int {
	n := 0
	for {
		select {
		case <-q.ch:
			n++
		default:
			return n
		}
	}
}

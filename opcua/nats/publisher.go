// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package nats implements the REPORT fan-out publisher: every
// subscription data-change notification the core enqueues on the
// receive queue is also published to a NATS subject, so external
// consumers can observe live values without polling the HTTP API.
package nats

import (
	"encoding/json"
	"fmt"

	broker "github.com/nats-io/nats.go"

	"github.com/absmach/opcua-adapter/message"
)

const subjectPrefix = "opcua.report"

// Publisher wraps a NATS connection and exposes the Close method the
// adapter's shutdown path needs alongside the façade's onReport hook.
type Publisher interface {
	Publish(msg *message.EdgeMessage) error
	Close()
}

type publisher struct {
	conn *broker.Conn
}

// NewPublisher connects to url and returns a REPORT fan-out Publisher.
func NewPublisher(url string) (Publisher, error) {
	conn, err := broker.Connect(url)
	if err != nil {
		return nil, err
	}
	return &publisher{conn: conn}, nil
}

// Publish fans msg out to "opcua.report.<valueAlias>" for every response
// it carries. A message with no responses (a bare status/report wrapper)
// is published once to the bare subjectPrefix subject.
func (p *publisher) Publish(msg *message.EdgeMessage) error {
	if len(msg.Responses) == 0 {
		data, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		return p.conn.Publish(subjectPrefix, data)
	}

	for _, resp := range msg.Responses {
		data, err := json.Marshal(resp)
		if err != nil {
			return err
		}
		if err := p.conn.Publish(subjectFor(resp), data); err != nil {
			return err
		}
	}
	return nil
}

// subjectFor builds the "opcua.report.<valueAlias>" subject for resp,
// falling back to the bare prefix when no alias is available.
func subjectFor(resp *message.Response) string {
	if resp.NodeInfo != nil && resp.NodeInfo.ValueAlias != "" {
		return fmt.Sprintf("%s.%s", subjectPrefix, resp.NodeInfo.ValueAlias)
	}
	return subjectPrefix
}

func (p *publisher) Close() {
	p.conn.Close()
}

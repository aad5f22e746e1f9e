// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package message

import "time"

// Type enumerates the envelope kinds an EdgeMessage may carry. The delivery
// queue dispatcher routes exactly one application callback per type.
type Type string

const (
	TypeSendRequest    Type = "SEND_REQUEST"
	TypeSendRequests   Type = "SEND_REQUESTS"
	TypeGeneralResponse Type = "GENERAL_RESPONSE"
	TypeBrowseResponse Type = "BROWSE_RESPONSE"
	TypeReport         Type = "REPORT"
	TypeError          Type = "ERROR"
)

// Command enumerates the operations recognized on an EdgeMessage.
type Command string

const (
	CmdRead               Command = "read"
	CmdReadSamplingInterval Command = "read-sampling-interval"
	CmdWrite              Command = "write"
	CmdBrowse             Command = "browse"
	CmdBrowseNext         Command = "browse-next"
	CmdBrowseViews        Command = "browse-views"
	CmdCall               Command = "call"
	CmdSubscribe          Command = "subscribe"
	CmdStartServer        Command = "start-server"
	CmdStopServer         Command = "stop-server"
	CmdStartClient        Command = "start-client"
	CmdStopClient         Command = "stop-client"
)

// EdgeMessage is the envelope every subsystem exchanges: the request(s) an
// application enqueues through the façade, and the response(s)/result a
// dispatcher thread delivers back through a delivery queue.
type EdgeMessage struct {
	MessageID    string
	Type         Type
	Command      Command
	Endpoint     *EndpointInfo
	Requests     []*Request
	Responses    []*Response
	Result       Result
	Continuation []*ContinuationPoint
	Browse       *BrowseParams
	ServerTime   time.Time
}

// Clone returns a deep copy of the message: no slice, map or pointer field
// is shared with the receiver.
func (m *EdgeMessage) Clone() *EdgeMessage {
	if m == nil {
		return nil
	}
	out := &EdgeMessage{
		MessageID:  m.MessageID,
		Type:       m.Type,
		Command:    m.Command,
		Result:     m.Result,
		ServerTime: m.ServerTime,
		Endpoint:   m.Endpoint.Clone(),
	}
	if m.Browse != nil {
		b := *m.Browse
		out.Browse = &b
	}
	if m.Requests != nil {
		out.Requests = make([]*Request, len(m.Requests))
		for i, r := range m.Requests {
			out.Requests[i] = r.Clone()
		}
	}
	if m.Responses != nil {
		out.Responses = make([]*Response, len(m.Responses))
		for i, r := range m.Responses {
			out.Responses[i] = r.Clone()
		}
	}
	if m.Continuation != nil {
		out.Continuation = make([]*ContinuationPoint, len(m.Continuation))
		for i, c := range m.Continuation {
			out.Continuation[i] = c.Clone()
		}
	}
	return out
}

// NewErrorMessage builds a single-response ERROR message carrying a
// human-readable message string and, when known, the offending node - the
// shape every error_msg_cb delivery takes.
func NewErrorMessage(endpoint *EndpointInfo, result Result, text string, node *NodeInfo) *EdgeMessage {
	resp := &Response{
		NodeInfo: node,
		Value:    NewStringValue(text),
	}
	return &EdgeMessage{
		Type:      TypeError,
		Endpoint:  endpoint,
		Result:    result,
		Responses: []*Response{resp},
	}
}

// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package readwrite

import (
	"context"

	"github.com/absmach/opcua-adapter/message"
	"github.com/absmach/opcua-adapter/opcua/client"
	"github.com/gopcua/opcua/ua"
)

// Executor issues batched Read/Write service calls and decodes/encodes
// their results against the versatile-value rules.
type Executor struct {
	client client.Client
}

// New builds an Executor over c.
func New(c client.Client) *Executor {
	return &Executor{client: c}
}

func attributeFor(cmd message.Command) ua.AttributeID {
	if cmd == message.CmdReadSamplingInterval {
		return ua.AttributeIDMinimumSamplingInterval
	}
	return ua.AttributeIDValue
}

// Read issues one batched Read service call covering every node in nodes,
// with timestampsToReturn=Both and the given maxAge (0 by default, 2000ms
// under the compatibility-test toggle). For each OK result one Response is
// emitted; for a bad-status result, a batch of size 1 fails the whole
// call, otherwise a non-fatal per-node error is produced and processing
// continues. A batch with zero valid responses fails.
func (e *Executor) Read(ctx context.Context, endpoint *message.EndpointInfo, cmd message.Command, nodes []*message.NodeInfo, maxAgeMillis float64) (*message.EdgeMessage, message.Result) {
	attr := attributeFor(cmd)
	toRead := make([]*ua.ReadValueID, len(nodes))
	for i, n := range nodes {
		id, err := client.ToUA(n.NodeID)
		if err != nil {
			return message.NewErrorMessage(endpoint, message.StatusParamInvalid, err.Error(), n), message.StatusParamInvalid
		}
		toRead[i] = &ua.ReadValueID{NodeID: id, AttributeID: attr}
	}

	resp, err := e.client.Read(ctx, &ua.ReadRequest{
		NodesToRead:        toRead,
		TimestampsToReturn:  ua.TimestampsToReturnBoth,
		MaxAge:              maxAgeMillis,
	})
	if err != nil {
		return message.NewErrorMessage(endpoint, message.StatusServiceResultBad, err.Error(), nil), message.StatusServiceResultBad
	}

	out := &message.EdgeMessage{Type: message.TypeGeneralResponse, Command: cmd, Endpoint: endpoint}
	valid := 0
	for i, res := range resp.Results {
		if res.Status != ua.StatusOK {
			if len(nodes) == 1 {
				return message.NewErrorMessage(endpoint, message.StatusServiceResultBad, res.Status.Error(), nodes[0]), message.StatusServiceResultBad
			}
			out.Responses = append(out.Responses, &message.Response{
				NodeInfo:  nodes[i],
				RequestID: i,
				Value:     message.NewStringValue(res.Status.Error()),
			})
			continue
		}
		val, err := DecodeVariant(res.Value)
		if err != nil {
			if len(nodes) == 1 {
				return message.NewErrorMessage(endpoint, message.StatusInternalError, err.Error(), nodes[i]), message.StatusInternalError
			}
			continue
		}
		resp := &message.Response{NodeInfo: nodes[i], Value: val, RequestID: i}
		if res.DiagnosticInfo != nil {
			resp.Diagnostic = &message.DiagnosticInfo{
				SymbolicID:   int32(res.DiagnosticInfo.SymbolicID),
				NamespaceURI: int32(res.DiagnosticInfo.NamespaceURI),
			}
		}
		out.Responses = append(out.Responses, resp)
		valid++
	}

	if valid == 0 {
		return message.NewErrorMessage(endpoint, message.StatusInternalError, "no valid responses in batch", nil), message.StatusInternalError
	}
	return out, message.StatusOK
}

// Write issues one batched Write service call, one Value per request node.
func (e *Executor) Write(ctx context.Context, endpoint *message.EndpointInfo, requests []*message.Request) (*message.EdgeMessage, message.Result) {
	toWrite := make([]*ua.WriteValue, len(requests))
	for i, r := range requests {
		id, err := client.ToUA(r.NodeInfo.NodeID)
		if err != nil {
			return message.NewErrorMessage(endpoint, message.StatusParamInvalid, err.Error(), r.NodeInfo), message.StatusParamInvalid
		}
		variant, err := EncodeVariant(r.Value)
		if err != nil {
			return message.NewErrorMessage(endpoint, message.StatusParamInvalid, err.Error(), r.NodeInfo), message.StatusParamInvalid
		}
		toWrite[i] = &ua.WriteValue{
			NodeID:      id,
			AttributeID: ua.AttributeIDValue,
			Value:       &ua.DataValue{EncodingMask: ua.DataValueValue, Value: variant},
		}
	}

	resp, err := e.client.Write(ctx, &ua.WriteRequest{NodesToWrite: toWrite})
	if err != nil {
		return message.NewErrorMessage(endpoint, message.StatusServiceResultBad, err.Error(), nil), message.StatusServiceResultBad
	}

	out := &message.EdgeMessage{Type: message.TypeGeneralResponse, Command: message.CmdWrite, Endpoint: endpoint}
	valid := 0
	for i, status := range resp.Results {
		if status != ua.StatusOK {
			if len(requests) == 1 {
				return message.NewErrorMessage(endpoint, message.StatusServiceResultBad, status.Error(), requests[0].NodeInfo), message.StatusServiceResultBad
			}
			out.Responses = append(out.Responses, &message.Response{
				NodeInfo:  requests[i].NodeInfo,
				RequestID: i,
				Value:     message.NewStringValue(status.Error()),
			})
			continue
		}
		out.Responses = append(out.Responses, &message.Response{NodeInfo: requests[i].NodeInfo, RequestID: i})
		valid++
	}

	if valid == 0 {
		return message.NewErrorMessage(endpoint, message.StatusInternalError, "no valid responses in batch", nil), message.StatusInternalError
	}
	return out, message.StatusOK
}

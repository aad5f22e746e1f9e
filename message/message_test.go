// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package message_test

import (
	"testing"

	"github.com/absmach/opcua-adapter/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeIDClone(t *testing.T) {
	orig := &message.NodeID{NamespaceIndex: 2, Type: message.IdentifierTypeString, Value: "Demo.String"}
	clone := orig.Clone()

	require.Equal(t, orig, clone)

	clone.Value = "mutated"
	assert.Equal(t, "Demo.String", orig.Value, "clone must not alias the source")
}

func TestEdgeMessageCloneIsDeep(t *testing.T) {
	orig := &message.EdgeMessage{
		MessageID: "m1",
		Type:      message.TypeGeneralResponse,
		Command:   message.CmdRead,
		Endpoint: &message.EndpointInfo{
			EndpointURI: "opc.tcp://localhost:4840",
			Config: message.ApplicationConfig{
				ApplicationURI: "urn:test:client",
				DiscoveryURLs:  []string{"opc.tcp://localhost:4840/discovery"},
			},
		},
		Responses: []*message.Response{
			{
				NodeInfo: &message.NodeInfo{
					NodeID:     &message.NodeID{NamespaceIndex: 2, Type: message.IdentifierTypeString, Value: "Demo.String"},
					ValueAlias: "{2;s}Demo.String",
				},
				Value: message.NewStringValue("abc"),
			},
		},
	}

	clone := orig.Clone()
	require.Equal(t, orig, clone)

	// Mutate every nested slice/pointer on the clone; the source must be
	// unaffected, proving no structural sharing survived the clone.
	clone.Endpoint.Config.DiscoveryURLs[0] = "mutated"
	clone.Responses[0].NodeInfo.NodeID.Value = "mutated"
	clone.Responses[0].Value.String[0] = "mutated"

	assert.Equal(t, "opc.tcp://localhost:4840/discovery", orig.Endpoint.Config.DiscoveryURLs[0])
	assert.Equal(t, "Demo.String", orig.Responses[0].NodeInfo.NodeID.Value)
	assert.Equal(t, "abc", orig.Responses[0].Value.String[0])
}

func TestValueAliasStringIdentifier(t *testing.T) {
	id := &message.NodeID{NamespaceIndex: 2, Type: message.IdentifierTypeString}
	assert.Equal(t, "{2;s}Demo.String", message.ValueAlias(id, "Demo.String", ""))
}

func TestValueAliasIntegerIdentifier(t *testing.T) {
	id := &message.NodeID{NamespaceIndex: 3, Type: message.IdentifierTypeInteger}
	assert.Equal(t, "{3;i}Counter", message.ValueAlias(id, "Counter", ""))
}

func TestValueAliasPreservesVEqualsSuffix(t *testing.T) {
	id := &message.NodeID{NamespaceIndex: 2, Type: message.IdentifierTypeString}
	assert.Equal(t, "{2;s;v=7}Demo.String", message.ValueAlias(id, "Demo.String", "v=7"))
}

func TestValueAliasIgnoresNonVEqualsDisplayText(t *testing.T) {
	id := &message.NodeID{NamespaceIndex: 2, Type: message.IdentifierTypeString}
	assert.Equal(t, "{2;s}Demo.String", message.ValueAlias(id, "Demo.String", "Demo String"))
}

func TestCanonicalGUID(t *testing.T) {
	got := message.CanonicalGUID(0x12345678, 0x1234, 0x5678, [8]byte{0x9a, 0xbc, 0xde, 0xf0, 0x11, 0x22, 0x33, 0x44})
	assert.Equal(t, "12345678-1234-5678-9abc-def011223344", got)
}

func TestContinuationPointValid(t *testing.T) {
	assert.True(t, (&message.ContinuationPoint{Length: 1}).Valid())
	assert.False(t, (&message.ContinuationPoint{Length: 0}).Valid())
	assert.False(t, (&message.ContinuationPoint{Length: 1000}).Valid())
}

func TestRouteStatusEvent(t *testing.T) {
	kind, ok := message.RouteStatusEvent(message.StatusEventClientStarted)
	require.True(t, ok)
	assert.Equal(t, message.CallbackStart, kind)

	_, ok = message.RouteStatusEvent("unknown")
	assert.False(t, ok)
}

// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package client_test

import (
	"testing"

	"github.com/absmach/opcua-adapter/message"
	"github.com/absmach/opcua-adapter/opcua/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeIDRoundTripString(t *testing.T) {
	orig := &message.NodeID{NamespaceIndex: 2, Type: message.IdentifierTypeString, Value: "Demo.String"}

	ua, err := client.ToUA(orig)
	require.NoError(t, err)

	back, err := client.FromUA(ua)
	require.NoError(t, err)
	assert.Equal(t, orig, back)
}

func TestNodeIDRoundTripInteger(t *testing.T) {
	orig := &message.NodeID{NamespaceIndex: 0, Type: message.IdentifierTypeInteger, Value: "84"}

	ua, err := client.ToUA(orig)
	require.NoError(t, err)

	back, err := client.FromUA(ua)
	require.NoError(t, err)
	assert.Equal(t, orig, back)
}

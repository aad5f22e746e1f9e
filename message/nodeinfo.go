// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package message

import (
	"strconv"
	"strings"
)

// NodeInfo pairs a NodeID with the human-readable valueAlias the client
// uses to address the node for reads, writes and subscriptions.
type NodeInfo struct {
	NodeID     *NodeID
	ValueAlias string
}

// Clone returns a deep copy of the node info.
func (n *NodeInfo) Clone() *NodeInfo {
	if n == nil {
		return nil
	}
	return &NodeInfo{
		NodeID:     n.NodeID.Clone(),
		ValueAlias: n.ValueAlias,
	}
}

// ValueAlias builds the "{<ns>;<T>[;v=N]}<browseName>" address for a node,
// preserving a server-supplied "v=N" display-text suffix verbatim when and
// only when displayText begins with "v=".
func ValueAlias(id *NodeID, browseName, displayText string) string {
	tag := id.Type.Tag()
	var b strings.Builder
	b.WriteByte('{')
	b.WriteString(strconv.Itoa(int(id.NamespaceIndex)))
	b.WriteByte(';')
	b.WriteString(tag)
	if strings.HasPrefix(displayText, "v=") {
		b.WriteByte(';')
		b.WriteString(displayText)
	}
	b.WriteByte('}')
	b.WriteString(browseName)
	return b.String()
}

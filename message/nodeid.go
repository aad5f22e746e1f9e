// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package message

import "fmt"

// IdentifierType enumerates the four NodeId identifier shapes carried over
// the wire, and doubles as the single-character tag used in valueAlias
// encoding ({<ns>;<T>[;v=N]}<browseName>).
type IdentifierType uint8

const (
	IdentifierTypeInteger IdentifierType = iota
	IdentifierTypeString
	IdentifierTypeByteString
	IdentifierTypeGUID
)

// Tag returns the single-character valueAlias tag for the identifier type.
func (t IdentifierType) Tag() string {
	switch t {
	case IdentifierTypeInteger:
		return "i"
	case IdentifierTypeString:
		return "s"
	case IdentifierTypeByteString:
		return "b"
	case IdentifierTypeGUID:
		return "g"
	default:
		return "?"
	}
}

// NodeID identifies a node in the server's address space. A GUID value is
// always stored canonicalized to the 36-character hyphenated lower-hex form
// produced by CanonicalGUID.
type NodeID struct {
	NamespaceIndex uint16
	Type           IdentifierType
	Value          string
	ServerIndex    uint32
}

// Clone returns a deep copy of the node id.
func (n *NodeID) Clone() *NodeID {
	if n == nil {
		return nil
	}
	out := *n
	return &out
}

// Valid reports whether the node id may be used in a browse request: it
// must be non-nil and carry a zero ServerIndex (spec invariant - NodeIds
// referring to a remote server via serverIndex are rejected at browse
// validation time).
func (n *NodeID) Valid() bool {
	return n != nil && n.ServerIndex == 0
}

// String renders the node id in the conventional ns=<i>;<type-prefix>=<value>
// textual form, used for logging and diagnostics only.
func (n *NodeID) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Type {
	case IdentifierTypeInteger:
		return fmt.Sprintf("ns=%d;i=%s", n.NamespaceIndex, n.Value)
	case IdentifierTypeByteString:
		return fmt.Sprintf("ns=%d;b=%s", n.NamespaceIndex, n.Value)
	case IdentifierTypeGUID:
		return fmt.Sprintf("ns=%d;g=%s", n.NamespaceIndex, n.Value)
	default:
		return fmt.Sprintf("ns=%d;s=%s", n.NamespaceIndex, n.Value)
	}
}

// CanonicalGUID formats the four OPC UA GUID fields as the 36-character
// hyphenated lower-hex string required by the GUID-canonicalization
// invariant: printf("%08x-%04x-%04x-%02x%02x-%02x%02x%02x%02x%02x%02x", ...).
func CanonicalGUID(d1 uint32, d2, d3 uint16, d4 [8]byte) string {
	return fmt.Sprintf("%08x-%04x-%04x-%02x%02x-%02x%02x%02x%02x%02x%02x",
		d1, d2, d3,
		d4[0], d4[1],
		d4[2], d4[3], d4[4], d4[5], d4[6], d4[7])
}

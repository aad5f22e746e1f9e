// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"regexp"
	"strconv"

	"github.com/absmach/opcua-adapter/message"
	"github.com/absmach/opcua-adapter/pkg/errors"
	"github.com/gopcua/opcua/ua"
)

var errMalformedNodeID = errors.New("malformed node id string")

var nodeIDPattern = regexp.MustCompile(`^(?:ns=(\d+);)?([isbg])=(.*)$`)

// ToUA converts a domain NodeID to the wire library's ua.NodeID by
// round-tripping through its canonical "ns=<ns>;<tag>=<value>" textual
// form and the wire library's own parser - the same shape every
// other_examples gopcua wrapper parses node addresses from.
func ToUA(n *message.NodeID) (*ua.NodeID, error) {
	if n == nil {
		return nil, nil
	}
	return ua.ParseNodeID(n.String())
}

// FromUA converts a wire-library ua.NodeID back to the domain NodeID.
func FromUA(id *ua.NodeID) (*message.NodeID, error) {
	if id == nil {
		return nil, nil
	}
	m := nodeIDPattern.FindStringSubmatch(id.String())
	if m == nil {
		return nil, errMalformedNodeID
	}
	ns := 0
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, errors.Wrap(errMalformedNodeID, err)
		}
		ns = n
	}
	var idType message.IdentifierType
	switch m[2] {
	case "i":
		idType = message.IdentifierTypeInteger
	case "s":
		idType = message.IdentifierTypeString
	case "b":
		idType = message.IdentifierTypeByteString
	case "g":
		idType = message.IdentifierTypeGUID
	}
	return &message.NodeID{
		NamespaceIndex: uint16(ns),
		Type:           idType,
		Value:          m[3],
	}, nil
}

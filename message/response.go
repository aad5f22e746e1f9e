// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package message

// DiagnosticInfo carries server-supplied per-result diagnostics, correlated
// back to its Response by index.
type DiagnosticInfo struct {
	SymbolicID     int32
	NamespaceURI   int32
	LocalizedText  int32
	AdditionalInfo string
	InnerStatus    string
}

// BrowseResult carries one browse engine finding: the browse name used to
// build the valueAlias, plus any nested detail the caller requested.
type BrowseResult struct {
	BrowseName  string
	NodeClass   string
	DisplayName string
}

// ViewNodeInfo records a View-class reference discovered while browsing in
// views mode; it is accumulated into a side-channel list rather than
// streamed as a Response.
type ViewNodeInfo struct {
	NodeID     *NodeID
	BrowseName string
}

// Response is one unit of an inbound result: the node it concerns, the
// decoded value, the request id it answers, and optional diagnostics or
// browse detail.
type Response struct {
	NodeInfo     *NodeInfo
	Value        *Value
	RequestID    int
	Diagnostic   *DiagnosticInfo
	Browse       *BrowseResult
	BrowsePath   string
}

// Clone returns a deep copy of the response.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	out := &Response{
		NodeInfo:   r.NodeInfo.Clone(),
		Value:      r.Value.Clone(),
		RequestID:  r.RequestID,
		BrowsePath: r.BrowsePath,
	}
	if r.Diagnostic != nil {
		d := *r.Diagnostic
		out.Diagnostic = &d
	}
	if r.Browse != nil {
		b := *r.Browse
		out.Browse = &b
	}
	return out
}

// ContinuationPoint is an opaque server-side token resuming a paged browse.
// Length must lie in (0, 1000); an empty point means the browse is
// exhausted, and a length >= 1000 is rejected by the browse engine.
type ContinuationPoint struct {
	Data         []byte
	Length       int
	BrowsePrefix string
}

// Clone returns a deep copy of the continuation point.
func (c *ContinuationPoint) Clone() *ContinuationPoint {
	if c == nil {
		return nil
	}
	out := &ContinuationPoint{Length: c.Length, BrowsePrefix: c.BrowsePrefix}
	out.Data = append([]byte(nil), c.Data...)
	return out
}

// Valid reports whether the continuation point's length lies in the
// spec-mandated open interval (0, 1000).
func (c *ContinuationPoint) Valid() bool {
	return c != nil && c.Length > 0 && c.Length < 1000
}

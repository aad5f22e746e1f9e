// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package browse

import (
	"context"
	"log/slog"

	"github.com/absmach/opcua-adapter/message"
	"github.com/absmach/opcua-adapter/opcua/client"
	"github.com/absmach/opcua-adapter/queue"
	"github.com/gopcua/opcua/id"
	"github.com/gopcua/opcua/ua"
)

// MaxBrowseRequestSize bounds the number of starting nodes accepted in one
// batched browse/browseNext/browseViews call.
const MaxBrowseRequestSize = 64

// Engine walks the address space starting from a batch of nodes, streaming
// BROWSE_RESPONSE messages through a delivery queue as it goes.
type Engine struct {
	client client.Client
	queue  *queue.Queue
	log    *slog.Logger
}

// New builds a browse Engine over c, streaming responses into recvQueue.
func New(c client.Client, recvQueue *queue.Queue, log *slog.Logger) *Engine {
	return &Engine{client: c, queue: recvQueue, log: log}
}

// frontierEntry is one node queued for the next level of recursion: the
// node itself, the request index it belongs to, and the browse name it
// will be pushed onto the path stack under.
type frontierEntry struct {
	nodeID     *message.NodeID
	browseName string
	reqID      int
}

// Browse performs the default entry point: every discovered reference in
// the class mask is streamed back as a BROWSE_RESPONSE.
func (e *Engine) Browse(ctx context.Context, endpoint *message.EndpointInfo, reqs []*message.Request) message.Result {
	return e.top(ctx, endpoint, reqs, false, nil, false, nil)
}

// BrowseViews restricts discovery to View-class references, which are
// accumulated into the returned slice rather than streamed.
func (e *Engine) BrowseViews(ctx context.Context, endpoint *message.EndpointInfo, reqs []*message.Request) ([]*message.ViewNodeInfo, message.Result) {
	views := &[]*message.ViewNodeInfo{}
	result := e.top(ctx, endpoint, reqs, false, nil, true, views)
	return *views, result
}

// BrowseNext resumes a paged browse using the continuation points
// previously returned in a BROWSE_RESPONSE, with releaseContinuationPoints
// = false.
func (e *Engine) BrowseNext(ctx context.Context, endpoint *message.EndpointInfo, reqs []*message.Request, continuation []*message.ContinuationPoint) message.Result {
	return e.top(ctx, endpoint, reqs, true, continuation, false, nil)
}

// top issues the initial batched service call (Browse or BrowseNext) and
// walks its per-node results through the shared recursive routine.
func (e *Engine) top(ctx context.Context, endpoint *message.EndpointInfo, reqs []*message.Request, isNext bool, continuation []*message.ContinuationPoint, viewsMode bool, views *[]*message.ViewNodeInfo) message.Result {
	if len(reqs) == 0 || len(reqs) > MaxBrowseRequestSize {
		e.emitError(ctx, endpoint, message.StatusViewBrowseRequestSizeOver, "browse request exceeds maximum batch size", nil)
		return message.StatusViewBrowseRequestSizeOver
	}

	results, callResult := e.issueInitial(ctx, endpoint, reqs, isNext, continuation)
	if callResult != message.StatusOK {
		return callResult
	}
	if len(results) == 0 {
		e.emitError(ctx, endpoint, message.StatusViewBrowseResultEmpty, "browse result set is empty", nil)
		return message.StatusViewBrowseResultEmpty
	}
	if len(results) != len(reqs) {
		e.emitError(ctx, endpoint, message.StatusInternalError, "browse result count does not match request count", nil)
		return message.StatusInternalError
	}

	directions := make([]message.BrowseDirection, len(reqs))
	classMasks := make([]message.NodeClassMask, len(reqs))
	for i, r := range reqs {
		directions[i] = message.BrowseDirectionForward
		classMasks[i] = message.DefaultNodeClassMask
		if r.Browse != nil {
			directions[i] = r.Browse.Direction
			if r.Browse.NodeClassMask != 0 {
				classMasks[i] = r.Browse.NodeClassMask
			}
		}
		if viewsMode {
			classMasks[i] = message.ViewNodeClassMask
		}
	}

	stack := NewPathStack()
	e.walkBatch(ctx, endpoint, reqs, results, directions, classMasks, stack, isNext, viewsMode, views)
	return message.StatusOK
}

// walkBatch is step 3 of the recursive routine: it processes one batch of
// (request, result) pairs sharing the same path-stack instance, so nested
// recursion correctly inherits the ancestor path.
func (e *Engine) walkBatch(ctx context.Context, endpoint *message.EndpointInfo, reqs []*message.Request, results []*ua.BrowseResult, directions []message.BrowseDirection, classMasks []message.NodeClassMask, stack *PathStack, isNext, viewsMode bool, views *[]*message.ViewNodeInfo) {
	badUnknown := 0
	for _, res := range results {
		if res.StatusCode == ua.StatusBadNodeIDUnknown {
			badUnknown++
		}
	}
	allUnknown := badUnknown == len(results)

	for i, res := range results {
		req := reqs[i]
		stack.Push(req.NodeInfo.ValueAlias)

		if res.StatusCode != ua.StatusOK {
			if res.StatusCode == ua.StatusBadNodeIDUnknown && allUnknown {
				if i == 0 {
					e.emitError(ctx, endpoint, message.StatusViewNodeIDUnknownAllResults, "every starting node is unknown", req.NodeInfo)
				}
			} else {
				e.emitError(ctx, endpoint, message.StatusViewResultStatusCodeBad, res.StatusCode.Error(), req.NodeInfo)
			}
			stack.Pop()
			continue
		}

		cp := &message.ContinuationPoint{Data: res.ContinuationPoint, Length: len(res.ContinuationPoint)}
		switch {
		case cp.Length >= 1000:
			e.emitError(ctx, endpoint, message.StatusViewContinuationPointTooLong, "continuation point too long", req.NodeInfo)
			stack.Pop()
			continue
		case cp.Length > 0 && len(res.References) == 0:
			e.emitError(ctx, endpoint, message.StatusViewReferenceDataInvalid, "continuation point present with no references", req.NodeInfo)
			stack.Pop()
			continue
		case isNext && len(res.References) == 0:
			e.emitError(ctx, endpoint, message.StatusViewReferenceDataInvalid, "browseNext returned zero references", req.NodeInfo)
			stack.Pop()
			continue
		}

		frontier := e.walkReferences(ctx, endpoint, req, res.References, directions[i], classMasks[i], stack, viewsMode, views)

		if cp.Length > 0 {
			e.emitContinuation(ctx, endpoint, req.RequestID, cp, stack.Prefix())
		}

		if len(frontier) > 0 {
			e.recurse(ctx, endpoint, frontier, stack, directions[i], classMasks[i], viewsMode, views)
		}
		stack.Pop()
	}
}

// walkReferences validates and emits every reference in one node's result,
// returning the subset that continues recursion (every non-Variable
// reference not already present on the path).
func (e *Engine) walkReferences(ctx context.Context, endpoint *message.EndpointInfo, req *message.Request, refs []*ua.ReferenceDescription, direction message.BrowseDirection, classMask message.NodeClassMask, stack *PathStack, viewsMode bool, views *[]*message.ViewNodeInfo) []frontierEntry {
	var frontier []frontierEntry
	for _, ref := range refs {
		if directionMismatch(direction, ref.IsForward) {
			e.emitError(ctx, endpoint, message.StatusViewDirectionNotMatch, "reference direction does not match request", req.NodeInfo)
			continue
		}
		if code, ok := validateReference(ref, classMask); !ok {
			e.emitError(ctx, endpoint, code, "reference failed validation", req.NodeInfo)
			continue
		}

		refNode, err := client.FromUA(ua.NewNodeIDFromExpandedNodeID(ref.NodeID))
		if err != nil {
			continue
		}
		browseName := ref.BrowseName.Name
		if refNode.Type == message.IdentifierTypeString {
			browseName = refNode.Value
		}

		if stack.Contains(browseName) {
			continue
		}

		if viewsMode {
			if ref.NodeClass == ua.NodeClassView {
				*views = append(*views, &message.ViewNodeInfo{NodeID: refNode, BrowseName: browseName})
			}
		} else {
			alias := message.ValueAlias(refNode, browseName, ref.DisplayName.Text)
			path := stack.Path(browseName)
			e.emitBrowseResponse(ctx, endpoint, req.RequestID, refNode, alias, browseName, ref, path)
		}

		if ref.NodeClass != ua.NodeClassVariable {
			frontier = append(frontier, frontierEntry{nodeID: refNode, browseName: browseName, reqID: req.RequestID})
		}
	}
	return frontier
}

// recurse issues one fresh batched Browse call covering every node in
// frontier - the children of the single node just processed - and walks
// its results through the same routine, sharing stack with the caller.
func (e *Engine) recurse(ctx context.Context, endpoint *message.EndpointInfo, frontier []frontierEntry, stack *PathStack, direction message.BrowseDirection, classMask message.NodeClassMask, viewsMode bool, views *[]*message.ViewNodeInfo) {
	descs := make([]*ua.BrowseDescription, len(frontier))
	subReqs := make([]*message.Request, len(frontier))
	for i, f := range frontier {
		nodeID, err := client.ToUA(f.nodeID)
		if err != nil {
			return
		}
		descs[i] = newBrowseDescription(nodeID, direction, classMask)
		subReqs[i] = &message.Request{
			NodeInfo:  &message.NodeInfo{NodeID: f.nodeID, ValueAlias: f.browseName},
			Browse:    &message.BrowseParams{Direction: direction, NodeClassMask: classMask},
			RequestID: f.reqID,
		}
	}

	resp, err := e.client.Browse(ctx, &ua.BrowseRequest{NodesToBrowse: descs})
	if err != nil {
		e.emitError(ctx, endpoint, message.StatusServiceResultBad, err.Error(), nil)
		return
	}
	if len(resp.Results) != len(subReqs) {
		e.emitError(ctx, endpoint, message.StatusInternalError, "browse result count does not match request count", nil)
		return
	}

	directions := make([]message.BrowseDirection, len(subReqs))
	classMasks := make([]message.NodeClassMask, len(subReqs))
	for i := range subReqs {
		directions[i] = direction
		classMasks[i] = classMask
	}
	e.walkBatch(ctx, endpoint, subReqs, resp.Results, directions, classMasks, stack, false, viewsMode, views)
}

func (e *Engine) issueInitial(ctx context.Context, endpoint *message.EndpointInfo, reqs []*message.Request, isNext bool, continuation []*message.ContinuationPoint) ([]*ua.BrowseResult, message.Result) {
	if isNext {
		points := make([][]byte, len(continuation))
		for i, c := range continuation {
			points[i] = c.Data
		}
		resp, err := e.client.BrowseNext(ctx, &ua.BrowseNextRequest{ReleaseContinuationPoints: false, ContinuationPoints: points})
		if err != nil {
			e.emitError(ctx, endpoint, message.StatusServiceResultBad, err.Error(), nil)
			return nil, message.StatusServiceResultBad
		}
		return resp.Results, message.StatusOK
	}

	descs := make([]*ua.BrowseDescription, len(reqs))
	for i, r := range reqs {
		nodeID, err := client.ToUA(r.NodeInfo.NodeID)
		if err != nil {
			e.emitError(ctx, endpoint, message.StatusParamInvalid, err.Error(), r.NodeInfo)
			return nil, message.StatusParamInvalid
		}
		direction := message.BrowseDirectionForward
		classMask := message.DefaultNodeClassMask
		if r.Browse != nil {
			direction = r.Browse.Direction
			if r.Browse.NodeClassMask != 0 {
				classMask = r.Browse.NodeClassMask
			}
		}
		descs[i] = newBrowseDescription(nodeID, direction, classMask)
	}

	resp, err := e.client.Browse(ctx, &ua.BrowseRequest{NodesToBrowse: descs})
	if err != nil {
		e.emitError(ctx, endpoint, message.StatusServiceResultBad, err.Error(), nil)
		return nil, message.StatusServiceResultBad
	}
	return resp.Results, message.StatusOK
}

func newBrowseDescription(nodeID *ua.NodeID, direction message.BrowseDirection, classMask message.NodeClassMask) *ua.BrowseDescription {
	return &ua.BrowseDescription{
		NodeID:          nodeID,
		BrowseDirection: uaDirection(direction),
		ReferenceTypeID: ua.NewNumericNodeID(0, id.References),
		IncludeSubtypes: true,
		NodeClassMask:   uint32(classMask),
		ResultMask:      uint32(ua.BrowseResultMaskAll),
	}
}

func uaDirection(d message.BrowseDirection) ua.BrowseDirection {
	switch d {
	case message.BrowseDirectionInverse:
		return ua.BrowseDirectionInverse
	case message.BrowseDirectionBoth:
		return ua.BrowseDirectionBoth
	default:
		return ua.BrowseDirectionForward
	}
}

func directionMismatch(requested message.BrowseDirection, isForward bool) bool {
	switch requested {
	case message.BrowseDirectionForward:
		return !isForward
	case message.BrowseDirectionInverse:
		return isForward
	default:
		return false
	}
}

// validateReference applies the per-reference checks that are independent
// of direction: non-empty, length-bounded names; a node class within the
// effective mask; a non-null NodeId with a zero server index; a non-null
// reference type; and, for Object/Variable nodes, a non-null type
// definition.
func validateReference(ref *ua.ReferenceDescription, classMask message.NodeClassMask) (message.Result, bool) {
	if ref.NodeID == nil {
		return message.StatusViewNodeIDNull, false
	}
	if ref.NodeID.ServerIndex != 0 {
		return message.StatusViewServerIndexNonZero, false
	}
	if ref.ReferenceTypeID == nil {
		return message.StatusViewReferenceTypeNull, false
	}
	if ref.BrowseName == nil || ref.BrowseName.Name == "" || len(ref.BrowseName.Name) >= 1000 {
		return message.StatusViewBrowseNameInvalid, false
	}
	if ref.DisplayName == nil || ref.DisplayName.Text == "" || len(ref.DisplayName.Text) >= 1000 {
		return message.StatusViewDisplayNameInvalid, false
	}
	if message.NodeClassMask(ref.NodeClass)&classMask == 0 {
		return message.StatusViewNodeClassInvalid, false
	}
	if (ref.NodeClass == ua.NodeClassObject || ref.NodeClass == ua.NodeClassVariable) && ref.TypeDefinition == nil {
		return message.StatusViewTypeDefinitionNull, false
	}
	return message.StatusOK, true
}

func (e *Engine) emitBrowseResponse(ctx context.Context, endpoint *message.EndpointInfo, reqID int, node *message.NodeID, alias, browseName string, ref *ua.ReferenceDescription, path string) {
	msg := &message.EdgeMessage{
		Type:     message.TypeBrowseResponse,
		Command:  message.CmdBrowse,
		Endpoint: endpoint,
		Responses: []*message.Response{{
			NodeInfo:   &message.NodeInfo{NodeID: node, ValueAlias: alias},
			RequestID:  reqID,
			BrowsePath: path,
			Browse: &message.BrowseResult{
				BrowseName:  browseName,
				NodeClass:   ref.NodeClass.String(),
				DisplayName: ref.DisplayName.Text,
			},
		}},
		Result: message.StatusOK,
	}
	e.enqueue(ctx, msg)
}

func (e *Engine) emitContinuation(ctx context.Context, endpoint *message.EndpointInfo, reqID int, cp *message.ContinuationPoint, prefix string) {
	cp.BrowsePrefix = prefix
	msg := &message.EdgeMessage{
		Type:         message.TypeBrowseResponse,
		Command:      message.CmdBrowse,
		Endpoint:     endpoint,
		Continuation: []*message.ContinuationPoint{cp},
		Result:       message.StatusOK,
		Responses:    []*message.Response{{RequestID: reqID, BrowsePath: prefix}},
	}
	e.enqueue(ctx, msg)
}

func (e *Engine) emitError(ctx context.Context, endpoint *message.EndpointInfo, result message.Result, text string, node *message.NodeInfo) {
	e.enqueue(ctx, message.NewErrorMessage(endpoint, result, text, node))
}

func (e *Engine) enqueue(ctx context.Context, msg *message.EdgeMessage) {
	if e.queue == nil {
		return
	}
	if !e.queue.TryEnqueue(msg) {
		if e.log != nil {
			e.log.Warn("dropped browse message, receive queue full", slog.String("command", string(msg.Command)))
		}
	}
}

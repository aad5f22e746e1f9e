// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package message defines the typed request/response object graph shared by
// every other component: endpoint information, node identifiers, versatile
// values, requests, responses and the envelope message that carries them
// between the façade, the delivery queues and application callbacks.
package message

// Result is the synchronous status code returned by façade operations. It
// indicates whether a call was dispatched successfully, not whether the
// underlying OPC UA service ultimately succeeded - that outcome travels
// asynchronously in an ERROR message instead.
type Result string

// Result codes returned directly from façade calls and attached to error
// responses. These name a taxonomy of error kinds, not Go types: parameter
// errors surface synchronously with no message, resource-exhaustion aborts
// the current operation while keeping partial successes, service errors
// produce one ERROR message, and the browse/subscription specific codes
// each carry their own human-readable constant.
const (
	StatusOK Result = "STATUS_OK"

	// Parameter errors.
	StatusParamInvalid Result = "STATUS_PARAM_INVALID"

	// Resource exhaustion / internal failure.
	StatusInternalError Result = "STATUS_INTERNAL_ERROR"

	// Service errors.
	StatusServiceResultBad Result = "STATUS_SERVICE_RESULT_BAD"

	// Browse-specific.
	StatusViewBrowseRequestSizeOver      Result = "STATUS_VIEW_BROWSEREQUEST_SIZEOVER"
	StatusViewBrowseResultEmpty          Result = "STATUS_VIEW_BROWSERESULT_EMPTY"
	StatusViewNodeIDUnknownAllResults    Result = "STATUS_VIEW_NODEID_UNKNOWN_ALL_RESULTS"
	StatusViewResultStatusCodeBad        Result = "STATUS_VIEW_RESULT_STATUS_CODE_BAD"
	StatusViewReferenceDataInvalid       Result = "STATUS_VIEW_REFERENCE_DATA_INVALID"
	StatusViewDirectionNotMatch          Result = "STATUS_VIEW_DIRECTION_NOT_MATCH"
	StatusViewNodeIDNull                 Result = "STATUS_VIEW_NODEID_NULL"
	StatusViewServerIndexNonZero         Result = "STATUS_VIEW_SERVERINDEX_NONZERO"
	StatusViewReferenceTypeNull          Result = "STATUS_VIEW_REFERENCETYPE_NULL"
	StatusViewTypeDefinitionNull         Result = "STATUS_VIEW_TYPEDEFINITION_NULL"
	StatusViewDisplayNameInvalid         Result = "STATUS_VIEW_DISPLAYNAME_INVALID"
	StatusViewBrowseNameInvalid          Result = "STATUS_VIEW_BROWSENAME_INVALID"
	StatusViewNodeClassInvalid           Result = "STATUS_VIEW_NODECLASS_INVALID"
	StatusViewContinuationPointTooLong   Result = "STATUS_VIEW_CONTINUATIONPOINT_TOOLONG"

	// Subscription-specific.
	StatusBadRequestCancelledByClient Result = "BADREQUESTCANCELLEDBYCLIENT"
	StatusBadSubscriptionIDInvalid    Result = "BADSUBSCRIPTIONIDINVALID"
	StatusBadMonitoredItemIDInvalid   Result = "BADMONITOREDITEMIDINVALID"
	StatusBadNoSubscription           Result = "BADNOSUBSCRIPTION"
	StatusBadMessageNotAvailable      Result = "BADMESSAGENOTAVAILABLE"
)

// StatusEvent is the taxonomy of asynchronous lifecycle notifications routed
// through the status callback family described in the façade's delivery
// rules: {SERVER_STARTED, CLIENT_STARTED} -> start, {STOP_SERVER,
// STOP_CLIENT} -> stop, {CONNECTED, DISCONNECTED} -> network.
type StatusEvent string

const (
	StatusEventServerStarted StatusEvent = "STATUS_SERVER_STARTED"
	StatusEventClientStarted StatusEvent = "STATUS_CLIENT_STARTED"
	StatusEventStopServer    StatusEvent = "STATUS_STOP_SERVER"
	StatusEventStopClient    StatusEvent = "STATUS_STOP_CLIENT"
	StatusEventConnected     StatusEvent = "STATUS_CONNECTED"
	StatusEventDisconnected  StatusEvent = "STATUS_DISCONNECTED"
)

// StatusCallbackKind groups a StatusEvent into the callback family that
// handles it.
type StatusCallbackKind string

const (
	CallbackStart   StatusCallbackKind = "start"
	CallbackStop    StatusCallbackKind = "stop"
	CallbackNetwork StatusCallbackKind = "network"
)

// RouteStatusEvent maps a StatusEvent to the callback family that consumes
// it, returning ok=false for an event with no registered routing.
func RouteStatusEvent(e StatusEvent) (kind StatusCallbackKind, ok bool) {
	switch e {
	case StatusEventServerStarted, StatusEventClientStarted:
		return CallbackStart, true
	case StatusEventStopServer, StatusEventStopClient:
		return CallbackStop, true
	case StatusEventConnected, StatusEventDisconnected:
		return CallbackNetwork, true
	default:
		return "", false
	}
}

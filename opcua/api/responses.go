// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"github.com/absmach/opcua-adapter/discovery"
	"github.com/absmach/opcua-adapter/message"
)

type discoveryResp struct {
	Servers []discovery.FoundServer `json:"servers"`
	Errors  []string                `json:"errors,omitempty"`
}

type edgeResp struct {
	Message *message.EdgeMessage `json:"message"`
	Result  message.Result       `json:"result"`
}

type resultResp struct {
	Result message.Result `json:"result"`
}

type browseViewsResp struct {
	Views  []*message.ViewNodeInfo `json:"views"`
	Result message.Result          `json:"result"`
}

type nodeListResp struct {
	Endpoints []*message.EndpointInfo `json:"endpoints"`
}

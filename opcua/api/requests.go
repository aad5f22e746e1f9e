// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"github.com/absmach/opcua-adapter/message"
	"github.com/absmach/opcua-adapter/pkg/errors"
)

// connectReq is the body of POST /clients.
type connectReq struct {
	EndpointURI string `json:"endpoint_uri"`
}

func (r connectReq) validate() error {
	if r.EndpointURI == "" {
		return errors.Wrap(errValidation, errors.New("endpoint_uri is required"))
	}
	return nil
}

// endpointReq is the body shared by requests that only name the endpoint
// (disconnect, show node list is query-free so it needs none).
type endpointReq struct {
	Endpoint *message.EndpointInfo `json:"endpoint"`
}

func (r endpointReq) validate() error {
	if r.Endpoint == nil || r.Endpoint.EndpointURI == "" {
		return errors.Wrap(errValidation, errors.New("endpoint is required"))
	}
	return nil
}

// readReq is the body of POST /read.
type readReq struct {
	Endpoint *message.EndpointInfo `json:"endpoint"`
	Command  message.Command       `json:"command"`
	Nodes    []*message.NodeInfo   `json:"nodes"`
}

func (r readReq) validate() error {
	if r.Endpoint == nil || r.Endpoint.EndpointURI == "" {
		return errors.Wrap(errValidation, errors.New("endpoint is required"))
	}
	if len(r.Nodes) == 0 {
		return errors.Wrap(errValidation, errors.New("nodes must not be empty"))
	}
	return nil
}

// writeReq is the body of POST /write.
type writeReq struct {
	Endpoint *message.EndpointInfo `json:"endpoint"`
	Requests []*message.Request   `json:"requests"`
}

func (r writeReq) validate() error {
	if r.Endpoint == nil || r.Endpoint.EndpointURI == "" {
		return errors.Wrap(errValidation, errors.New("endpoint is required"))
	}
	if len(r.Requests) == 0 {
		return errors.Wrap(errValidation, errors.New("requests must not be empty"))
	}
	return nil
}

// browseReq is the body of POST /browse.
type browseReq struct {
	Endpoint     *message.EndpointInfo         `json:"endpoint"`
	Requests     []*message.Request            `json:"requests"`
	Continuation []*message.ContinuationPoint `json:"continuation,omitempty"`
	Views        bool                          `json:"views,omitempty"`
	Next         bool                          `json:"next,omitempty"`
}

func (r browseReq) validate() error {
	if r.Endpoint == nil || r.Endpoint.EndpointURI == "" {
		return errors.Wrap(errValidation, errors.New("endpoint is required"))
	}
	if len(r.Requests) == 0 {
		return errors.Wrap(errValidation, errors.New("requests must not be empty"))
	}
	return nil
}

// callReq is the body of POST /call.
type callReq struct {
	Endpoint *message.EndpointInfo `json:"endpoint"`
	Request  *message.Request      `json:"request"`
}

func (r callReq) validate() error {
	if r.Endpoint == nil || r.Endpoint.EndpointURI == "" {
		return errors.Wrap(errValidation, errors.New("endpoint is required"))
	}
	if r.Request == nil || r.Request.Method == nil {
		return errors.Wrap(errValidation, errors.New("request.method is required"))
	}
	return nil
}

// subscriptionReq is the body of POST /subscriptions.
type subscriptionReq struct {
	Endpoint *message.EndpointInfo `json:"endpoint"`
	Requests []*message.Request   `json:"requests"`
}

func (r subscriptionReq) validate() error {
	if r.Endpoint == nil || r.Endpoint.EndpointURI == "" {
		return errors.Wrap(errValidation, errors.New("endpoint is required"))
	}
	if len(r.Requests) == 0 {
		return errors.Wrap(errValidation, errors.New("requests must not be empty"))
	}
	return nil
}

// discoveryReq is the query for GET /discovery.
type discoveryReq struct {
	DiscoveryEndpointURI string   `json:"discovery_endpoint_uri"`
	ServerURIs           []string `json:"server_uris,omitempty"`
	LocaleIDs            []string `json:"locale_ids,omitempty"`
}

func (r discoveryReq) validate() error {
	if r.DiscoveryEndpointURI == "" {
		return errors.Wrap(errValidation, errors.New("discovery_endpoint_uri is required"))
	}
	return nil
}

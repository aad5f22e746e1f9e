// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"

	"github.com/go-kit/kit/endpoint"

	"github.com/absmach/opcua-adapter/message"
	"github.com/absmach/opcua-adapter/opcua"
)

func connectEndpoint(svc opcua.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(connectReq)
		if err := req.validate(); err != nil {
			return nil, err
		}
		connected, err := svc.ConnectClient(ctx, req.EndpointURI)
		if err != nil {
			return nil, err
		}
		return map[string]bool{"connected": connected}, nil
	}
}

func disconnectEndpoint(svc opcua.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(endpointReq)
		if err := req.validate(); err != nil {
			return nil, err
		}
		if err := svc.DisconnectClient(ctx, req.Endpoint); err != nil {
			return nil, err
		}
		return map[string]bool{"disconnected": true}, nil
	}
}

func discoveryEndpoint(svc opcua.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(discoveryReq)
		if err := req.validate(); err != nil {
			return nil, err
		}
		found, errs := svc.FindServers(ctx, req.DiscoveryEndpointURI, req.ServerURIs, req.LocaleIDs)
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return discoveryResp{Servers: found, Errors: msgs}, nil
	}
}

func readEndpoint(svc opcua.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(readReq)
		if err := req.validate(); err != nil {
			return nil, err
		}
		cmd := req.Command
		if cmd == "" {
			cmd = message.CmdRead
		}
		msg, result := svc.ReadNode(ctx, req.Endpoint, cmd, req.Nodes)
		return edgeResp{Message: msg, Result: result}, nil
	}
}

func writeEndpoint(svc opcua.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(writeReq)
		if err := req.validate(); err != nil {
			return nil, err
		}
		msg, result := svc.WriteNode(ctx, req.Endpoint, req.Requests)
		return edgeResp{Message: msg, Result: result}, nil
	}
}

func browseEndpoint(svc opcua.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(browseReq)
		if err := req.validate(); err != nil {
			return nil, err
		}
		switch {
		case req.Views:
			views, result := svc.BrowseViews(ctx, req.Endpoint, req.Requests)
			return browseViewsResp{Views: views, Result: result}, nil
		case req.Next:
			result := svc.BrowseNext(ctx, req.Endpoint, req.Requests, req.Continuation)
			return resultResp{Result: result}, nil
		default:
			result := svc.BrowseNode(ctx, req.Endpoint, req.Requests)
			return resultResp{Result: result}, nil
		}
	}
}

func callEndpoint(svc opcua.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(callReq)
		if err := req.validate(); err != nil {
			return nil, err
		}
		msg, result := svc.CallMethod(ctx, req.Endpoint, req.Request)
		return edgeResp{Message: msg, Result: result}, nil
	}
}

func subscriptionEndpoint(svc opcua.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(subscriptionReq)
		if err := req.validate(); err != nil {
			return nil, err
		}
		msg, result := svc.HandleSubscription(ctx, req.Endpoint, req.Requests)
		return edgeResp{Message: msg, Result: result}, nil
	}
}

func showNodeListEndpoint(svc opcua.Service) endpoint.Endpoint {
	return func(ctx context.Context, _ interface{}) (interface{}, error) {
		return nodeListResp{Endpoints: svc.ShowNodeList(ctx)}, nil
	}
}

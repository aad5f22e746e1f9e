// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/absmach/opcua-adapter/opcua"
	"github.com/absmach/opcua-adapter/pkg/errors"
)

// MakeHandler returns the HTTP handler exposing svc: /health, /metrics, and
// one synchronous endpoint for each routed façade operation (client
// connect/disconnect/list, discovery, read, write, browse, call and
// subscriptions). Configure, CreateServer, CloseServer, GetEndpointInfo,
// BrowseViews and BrowseNext have no route.
func MakeHandler(svc opcua.Service, instanceID string) http.Handler {
	opts := []kithttp.ServerOption{
		kithttp.ServerErrorEncoder(EncodeError),
	}

	r := chi.NewRouter()

	r.Post("/clients", kithttp.NewServer(
		connectEndpoint(svc), decodeConnectReq, EncodeResponse, opts...,
	).ServeHTTP)
	r.Delete("/clients", kithttp.NewServer(
		disconnectEndpoint(svc), decodeEndpointReq, EncodeResponse, opts...,
	).ServeHTTP)
	r.Get("/clients", kithttp.NewServer(
		showNodeListEndpoint(svc), decodeEmptyReq, EncodeResponse, opts...,
	).ServeHTTP)

	r.Get("/discovery", kithttp.NewServer(
		discoveryEndpoint(svc), decodeDiscoveryReq, EncodeResponse, opts...,
	).ServeHTTP)

	r.Post("/read", kithttp.NewServer(
		readEndpoint(svc), decodeReadReq, EncodeResponse, opts...,
	).ServeHTTP)
	r.Post("/write", kithttp.NewServer(
		writeEndpoint(svc), decodeWriteReq, EncodeResponse, opts...,
	).ServeHTTP)
	r.Post("/browse", kithttp.NewServer(
		browseEndpoint(svc), decodeBrowseReq, EncodeResponse, opts...,
	).ServeHTTP)
	r.Post("/call", kithttp.NewServer(
		callEndpoint(svc), decodeCallReq, EncodeResponse, opts...,
	).ServeHTTP)
	r.Post("/subscriptions", kithttp.NewServer(
		subscriptionEndpoint(svc), decodeSubscriptionReq, EncodeResponse, opts...,
	).ServeHTTP)

	r.Get("/health", healthHandler(instanceID))
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func healthHandler(instanceID string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", ContentType)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"service":     "opcua-adapter",
			"status":      "pass",
			"instance_id": instanceID,
		})
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	if !strings.Contains(r.Header.Get("Content-Type"), ContentType) {
		return errors.Wrap(errValidation, errors.New("unsupported content type"))
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(errValidation, errors.New(err.Error()))
	}
	return nil
}

func decodeConnectReq(_ context.Context, r *http.Request) (interface{}, error) {
	var req connectReq
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	return req, nil
}

func decodeEndpointReq(_ context.Context, r *http.Request) (interface{}, error) {
	var req endpointReq
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	return req, nil
}

func decodeEmptyReq(context.Context, *http.Request) (interface{}, error) {
	return nil, nil
}

func decodeDiscoveryReq(_ context.Context, r *http.Request) (interface{}, error) {
	q := r.URL.Query()
	req := discoveryReq{
		DiscoveryEndpointURI: q.Get("discovery_endpoint_uri"),
	}
	if v := q.Get("server_uris"); v != "" {
		req.ServerURIs = strings.Split(v, ",")
	}
	if v := q.Get("locale_ids"); v != "" {
		req.LocaleIDs = strings.Split(v, ",")
	}
	return req, nil
}

func decodeReadReq(_ context.Context, r *http.Request) (interface{}, error) {
	var req readReq
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	return req, nil
}

func decodeWriteReq(_ context.Context, r *http.Request) (interface{}, error) {
	var req writeReq
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	return req, nil
}

func decodeBrowseReq(_ context.Context, r *http.Request) (interface{}, error) {
	var req browseReq
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	return req, nil
}

func decodeCallReq(_ context.Context, r *http.Request) (interface{}, error) {
	var req callReq
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	return req, nil
}

func decodeSubscriptionReq(_ context.Context, r *http.Request) (interface{}, error) {
	var req subscriptionReq
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	return req, nil
}

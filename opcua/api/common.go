// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package api implements the synchronous HTTP transport (C9's
// application-facing surface): a go-chi router exposing /health,
// /metrics, and one endpoint for each routed façade operation (see
// MakeHandler), plus the logging/metrics Service decorators.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/absmach/opcua-adapter/pkg/errors"
)

// ContentType is the media type every JSON request/response uses.
const ContentType = "application/json"

var errValidation = errors.New("invalid request")

// errorResponse is the JSON body written for a failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// EncodeResponse writes response as a 200 JSON body.
func EncodeResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	w.Header().Set("Content-Type", ContentType)
	return json.NewEncoder(w).Encode(response)
}

// EncodeError classifies err and writes the matching status code and a
// JSON error body.
func EncodeError(_ context.Context, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", ContentType)

	status := http.StatusInternalServerError
	if errors.Contains(cast(err), errValidation) {
		status = http.StatusBadRequest
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: err.Error()})
}

func cast(err error) errors.Error {
	if e, ok := err.(errors.Error); ok {
		return e
	}
	return errors.New(err.Error())
}
